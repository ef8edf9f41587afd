package jsonsink

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pellig/statblock/pkg/monster"
	"github.com/pellig/statblock/pkg/render"
	"github.com/pellig/statblock/pkg/statblock"
)

func TestProduceProperty(t *testing.T) {
	item := statblock.Item{Type: statblock.TypeProperty, Heading: "Armor Class", Properties: []string{"ac"}}
	b, err := NewProducer().Produce(render.Request{
		Kind: render.ItemKind(statblock.TypeProperty), Item: &item,
		Monster: monster.Monster{"ac": "17 (natural armor)"},
	})
	if err != nil {
		t.Fatal(err)
	}
	jb := b.(*Block)
	if jb.Label != "Armor Class" || jb.Value != "17 (natural armor)" {
		t.Errorf("block = %+v", jb)
	}
}

func TestProduceEmptyPropertyIsFiltered(t *testing.T) {
	item := statblock.Item{Type: statblock.TypeProperty, Heading: "Senses", Properties: []string{"senses"}}
	b, err := NewProducer().Produce(render.Request{
		Kind: render.ItemKind(statblock.TypeProperty), Item: &item, Monster: monster.Monster{},
	})
	if err != nil {
		t.Fatal(err)
	}
	// The label alone is not content; the expander drops empty blocks.
	if !b.Empty() {
		t.Errorf("block should be empty: %+v", b)
	}
}

func TestProduceSeparatorNeverEmpty(t *testing.T) {
	b, err := NewProducer().Produce(render.Request{Kind: render.KindSeparator})
	if err != nil {
		t.Fatal(err)
	}
	if b.Empty() {
		t.Error("separator must survive empty-block filtering")
	}
}

func TestProduceTable(t *testing.T) {
	item := statblock.Item{
		Type:       statblock.TypeTable,
		Properties: []string{"stats"},
		Headers:    []string{"STR", "DEX"},
	}
	b, err := NewProducer().Produce(render.Request{
		Kind: render.ItemKind(statblock.TypeTable), Item: &item,
		Monster: monster.Monster{"stats": []any{float64(18), float64(12)}},
	})
	if err != nil {
		t.Fatal(err)
	}
	jb := b.(*Block)
	if len(jb.Cells) != 2 || jb.Cells[0] != "18" || jb.Cells[1] != "12" {
		t.Errorf("cells = %v", jb.Cells)
	}
}

func TestProduceTraitEntryEmptyDesc(t *testing.T) {
	p := NewProducer()
	trait := monster.Trait{Name: "Ambusher"}

	// Only the first entry of a run may carry an empty description.
	b, err := p.Produce(render.Request{Kind: render.KindTraitEntry, Trait: &trait, First: true})
	if err != nil {
		t.Fatal(err)
	}
	if b == nil || b.(*Block).Trait == nil {
		t.Fatalf("first entry = %v", b)
	}

	b, err = p.Produce(render.Request{Kind: render.KindTraitEntry, Trait: &trait, First: false})
	if err != nil {
		t.Fatal(err)
	}
	if b != nil {
		t.Errorf("non-first entry should produce nothing, got %+v", b)
	}
}

func TestMarshalDocument(t *testing.T) {
	p := NewProducer()
	trait := monster.Trait{Name: "Keen Smell", Desc: "Advantage on smell checks."}
	a, _ := p.Produce(render.Request{Kind: render.KindSectionHeading, Text: "Traits"})
	b, _ := p.Produce(render.Request{Kind: render.KindTraitEntry, Trait: &trait})

	data, err := Marshal("pass-42", "Basic 5e", "400px", 600,
		[][]render.Block{{a}, {b}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if doc.PassID != "pass-42" || doc.Layout != "Basic 5e" || doc.SplitHeight != 600 {
		t.Errorf("doc = %+v", doc)
	}
	if len(doc.Columns) != 2 {
		t.Fatalf("columns = %d", len(doc.Columns))
	}
	if doc.Columns[1][0].Trait == nil || doc.Columns[1][0].Trait.Name != "Keen Smell" {
		t.Errorf("trait lost: %+v", doc.Columns[1][0])
	}
}

func TestMeasureScalesWithText(t *testing.T) {
	p := NewProducer()
	short, _ := p.Produce(render.Request{Kind: render.KindSectionHeading, Text: "A"})
	long, _ := p.Produce(render.Request{
		Kind: render.KindTraitEntry,
		Trait: &monster.Trait{
			Name: "Breath",
			Desc: "The dragon exhales fire in a 90-foot cone. Each creature in that area must make a DC 24 Dexterity saving throw, taking 91 (26d6) fire damage on a failed save, or half as much damage on a successful one.",
		},
	})

	heights, err := Measurer{}.Measure(context.Background(), []render.Block{short, long})
	if err != nil {
		t.Fatal(err)
	}
	if heights[1] <= heights[0] {
		t.Errorf("heights = %v", heights)
	}
}
