package htmlsink

import (
	"context"
	"strings"
	"testing"

	"github.com/pellig/statblock/pkg/engine/spells"
	"github.com/pellig/statblock/pkg/monster"
	"github.com/pellig/statblock/pkg/render"
	"github.com/pellig/statblock/pkg/statblock"
)

func produce(t *testing.T, req render.Request) *Block {
	t.Helper()
	b, err := NewProducer().Produce(req)
	if err != nil {
		t.Fatalf("Produce(%s): %v", req.Kind, err)
	}
	if b == nil {
		return nil
	}
	return b.(*Block)
}

func TestProduceHeadingEscapes(t *testing.T) {
	item := statblock.Item{Type: statblock.TypeHeading, Properties: []string{"name"}}
	b := produce(t, render.Request{
		Kind: render.ItemKind(statblock.TypeHeading), Item: &item,
		Monster: monster.Monster{"name": `Gnoll <Pack "Lord">`},
	})
	if b == nil {
		t.Fatal("no block")
	}
	if strings.Contains(b.HTML(), "<Pack") {
		t.Errorf("name not escaped: %s", b.HTML())
	}
	if !strings.Contains(b.HTML(), "sb-name") {
		t.Errorf("missing class: %s", b.HTML())
	}
}

func TestProducePropertyFallback(t *testing.T) {
	item := statblock.Item{Type: statblock.TypeProperty, Heading: "Languages", Properties: []string{"languages"}, Fallback: "—"}
	b := produce(t, render.Request{
		Kind: render.ItemKind(statblock.TypeProperty), Item: &item, Monster: monster.Monster{},
	})
	if b == nil || !strings.Contains(b.HTML(), "—") {
		t.Fatalf("block = %v", b)
	}
}

func TestProduceClassesPropagate(t *testing.T) {
	b := produce(t, render.Request{
		Kind: render.KindSectionHeading, Text: "Actions",
		Classes: []string{"outer", "statblock-layout-extra"},
	})
	if b == nil || !strings.Contains(b.HTML(), "statblock-layout-extra") {
		t.Fatalf("classes missing: %v", b)
	}
}

func TestProduceCollapse(t *testing.T) {
	inner := produce(t, render.Request{
		Kind: render.ItemKind(statblock.TypeText),
		Item: &statblock.Item{Type: statblock.TypeText}, Text: "hidden",
	})
	item := statblock.Item{Type: statblock.TypeCollapse, Heading: "Lair"}
	b := produce(t, render.Request{Kind: render.KindCollapse, Item: &item, Children: []render.Block{inner}})
	if b == nil {
		t.Fatal("no block")
	}
	for _, want := range []string{"<details", "<summary>Lair</summary>", "hidden"} {
		if !strings.Contains(b.HTML(), want) {
			t.Errorf("collapse missing %q: %s", want, b.HTML())
		}
	}
}

func TestProduceEmptyContainerVanishes(t *testing.T) {
	b, err := NewProducer().Produce(render.Request{Kind: render.KindContainer})
	if err != nil {
		t.Fatal(err)
	}
	if b != nil {
		t.Errorf("empty container should produce nothing")
	}
}

func TestProduceStatsTable(t *testing.T) {
	item := statblock.Item{
		Type:       statblock.TypeTable,
		Properties: []string{"stats"},
		Headers:    []string{"STR", "DEX"},
	}
	b := produce(t, render.Request{
		Kind: render.ItemKind(statblock.TypeTable), Item: &item,
		Monster: monster.Monster{"stats": []any{float64(20), float64(11)}},
	})
	if b == nil {
		t.Fatal("no block")
	}
	for _, want := range []string{"<th>STR</th>", "20 (+5)", "11 (+0)"} {
		if !strings.Contains(b.HTML(), want) {
			t.Errorf("table missing %q: %s", want, b.HTML())
		}
	}
}

func TestProduceTraitEntryEmptyDesc(t *testing.T) {
	trait := monster.Trait{Name: "Ambusher"}

	// Only the first entry of a run may render name-only.
	first := produce(t, render.Request{Kind: render.KindTraitEntry, Trait: &trait, First: true})
	if first == nil || !strings.Contains(first.HTML(), "Ambusher") {
		t.Fatalf("first entry = %v", first)
	}

	b, err := NewProducer().Produce(render.Request{Kind: render.KindTraitEntry, Trait: &trait, First: false})
	if err != nil {
		t.Fatal(err)
	}
	if b != nil {
		t.Errorf("non-first entry should produce nothing, got %s", b.(*Block).HTML())
	}
}

func TestProduceTraitAndSpellEscape(t *testing.T) {
	trait := monster.Trait{Name: "Mimicry", Desc: `Sounds like <script>alert("hi")</script>.`}
	b := produce(t, render.Request{Kind: render.KindTraitEntry, Trait: &trait, First: true})
	if b == nil {
		t.Fatal("no block")
	}
	if strings.Contains(b.HTML(), "<script>") {
		t.Errorf("trait description not escaped: %s", b.HTML())
	}
	if !strings.Contains(b.HTML(), "&lt;script&gt;") {
		t.Errorf("trait description missing escaped text: %s", b.HTML())
	}

	entry := spells.Entry{Level: "cantrip", Text: `cantrip: <b>fire bolt</b>`}
	s := produce(t, render.Request{Kind: render.KindSpellEntry, Spell: &entry})
	if s == nil {
		t.Fatal("no block")
	}
	if strings.Contains(s.HTML(), "<b>") {
		t.Errorf("spell text not escaped: %s", s.HTML())
	}
}

func TestMeasureEstimates(t *testing.T) {
	short := produce(t, render.Request{
		Kind: render.ItemKind(statblock.TypeText),
		Item: &statblock.Item{Type: statblock.TypeText}, Text: "short",
	})
	long := produce(t, render.Request{
		Kind: render.ItemKind(statblock.TypeText),
		Item: &statblock.Item{Type: statblock.TypeText}, Text: strings.Repeat("longer text ", 40),
	})

	heights, err := NewMeasurer(400).Measure(context.Background(), []render.Block{short, long})
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if heights[1] <= heights[0] {
		t.Errorf("long text (%v) should measure taller than short text (%v)", heights[1], heights[0])
	}

	// Narrower columns mean more lines for the same text.
	narrow, err := NewMeasurer(200).Measure(context.Background(), []render.Block{long})
	if err != nil {
		t.Fatal(err)
	}
	if narrow[0] <= heights[1] {
		t.Errorf("narrow column (%v) should measure taller than wide (%v)", narrow[0], heights[1])
	}
}

func TestParseWidth(t *testing.T) {
	tests := []struct {
		hint string
		want float64
	}{
		{"400px", 400},
		{" 320 ", 320},
		{"banana", 250},
		{"", 250},
		{"-10px", 250},
	}
	for _, tt := range tests {
		if got := ParseWidth(tt.hint, 250); got != tt.want {
			t.Errorf("ParseWidth(%q) = %v, want %v", tt.hint, got, tt.want)
		}
	}
}

func TestPage(t *testing.T) {
	a := produce(t, render.Request{Kind: render.KindSectionHeading, Text: "Actions"})
	b := produce(t, render.Request{
		Kind: render.ItemKind(statblock.TypeText),
		Item: &statblock.Item{Type: statblock.TypeText}, Text: "Bite attack",
	})

	out, err := Page("Goblin", [][]render.Block{{a}, {b}}, "320px")
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	doc := string(out)
	for _, want := range []string{"<!DOCTYPE html>", "<title>Goblin</title>", "width: 320px", "Actions", "Bite attack"} {
		if !strings.Contains(doc, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if got := strings.Count(doc, `class="sb-column"`); got != 2 {
		t.Errorf("page has %d columns, want 2", got)
	}
}

func TestPageRejectsForeignBlocks(t *testing.T) {
	if _, err := Page("x", [][]render.Block{{foreign{}}}, ""); err == nil {
		t.Fatal("expected error")
	}
}

type foreign struct{}

func (foreign) Kind() render.Kind { return "foreign" }
func (foreign) Empty() bool       { return false }
