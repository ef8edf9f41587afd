package expand

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pellig/statblock/pkg/errors"
	"github.com/pellig/statblock/pkg/monster"
	"github.com/pellig/statblock/pkg/render"
	"github.com/pellig/statblock/pkg/statblock"
)

type fakeBlock struct {
	kind  render.Kind
	text  string
	trait *monster.Trait
	empty bool
}

func (b fakeBlock) Kind() render.Kind { return b.kind }
func (b fakeBlock) Empty() bool       { return b.empty }

// fakeProducer records every request and produces a block that is empty when
// the request has no content to show, mirroring how real surfaces behave.
type fakeProducer struct {
	requests []render.Request
	fail     map[render.Kind]bool
}

func (p *fakeProducer) Produce(req render.Request) (render.Block, error) {
	p.requests = append(p.requests, req)
	if p.fail[req.Kind] {
		return nil, errors.New(errors.ErrCodeProduce, "forced failure")
	}
	b := fakeBlock{kind: req.Kind, text: req.Text, trait: req.Trait}
	switch req.Kind {
	case render.KindContainer, render.KindCollapse:
		b.empty = len(req.Children) == 0
	case render.ItemKind(statblock.TypeProperty):
		b.empty = req.Monster.String(req.Item.FirstProperty()) == ""
	}
	return b, nil
}

type mapLayouts map[string]*statblock.Layout

func (m mapLayouts) Get(name string) (*statblock.Layout, bool) {
	l, ok := m[name]
	return l, ok
}

func newExpander(p render.Producer, layouts LayoutSource) *Expander {
	return &Expander{
		Producer: p,
		Layouts:  layouts,
		Logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
}

func kinds(blocks []render.Block) []render.Kind {
	out := make([]render.Kind, len(blocks))
	for i, b := range blocks {
		out[i] = b.Kind()
	}
	return out
}

func assertKinds(t *testing.T, blocks []render.Block, want ...render.Kind) {
	t.Helper()
	got := kinds(blocks)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", got, want)
		}
	}
}

func TestExpandGroupHeadingAndRule(t *testing.T) {
	p := &fakeProducer{}
	e := newExpander(p, nil)
	items := []statblock.Item{{
		Type:    statblock.TypeGroup,
		Heading: "Actions",
		HasRule: true,
		Nested: []statblock.Item{
			{Type: statblock.TypeText, Text: "Multiattack."},
		},
	}}

	blocks := e.Expand(items, monster.Monster{"name": "Ogre"}, "pass-1")
	assertKinds(t, blocks,
		render.KindSectionHeading,
		render.ItemKind(statblock.TypeText),
		render.KindSeparator,
	)
	if got := blocks[0].(fakeBlock).text; got != "Actions" {
		t.Errorf("heading text = %q", got)
	}
}

func TestExpandTextSubstitution(t *testing.T) {
	p := &fakeProducer{}
	e := newExpander(p, nil)
	items := []statblock.Item{{Type: statblock.TypeText, Text: "The {{monster}} attacks."}}

	blocks := e.Expand(items, monster.Monster{"name": "Banshee"}, "pass-1")
	if len(blocks) != 1 || blocks[0].(fakeBlock).text != "The Banshee attacks." {
		t.Fatalf("blocks = %+v", blocks)
	}
}

func TestExpandDropsHiddenItems(t *testing.T) {
	p := &fakeProducer{}
	e := newExpander(p, nil)
	items := []statblock.Item{
		{Type: statblock.TypeProperty, Conditioned: true, Properties: []string{"senses"}},
		{Type: statblock.TypeText, Text: "kept"},
	}

	blocks := e.Expand(items, monster.Monster{"name": "Wolf"}, "pass-1")
	assertKinds(t, blocks, render.ItemKind(statblock.TypeText))
	// The hidden item must not even reach the producer.
	if len(p.requests) != 1 {
		t.Errorf("producer saw %d requests, want 1", len(p.requests))
	}
}

func TestExpandFiltersEmptyBlocks(t *testing.T) {
	p := &fakeProducer{}
	e := newExpander(p, nil)
	// Unconditioned property on a missing field reaches the producer but
	// yields an empty block, which must be filtered.
	items := []statblock.Item{{Type: statblock.TypeProperty, Properties: []string{"absent"}}}

	if blocks := e.Expand(items, monster.Monster{}, "pass-1"); len(blocks) != 0 {
		t.Errorf("blocks = %v, want none", kinds(blocks))
	}
}

func TestExpandInlineWrapsChildren(t *testing.T) {
	p := &fakeProducer{}
	e := newExpander(p, nil)
	items := []statblock.Item{{
		Type: statblock.TypeInline,
		Nested: []statblock.Item{
			{Type: statblock.TypeText, Text: "left"},
			{Type: statblock.TypeText, Text: "right"},
		},
	}}

	blocks := e.Expand(items, monster.Monster{}, "pass-1")
	assertKinds(t, blocks, render.KindContainer)

	last := p.requests[len(p.requests)-1]
	if len(last.Children) != 2 {
		t.Errorf("container request carries %d children, want 2", len(last.Children))
	}
}

func TestExpandEmptyInlineVanishes(t *testing.T) {
	p := &fakeProducer{}
	e := newExpander(p, nil)
	items := []statblock.Item{{
		Type: statblock.TypeInline,
		Nested: []statblock.Item{
			{Type: statblock.TypeProperty, Conditioned: true, Properties: []string{"absent"}},
		},
	}}

	if blocks := e.Expand(items, monster.Monster{}, "pass-1"); len(blocks) != 0 {
		t.Errorf("blocks = %v, want none", kinds(blocks))
	}
}

func TestExpandCollapse(t *testing.T) {
	p := &fakeProducer{}
	e := newExpander(p, nil)
	items := []statblock.Item{{
		Type:   statblock.TypeCollapse,
		Nested: []statblock.Item{{Type: statblock.TypeText, Text: "hidden lore"}},
	}}

	blocks := e.Expand(items, monster.Monster{}, "pass-1")
	assertKinds(t, blocks, render.KindCollapse)
}

func TestExpandIfElse(t *testing.T) {
	p := &fakeProducer{}
	e := newExpander(p, nil)
	items := []statblock.Item{{
		Type: statblock.TypeIfElse,
		Branches: []statblock.Branch{
			{Condition: "monster.cr > 10", Nested: []statblock.Item{{Type: statblock.TypeText, Text: "big"}}},
			{Condition: "", Nested: []statblock.Item{{Type: statblock.TypeText, Text: "small"}}},
		},
	}}

	blocks := e.Expand(items, monster.Monster{"cr": float64(21)}, "pass-1")
	if len(blocks) != 1 || blocks[0].(fakeBlock).text != "big" {
		t.Fatalf("blocks = %+v", blocks)
	}

	blocks = e.Expand(items, monster.Monster{"cr": float64(2)}, "pass-2")
	if len(blocks) != 1 || blocks[0].(fakeBlock).text != "small" {
		t.Fatalf("blocks = %+v", blocks)
	}
}

func TestExpandIfElseNoMatchNoDefault(t *testing.T) {
	p := &fakeProducer{}
	e := newExpander(p, nil)
	items := []statblock.Item{{
		Type: statblock.TypeIfElse,
		Branches: []statblock.Branch{
			{Condition: "false", Nested: []statblock.Item{{Type: statblock.TypeText, Text: "never"}}},
		},
	}}

	if blocks := e.Expand(items, monster.Monster{}, "pass-1"); len(blocks) != 0 {
		t.Errorf("blocks = %v, want none", kinds(blocks))
	}
}

func TestExpandLayoutReference(t *testing.T) {
	p := &fakeProducer{}
	layouts := mapLayouts{
		"Side Panel": {
			Name:   "Side Panel",
			Blocks: []statblock.Item{{Type: statblock.TypeText, Text: "spliced"}},
		},
	}
	e := newExpander(p, layouts)
	items := []statblock.Item{{Type: statblock.TypeLayout, Layout: "Side Panel"}}

	blocks := e.Expand(items, monster.Monster{}, "pass-1")
	assertKinds(t, blocks, render.ItemKind(statblock.TypeText))

	// The spliced subtree carries the derived layout class.
	last := p.requests[len(p.requests)-1]
	found := false
	for _, c := range last.Classes {
		if c == "statblock-layout-side-panel" {
			found = true
		}
	}
	if !found {
		t.Errorf("classes = %v, want derived layout class", last.Classes)
	}
}

func TestExpandLayoutReferenceMiss(t *testing.T) {
	p := &fakeProducer{}
	e := newExpander(p, mapLayouts{})
	items := []statblock.Item{
		{Type: statblock.TypeLayout, Layout: "nope"},
		{Type: statblock.TypeText, Text: "after"},
	}

	blocks := e.Expand(items, monster.Monster{}, "pass-1")
	assertKinds(t, blocks, render.ItemKind(statblock.TypeText))
}

func TestExpandLayoutSelfReference(t *testing.T) {
	p := &fakeProducer{}
	layouts := mapLayouts{
		"Loop": {
			Name: "Loop",
			Blocks: []statblock.Item{
				{Type: statblock.TypeText, Text: "once"},
				{Type: statblock.TypeLayout, Layout: "Loop"},
			},
		},
	}
	e := newExpander(p, layouts)
	items := []statblock.Item{{Type: statblock.TypeLayout, Layout: "Loop"}}

	// The inner self-reference contributes nothing; expansion terminates
	// with the layout's own content exactly once.
	blocks := e.Expand(items, monster.Monster{}, "pass-1")
	assertKinds(t, blocks, render.ItemKind(statblock.TypeText))
	if got := blocks[0].(fakeBlock).text; got != "once" {
		t.Errorf("block text = %q", got)
	}
}

func TestExpandLayoutMutualReference(t *testing.T) {
	p := &fakeProducer{}
	layouts := mapLayouts{
		"A": {Name: "A", Blocks: []statblock.Item{
			{Type: statblock.TypeText, Text: "from a"},
			{Type: statblock.TypeLayout, Layout: "B"},
		}},
		"B": {Name: "B", Blocks: []statblock.Item{
			{Type: statblock.TypeText, Text: "from b"},
			{Type: statblock.TypeLayout, Layout: "A"},
		}},
	}
	e := newExpander(p, layouts)
	items := []statblock.Item{{Type: statblock.TypeLayout, Layout: "A"}}

	blocks := e.Expand(items, monster.Monster{}, "pass-1")
	assertKinds(t, blocks,
		render.ItemKind(statblock.TypeText),
		render.ItemKind(statblock.TypeText),
	)
	if a, b := blocks[0].(fakeBlock).text, blocks[1].(fakeBlock).text; a != "from a" || b != "from b" {
		t.Errorf("block texts = %q, %q", a, b)
	}
}

func TestExpandLayoutRepeatedSiblingReferences(t *testing.T) {
	p := &fakeProducer{}
	layouts := mapLayouts{
		"Panel": {Name: "Panel", Blocks: []statblock.Item{{Type: statblock.TypeText, Text: "panel"}}},
	}
	e := newExpander(p, layouts)
	// Referencing the same layout twice as siblings is not a cycle.
	items := []statblock.Item{
		{Type: statblock.TypeLayout, Layout: "Panel"},
		{Type: statblock.TypeLayout, Layout: "Panel"},
	}

	blocks := e.Expand(items, monster.Monster{}, "pass-1")
	assertKinds(t, blocks,
		render.ItemKind(statblock.TypeText),
		render.ItemKind(statblock.TypeText),
	)
}

func TestExpandTraits(t *testing.T) {
	p := &fakeProducer{}
	e := newExpander(p, nil)
	items := []statblock.Item{{
		Type:           statblock.TypeTraits,
		Heading:        "Legendary Actions",
		SubheadingText: "The {{monster}} can take 3 legendary actions.",
		Properties:     []string{"legendary_actions"},
	}}
	m := monster.Monster{
		"name": "Ancient Red Dragon",
		"legendary_actions": []any{
			map[string]any{"name": "Detect", "desc": "Makes a check."},
			map[string]any{"name": "Tail Attack", "desc": "Makes a tail attack."},
		},
	}

	blocks := e.Expand(items, m, "pass-1")
	assertKinds(t, blocks,
		render.KindSectionHeading,
		render.ItemKind(statblock.TypeText),
		render.KindTraitEntry,
		render.KindTraitEntry,
	)
	if got := blocks[1].(fakeBlock).text; !strings.Contains(got, "Ancient Red Dragon") {
		t.Errorf("subheading not substituted: %q", got)
	}

	var entries []render.Request
	for _, req := range p.requests {
		if req.Kind == render.KindTraitEntry {
			entries = append(entries, req)
		}
	}
	if !entries[0].First || entries[0].Last {
		t.Errorf("first entry flags = %+v", entries[0])
	}
	if entries[1].First || !entries[1].Last {
		t.Errorf("last entry flags = %+v", entries[1])
	}
}

func TestExpandTraitsAbsentField(t *testing.T) {
	p := &fakeProducer{}
	e := newExpander(p, nil)
	items := []statblock.Item{{
		Type:       statblock.TypeTraits,
		Heading:    "Reactions",
		Properties: []string{"reactions"},
	}}

	// No field at all: not even the heading appears.
	if blocks := e.Expand(items, monster.Monster{}, "pass-1"); len(blocks) != 0 {
		t.Errorf("blocks = %v, want none", kinds(blocks))
	}
}

func TestExpandTraitsMalformedFieldSkipsItem(t *testing.T) {
	p := &fakeProducer{}
	e := newExpander(p, nil)
	items := []statblock.Item{
		{Type: statblock.TypeTraits, Heading: "Traits", Properties: []string{"special_abilities"}},
		{Type: statblock.TypeText, Text: "after"},
	}
	m := monster.Monster{"special_abilities": []any{float64(7)}}

	blocks := e.Expand(items, m, "pass-1")
	assertKinds(t, blocks, render.ItemKind(statblock.TypeText))
}

func TestExpandSpells(t *testing.T) {
	p := &fakeProducer{}
	e := newExpander(p, nil)
	items := []statblock.Item{{
		Type:       statblock.TypeSpells,
		Properties: []string{"spells"},
	}}
	m := monster.Monster{
		"name": "Archmage",
		"spells": []any{
			"The archmage can cast the following:",
			"cantrip: fire bolt, light",
			"1st level (4 slots): magic missile, shield",
		},
	}

	blocks := e.Expand(items, m, "pass-1")
	assertKinds(t, blocks,
		render.KindTraitEntry,
		render.KindSpellEntry,
		render.KindSpellEntry,
	)

	header := blocks[0].(fakeBlock)
	if header.trait == nil || header.trait.Name != DefaultSpellsHeading {
		t.Fatalf("header trait = %+v, want name %q", header.trait, DefaultSpellsHeading)
	}
	if header.trait.Desc != "The archmage can cast the following:" {
		t.Errorf("header desc = %q", header.trait.Desc)
	}
}

func TestExpandSpellsCustomHeading(t *testing.T) {
	p := &fakeProducer{}
	e := newExpander(p, nil)
	items := []statblock.Item{{
		Type:       statblock.TypeSpells,
		Heading:    "Innate Spellcasting",
		Properties: []string{"spells"},
	}}
	m := monster.Monster{"name": "Drow", "spells": []any{"at will: dancing lights"}}

	blocks := e.Expand(items, m, "pass-1")
	if len(blocks) == 0 {
		t.Fatal("no blocks")
	}
	header := blocks[0].(fakeBlock)
	if header.trait == nil || header.trait.Name != "Innate Spellcasting" {
		t.Errorf("header trait = %+v", header.trait)
	}
}

func TestExpandSpellsAbsentField(t *testing.T) {
	p := &fakeProducer{}
	e := newExpander(p, nil)
	items := []statblock.Item{{Type: statblock.TypeSpells, Properties: []string{"spells"}}}

	if blocks := e.Expand(items, monster.Monster{}, "pass-1"); len(blocks) != 0 {
		t.Errorf("blocks = %v, want none", kinds(blocks))
	}
}

func TestExpandProducerFailureIsolated(t *testing.T) {
	p := &fakeProducer{fail: map[render.Kind]bool{render.KindSeparator: true}}
	e := newExpander(p, nil)
	items := []statblock.Item{
		{Type: statblock.TypeText, Text: "one", HasRule: true},
		{Type: statblock.TypeText, Text: "two"},
	}

	blocks := e.Expand(items, monster.Monster{}, "pass-1")
	assertKinds(t, blocks,
		render.ItemKind(statblock.TypeText),
		render.ItemKind(statblock.TypeText),
	)
}

func TestExpandClassAccumulation(t *testing.T) {
	p := &fakeProducer{}
	e := newExpander(p, nil)
	items := []statblock.Item{{
		Type: statblock.TypeGroup,
		Cls:  "outer",
		Nested: []statblock.Item{
			{Type: statblock.TypeGroup, Cls: "inner", Nested: []statblock.Item{
				{Type: statblock.TypeText, Text: "deep"},
			}},
			{Type: statblock.TypeText, Text: "shallow"},
		},
	}}

	e.Expand(items, monster.Monster{}, "pass-1")

	byText := map[string][]string{}
	for _, req := range p.requests {
		byText[req.Text] = req.Classes
	}
	if got := byText["deep"]; len(got) != 2 || got[0] != "outer" || got[1] != "inner" {
		t.Errorf("deep classes = %v", got)
	}
	// Sibling of the inner group must not inherit its class.
	if got := byText["shallow"]; len(got) != 1 || got[0] != "outer" {
		t.Errorf("shallow classes = %v", got)
	}
}

func TestExpandIdempotent(t *testing.T) {
	layouts := mapLayouts{
		"extra": {Name: "extra", Blocks: []statblock.Item{{Type: statblock.TypeText, Text: "spliced"}}},
	}
	items := statblock.Basic5e().Blocks
	items = append(items, statblock.Item{Type: statblock.TypeLayout, Layout: "extra"})
	m := monster.Monster{
		"name":  "Goblin",
		"cr":    float64(0.25),
		"hp":    "7 (2d6)",
		"speed": "30 ft.",
		"special_abilities": []any{
			map[string]any{"name": "Nimble Escape", "desc": "Disengage or Hide as a bonus action."},
		},
	}

	p1 := &fakeProducer{}
	first := (&Expander{Producer: p1, Layouts: layouts, Logger: log.NewWithOptions(io.Discard, log.Options{})}).Expand(items, m, "pass-1")
	p2 := &fakeProducer{}
	second := (&Expander{Producer: p2, Layouts: layouts, Logger: log.NewWithOptions(io.Discard, log.Options{})}).Expand(items, m, "pass-2")

	if len(first) != len(second) {
		t.Fatalf("pass lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Kind() != second[i].Kind() {
			t.Fatalf("block %d kind differs: %s vs %s", i, first[i].Kind(), second[i].Kind())
		}
	}
}
