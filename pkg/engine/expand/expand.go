// Package expand walks a declarative layout tree and flattens it into the
// ordered block sequence a display surface renders. Visibility, ifelse
// branch selection, spell grouping, and layout-reference splicing all happen
// here; drawing is delegated to the surface's block producer.
package expand

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pellig/statblock/pkg/engine/condition"
	"github.com/pellig/statblock/pkg/engine/spells"
	"github.com/pellig/statblock/pkg/linkify"
	"github.com/pellig/statblock/pkg/monster"
	"github.com/pellig/statblock/pkg/render"
	"github.com/pellig/statblock/pkg/statblock"
)

// LayoutSource resolves named layout references.
type LayoutSource interface {
	Get(name string) (*statblock.Layout, bool)
}

// DefaultSpellsHeading labels the first spell group when the spells item
// declares no heading of its own.
const DefaultSpellsHeading = "Spellcasting"

var defaultEval = condition.NewScriptEvaluator()

// Expander flattens layout trees for one display surface. All fields except
// Producer are optional.
type Expander struct {
	Producer render.Producer
	Layouts  LayoutSource
	Linkify  linkify.Linkifier
	Eval     condition.Evaluator

	// Plugin is the host handle exposed to ifelse condition scripts.
	Plugin any

	Logger *log.Logger
}

// Expand flattens items into renderable blocks in document order. The
// contextID identifies the render pass and is forwarded to the linkifier.
//
// Failures are isolated per item: a malformed record field or a failing
// producer yields no blocks for that item, and sibling expansion continues.
func (e *Expander) Expand(items []statblock.Item, m monster.Monster, contextID string) []render.Block {
	return e.expand(items, m, contextID, nil, make(map[string]bool))
}

// expand recurses over items. active tracks the layout names currently being
// spliced on this path so cyclic layout references resolve to nothing
// instead of recursing forever.
func (e *Expander) expand(items []statblock.Item, m monster.Monster, contextID string, classes []string, active map[string]bool) []render.Block {
	var out []render.Block
	for i := range items {
		item := items[i]
		if !condition.Visible(item, m) {
			continue
		}

		switch item.Type {
		case statblock.TypeGroup:
			out = append(out, e.heading(item, m, classes)...)
			out = append(out, e.expand(item.Nested, m, contextID, addClass(classes, item.Cls), active)...)

		case statblock.TypeInline:
			out = append(out, e.heading(item, m, classes)...)
			inner := e.expand(item.Nested, m, contextID, addClass(classes, item.Cls), active)
			out = append(out, e.produce(render.Request{
				Kind: render.KindContainer, Item: &item, Monster: m,
				Children: inner, Classes: classes,
			})...)

		case statblock.TypeCollapse:
			inner := e.expand(item.Nested, m, contextID, addClass(classes, item.Cls), active)
			out = append(out, e.produce(render.Request{
				Kind: render.KindCollapse, Item: &item, Monster: m,
				Children: inner, Classes: classes,
			})...)

		case statblock.TypeIfElse:
			idx := condition.ChooseBranch(item.Branches, m, e.Plugin, e.eval(), e.logger())
			if idx < 0 {
				e.logger().Debug("ifelse matched no branch", "branches", len(item.Branches))
				continue
			}
			out = append(out, e.expand(item.Branches[idx].Nested, m, contextID, classes, active)...)

		case statblock.TypeLayout:
			out = append(out, e.expandLayoutRef(item, m, contextID, classes, active)...)

		case statblock.TypeSpells:
			out = append(out, e.expandSpells(item, m, contextID, classes)...)

		case statblock.TypeTraits:
			blocks, err := e.expandTraits(item, m, classes)
			if err != nil {
				e.logger().Warn("traits expansion failed", "field", item.FirstProperty(), "err", err)
				continue
			}
			out = append(out, blocks...)

		default:
			req := render.Request{
				Kind: render.ItemKind(item.Type), Item: &item, Monster: m, Classes: classes,
			}
			if item.Type == statblock.TypeText {
				req.Text = substitute(item.Text, m)
			}
			out = append(out, e.produce(req)...)
		}

		if item.HasRule {
			out = append(out, e.produce(render.Request{Kind: render.KindSeparator, Monster: m})...)
		}
	}
	return out
}

// expandLayoutRef splices a named layout in as an implicit group tagged with
// a class derived from the layout's name. A missing or empty layout
// contributes nothing, and so does a reference back into a layout already
// being spliced on this path.
func (e *Expander) expandLayoutRef(item statblock.Item, m monster.Monster, contextID string, classes []string, active map[string]bool) []render.Block {
	if e.Layouts == nil || item.Layout == "" {
		return nil
	}
	l, ok := e.Layouts.Get(item.Layout)
	if !ok || len(l.Blocks) == 0 {
		e.logger().Debug("layout reference resolved to nothing", "layout", item.Layout)
		return nil
	}
	if active[l.Name] {
		e.logger().Debug("skipping cyclic layout reference", "layout", l.Name)
		return nil
	}
	active[l.Name] = true
	defer delete(active, l.Name)

	out := e.heading(item, m, classes)
	return append(out, e.expand(l.Blocks, m, contextID, addClass(classes, "statblock-layout-"+l.Slug()), active)...)
}

// expandSpells groups the referenced spell list and emits a traits-style
// header block per group followed by its entry blocks.
func (e *Expander) expandSpells(item statblock.Item, m monster.Monster, contextID string, classes []string) []render.Block {
	raw, ok := m.List(item.FirstProperty())
	if !ok || len(raw) == 0 {
		return nil
	}

	var out []render.Block
	for gi, group := range spells.Group(raw, m.Name(), contextID, e.Linkify) {
		if group.Header != "" {
			name := ""
			if gi == 0 {
				if name = item.Heading; name == "" {
					name = DefaultSpellsHeading
				}
			}
			trait := monster.Trait{Name: name, Desc: group.Header}
			out = append(out, e.produce(render.Request{
				Kind: render.KindTraitEntry, Item: &item, Monster: m,
				Trait: &trait, Classes: classes, First: gi == 0,
			})...)
		}
		for si := range group.Spells {
			out = append(out, e.produce(render.Request{
				Kind: render.KindSpellEntry, Item: &item, Monster: m,
				Spell: &group.Spells[si], Classes: classes,
				First: si == 0, Last: si == len(group.Spells)-1,
			})...)
		}
	}
	return out
}

// expandTraits emits a section heading, an optional substituted lead-in
// line, and one block per trait entry. The first entry renders even when
// its description is empty.
func (e *Expander) expandTraits(item statblock.Item, m monster.Monster, classes []string) ([]render.Block, error) {
	traits, err := m.Traits(item.FirstProperty())
	if err != nil {
		return nil, err
	}
	if len(traits) == 0 {
		return nil, nil
	}

	out := e.heading(item, m, classes)
	if item.SubheadingText != "" {
		out = append(out, e.produce(render.Request{
			Kind: render.ItemKind(statblock.TypeText), Item: &item, Monster: m,
			Text: substitute(item.SubheadingText, m), Classes: classes,
		})...)
	}
	for i := range traits {
		out = append(out, e.produce(render.Request{
			Kind: render.KindTraitEntry, Item: &item, Monster: m,
			Trait: &traits[i], Classes: classes,
			First: i == 0, Last: i == len(traits)-1,
		})...)
	}
	return out, nil
}

// heading produces the optional section heading block for an item.
func (e *Expander) heading(item statblock.Item, m monster.Monster, classes []string) []render.Block {
	if item.Heading == "" {
		return nil
	}
	return e.produce(render.Request{
		Kind: render.KindSectionHeading, Item: &item, Monster: m,
		Text: item.Heading, Classes: classes,
	})
}

// produce invokes the producer and filters failures and empty blocks.
func (e *Expander) produce(req render.Request) []render.Block {
	block, err := e.Producer.Produce(req)
	if err != nil {
		e.logger().Warn("block producer failed", "kind", req.Kind, "err", err)
		return nil
	}
	if block == nil || block.Empty() {
		return nil
	}
	return []render.Block{block}
}

func (e *Expander) eval() condition.Evaluator {
	if e.Eval != nil {
		return e.Eval
	}
	return defaultEval
}

func (e *Expander) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}

func addClass(classes []string, cls string) []string {
	if cls == "" {
		return classes
	}
	// Copy on write: sibling subtrees must not see each other's classes.
	out := make([]string, len(classes), len(classes)+1)
	copy(out, classes)
	return append(out, cls)
}

func substitute(text string, m monster.Monster) string {
	return strings.ReplaceAll(text, "{{monster}}", m.Name())
}
