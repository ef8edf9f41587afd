// Package render defines the seam between the layout engine and display
// surfaces. The engine expands a layout tree into produce requests; a
// Producer turns each request into an opaque block, and a Measurer reports
// block heights so the column balancer can stay pure and surface-agnostic.
package render

import (
	"context"

	"github.com/pellig/statblock/pkg/engine/spells"
	"github.com/pellig/statblock/pkg/monster"
	"github.com/pellig/statblock/pkg/statblock"
)

// Kind identifies what a produce request or block renders. Leaf layout item
// types map directly; the remaining kinds are synthesized by the expander.
type Kind string

// Kinds synthesized by the expander on top of the leaf item types.
const (
	// KindSectionHeading renders a section label (group heading, traits
	// heading). The label text is in Request.Text.
	KindSectionHeading Kind = "section-heading"

	// KindContainer wraps the output of an inline item into one block.
	KindContainer Kind = "container"

	// KindCollapse wraps nested output into a collapsible container.
	KindCollapse Kind = "collapse"

	// KindTraitEntry renders one named trait (Request.Trait).
	KindTraitEntry Kind = "trait-entry"

	// KindSpellEntry renders one spell line (Request.Spell).
	KindSpellEntry Kind = "spell-entry"

	// KindSeparator renders the rule appended after hasRule items.
	KindSeparator Kind = "separator"
)

// ItemKind maps a leaf layout item type to its request kind.
func ItemKind(t statblock.ItemType) Kind { return Kind(t) }

// Block is one unit of rendered output. Blocks are opaque to the engine:
// only their kind, emptiness, and measured height matter to it.
type Block interface {
	Kind() Kind

	// Empty reports whether the block has no content. Empty blocks are
	// filtered out of the flat sequence before balancing.
	Empty() bool
}

// Request carries everything a Producer needs for one block. Exactly which
// fields are set depends on Kind.
type Request struct {
	Kind    Kind
	Monster monster.Monster

	// Item is the originating layout item. Nil for purely synthetic kinds
	// such as separators.
	Item *statblock.Item

	// Text is resolved display text for section headings and substituted
	// text items.
	Text string

	// Trait is set for trait-entry requests.
	Trait *monster.Trait

	// Spell is set for spell-entry requests.
	Spell *spells.Entry

	// Children holds already-produced nested output for container and
	// collapse requests.
	Children []Block

	// Classes are the accumulated class tags from enclosing items.
	Classes []string

	// First and Last mark an entry's position within its run, for
	// separator styling. First trait entries render even with an empty
	// description.
	First, Last bool
}

// Producer turns produce requests into blocks. Implementations must return
// an empty block (or nil) when a request has no content, and must not
// assume requests arrive in any particular order.
type Producer interface {
	Produce(req Request) (Block, error)
}

// Measurer reports the rendered height of each block, in surface units.
//
// Implementations may satisfy this with a detached off-screen render that is
// discarded after metrics are read; the call must not return partial results
// before the surface signals that layout completed.
type Measurer interface {
	Measure(ctx context.Context, blocks []Block) ([]float64, error)
}
