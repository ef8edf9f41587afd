package statblock

// ItemType discriminates the variants of a layout item.
//
// The set is closed: rendering dispatches with an exhaustive switch over
// these values, and new variants are added here and in the expander, not by
// wrapping or subclassing.
type ItemType string

// Layout item variants.
const (
	TypeGroup      ItemType = "group"
	TypeInline     ItemType = "inline"
	TypeCollapse   ItemType = "collapse"
	TypeHeading    ItemType = "heading"
	TypeSubheading ItemType = "subheading"
	TypeProperty   ItemType = "property"
	TypeSaves      ItemType = "saves"
	TypeTable      ItemType = "table"
	TypeText       ItemType = "text"
	TypeImage      ItemType = "image"
	TypeAction     ItemType = "action"
	TypeJavaScript ItemType = "javascript"
	TypeTraits     ItemType = "traits"
	TypeSpells     ItemType = "spells"
	TypeLayout     ItemType = "layout"
	TypeIfElse     ItemType = "ifelse"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	switch t {
	case TypeGroup, TypeInline, TypeCollapse, TypeHeading, TypeSubheading,
		TypeProperty, TypeSaves, TypeTable, TypeText, TypeImage, TypeAction,
		TypeJavaScript, TypeTraits, TypeSpells, TypeLayout, TypeIfElse:
		return true
	}
	return false
}

// Item is one node of a declarative layout tree. Which fields are meaningful
// depends on Type; unknown fields are ignored by the expander.
type Item struct {
	Type ItemType `json:"type" toml:"type"`

	// Heading is an optional section label rendered before the item's content.
	Heading string `json:"heading,omitempty" toml:"heading,omitempty"`

	// Properties names the monster record fields the item reads, in order.
	Properties []string `json:"properties,omitempty" toml:"properties,omitempty"`

	// Conditioned suppresses the item when none of its referenced properties
	// resolve to content.
	Conditioned bool `json:"conditioned,omitempty" toml:"conditioned,omitempty"`

	// Cls is an extra class tag propagated onto produced blocks.
	Cls string `json:"cls,omitempty" toml:"cls,omitempty"`

	// HasRule appends a separator block after the item's output.
	HasRule bool `json:"hasRule,omitempty" toml:"rule,omitempty"`

	// Nested holds ordered child items for composite variants
	// (group, inline, collapse).
	Nested []Item `json:"nested,omitempty" toml:"nested,omitempty"`

	// Branches holds the ordered condition branches of an ifelse item. A
	// final branch with an empty condition is the explicit default.
	Branches []Branch `json:"branches,omitempty" toml:"branch,omitempty"`

	// Layout names another registered layout to splice in (layout type).
	Layout string `json:"layout,omitempty" toml:"layout,omitempty"`

	// Text is literal template text for text items. The {{monster}}
	// placeholder is replaced with the record's name.
	Text string `json:"text,omitempty" toml:"text,omitempty"`

	// SubheadingText is an optional lead-in line for traits items, with the
	// same {{monster}} substitution as Text.
	SubheadingText string `json:"subheadingText,omitempty" toml:"subheadingText,omitempty"`

	// Headers overrides column headers for table items.
	Headers []string `json:"headers,omitempty" toml:"headers,omitempty"`

	// Code is the script body of a javascript item.
	Code string `json:"code,omitempty" toml:"code,omitempty"`

	// Fallback is shown by property items when the field has no value.
	Fallback string `json:"fallback,omitempty" toml:"fallback,omitempty"`
}

// Branch is one condition+children pair inside an ifelse item.
type Branch struct {
	// Condition is a boolean script expression evaluated against the monster
	// record. Empty means "default"; only meaningful on the final branch.
	Condition string `json:"condition,omitempty" toml:"condition,omitempty"`

	Nested []Item `json:"nested,omitempty" toml:"nested,omitempty"`
}

// Composite reports whether the item renders through nested children.
func (i Item) Composite() bool {
	switch i.Type {
	case TypeGroup, TypeInline, TypeCollapse:
		return true
	}
	return false
}

// FirstProperty returns the first declared property name, or "".
func (i Item) FirstProperty() string {
	if len(i.Properties) == 0 {
		return ""
	}
	return i.Properties[0]
}
