// Package monster defines the normalized creature record consumed by the
// layout engine: a field map with typed accessors for the layout hints and
// the semi-structured trait and spell lists.
package monster

import (
	"fmt"
	"math"
	"strings"

	"github.com/pellig/statblock/pkg/errors"
)

// Monster is a normalized creature record. Values are strings, numbers,
// lists, or lists of trait-shaped maps, exactly as importers produce them.
// Records are immutable for the duration of one render pass.
type Monster map[string]any

// Trait is a named block of descriptive text.
type Trait struct {
	Name string `json:"name"`
	Desc string `json:"desc"`
}

// Name returns the creature's display name, or "Creature" when unset.
func (m Monster) Name() string {
	if s, ok := m["name"].(string); ok && s != "" {
		return s
	}
	return "Creature"
}

// String returns the field rendered as display text. Numbers are formatted
// without a trailing ".0", lists are comma-joined. Returns "" when the field
// is absent or empty.
func (m Monster) String(field string) string {
	return stringify(m[field])
}

// List returns the field as a list. The second result is false when the
// field is absent or not list-shaped.
func (m Monster) List(field string) ([]any, bool) {
	switch v := m[field].(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []Trait:
		out := make([]any, len(v))
		for i, t := range v {
			out[i] = t
		}
		return out, true
	}
	return nil, false
}

// HasContent reports whether the field resolves to a non-empty list, a
// non-empty string, or any number (including zero).
func (m Monster) HasContent(field string) bool {
	switch v := m[field].(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case []Trait:
		return len(v) > 0
	case int, int64, float64:
		return true
	case bool:
		return v
	}
	return false
}

// Traits coerces the field into trait entries. Accepts []Trait, lists of
// {name, desc} maps, and lists of [name, desc] pairs. Returns an error when
// the field exists but is not trait-shaped; absent or empty fields yield
// (nil, nil).
func (m Monster) Traits(field string) ([]Trait, error) {
	raw, ok := m.List(field)
	if !ok || len(raw) == 0 {
		return nil, nil
	}

	out := make([]Trait, 0, len(raw))
	for i, entry := range raw {
		switch v := entry.(type) {
		case Trait:
			out = append(out, v)
		case map[string]any:
			t := Trait{
				Name: stringify(v["name"]),
				Desc: stringify(v["desc"]),
			}
			if t.Desc == "" {
				t.Desc = stringify(v["text"])
			}
			out = append(out, t)
		case []any:
			if len(v) < 2 {
				return nil, errors.New(errors.ErrCodeInvalidMonster,
					"field %q entry %d: pair needs name and description", field, i)
			}
			out = append(out, Trait{Name: stringify(v[0]), Desc: stringify(v[1])})
		default:
			return nil, errors.New(errors.ErrCodeInvalidMonster,
				"field %q entry %d: unexpected %T", field, i, entry)
		}
	}
	return out, nil
}

// Layout hint accessors. Absent hints return zero values; the engine falls
// back to its caller-supplied defaults.

// Columns returns the explicit column count hint, or 0 when unset.
func (m Monster) Columns() int {
	n := int(m.number("columns"))
	if n < 0 {
		return 0
	}
	return n
}

// ColumnWidth returns the column width hint as a pixel string. Numeric
// values become "<n>px", string values pass through. Returns def when unset.
func (m Monster) ColumnWidth(def string) string {
	switch v := m["columnWidth"].(type) {
	case string:
		if v != "" {
			return v
		}
	case int:
		return fmt.Sprintf("%dpx", v)
	case int64:
		return fmt.Sprintf("%dpx", v)
	case float64:
		return fmt.Sprintf("%dpx", int(v))
	}
	return def
}

// ColumnHeight returns the maximum column height hint, or 0 (unbounded).
func (m Monster) ColumnHeight() float64 {
	h := m.number("columnHeight")
	if h < 0 || math.IsNaN(h) {
		return 0
	}
	return h
}

// ForceColumns reports whether pagination should always pack into the
// maximum configured column count.
func (m Monster) ForceColumns() bool {
	b, _ := m["forceColumns"].(bool)
	return b
}

func (m Monster) number(field string) float64 {
	switch v := m[field].(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, e := range v {
			if s := stringify(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}
