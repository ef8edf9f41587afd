// Package statblock defines the declarative layout model for creature
// sheets: a tree of typed items describing what to render and which monster
// fields to source, plus a registry of named layouts loadable from TOML or
// JSON files.
package statblock

import (
	"sort"
	"strings"
	"sync"
)

// Layout is a named layout tree. Trees are acyclic except through named
// layout references, which are resolved against a Registry at expansion time.
type Layout struct {
	Name string `json:"name" toml:"name"`

	// Blocks are the top-level items of the tree.
	Blocks []Item `json:"blocks" toml:"item"`

	// ColumnWidth is an optional default column width ("400px" or a bare
	// number of pixels as a string). Monster-level hints take precedence.
	ColumnWidth string `json:"columnWidth,omitempty" toml:"columnWidth,omitempty"`
}

// Slug returns the layout name lowered and dash-joined, used to derive class
// tags for spliced layout references.
func (l *Layout) Slug() string {
	return strings.Join(strings.Fields(strings.ToLower(l.Name)), "-")
}

// Registry holds named layouts. The zero value is not usable; call
// NewRegistry. Lookup is by exact name or slug.
type Registry struct {
	mu      sync.RWMutex
	layouts map[string]*Layout
}

// NewRegistry creates a registry pre-populated with the built-in layouts.
func NewRegistry() *Registry {
	r := &Registry{layouts: make(map[string]*Layout)}
	r.Register(Basic5e())
	return r
}

// Register adds or replaces a layout. Layouts with empty names are ignored.
func (r *Registry) Register(l *Layout) {
	if l == nil || l.Name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layouts[l.Name] = l
}

// Get returns the layout with the given name or slug.
func (r *Registry) Get(name string) (*Layout, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if l, ok := r.layouts[name]; ok {
		return l, true
	}
	for _, l := range r.layouts {
		if l.Slug() == name {
			return l, true
		}
	}
	return nil, false
}

// Names returns the registered layout names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.layouts))
	for name := range r.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
