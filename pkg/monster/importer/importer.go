// Package importer converts creature documents from third-party formats into
// normalized monster records. Each importer recognizes its own format;
// Detect probes them in order of specificity.
package importer

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pellig/statblock/pkg/errors"
	"github.com/pellig/statblock/pkg/monster"
)

// Importer converts one source format into a normalized record.
type Importer interface {
	// Name is the importer's identifier ("5etools", "tetracube", "native").
	Name() string

	// Accepts reports whether the document looks like this importer's format.
	Accepts(data []byte) bool

	// Import converts the document. Structurally broken documents fail hard:
	// a creature without ability scores is an error, not a partial record.
	Import(data []byte) (monster.Monster, error)
}

// All returns the registered importers in detection order, most specific
// first.
func All() []Importer {
	return []Importer{
		&FiveEtools{},
		&Tetracube{},
		&Native{},
	}
}

// ByName returns the importer with the given name.
func ByName(name string) (Importer, bool) {
	for _, imp := range All() {
		if imp.Name() == name {
			return imp, true
		}
	}
	return nil, false
}

// Detect returns the first importer that accepts the document.
func Detect(data []byte) (Importer, bool) {
	if !gjson.ValidBytes(data) {
		return nil, false
	}
	for _, imp := range All() {
		if imp.Accepts(data) {
			return imp, true
		}
	}
	return nil, false
}

// Import converts a document with the named importer, or by detection when
// name is empty.
func Import(data []byte, name string) (monster.Monster, error) {
	if name != "" {
		imp, ok := ByName(name)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnsupported, "unknown importer %q", name)
		}
		return imp.Import(data)
	}
	imp, ok := Detect(data)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unrecognized creature document")
	}
	return imp.Import(data)
}

// Native accepts already-normalized records and passes them through.
type Native struct{}

// Name implements Importer.
func (*Native) Name() string { return "native" }

// Accepts implements Importer. Any JSON object with a name qualifies.
func (*Native) Accepts(data []byte) bool {
	j := gjson.ParseBytes(data)
	return j.IsObject() && j.Get("name").Type == gjson.String
}

// Import implements Importer.
func (*Native) Import(data []byte) (monster.Monster, error) {
	j := gjson.ParseBytes(data)
	if !j.IsObject() {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "record must be a JSON object")
	}
	if j.Get("name").Type != gjson.String {
		return nil, errors.New(errors.ErrCodeMissingField, "record has no name")
	}
	m := monster.Monster{}
	j.ForEach(func(key, value gjson.Result) bool {
		m[key.String()] = value.Value()
		return true
	})
	return m, nil
}

// requireAbilities fails the import when any ability score is absent.
func requireAbilities(j gjson.Result, fields [6]string) error {
	for _, f := range fields {
		if !j.Get(f).Exists() {
			return errors.New(errors.ErrCodeMissingField, "creature %q has no %s score",
				j.Get("name").String(), f)
		}
	}
	return nil
}

// traitList converts a list of {name, entries|desc} objects into the
// normalized trait shape.
func traitList(entries gjson.Result) []any {
	if !entries.IsArray() {
		return nil
	}
	var out []any
	entries.ForEach(func(_, entry gjson.Result) bool {
		name := entry.Get("name").String()
		desc := entry.Get("desc").String()
		if desc == "" {
			var parts []string
			entry.Get("entries").ForEach(func(_, e gjson.Result) bool {
				if e.Type == gjson.String {
					parts = append(parts, e.String())
				}
				return true
			})
			desc = strings.Join(parts, " ")
		}
		if name == "" && desc == "" {
			return true
		}
		out = append(out, map[string]any{"name": name, "desc": desc})
		return true
	})
	return out
}
