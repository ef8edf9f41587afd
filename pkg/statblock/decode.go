package statblock

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/pellig/statblock/pkg/errors"
)

// LoadFile reads a layout definition from a .toml or .json file.
func LoadFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "read layout file %s", path)
	}

	var l Layout
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &l); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "parse %s", path)
		}
	case ".json":
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "parse %s", path)
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported layout format %q", filepath.Ext(path))
	}

	if l.Name == "" {
		l.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := Validate(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// LoadDir registers every .toml and .json layout in dir into r.
// Returns the number of layouts loaded. A missing directory is not an error.
func (r *Registry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".toml" && ext != ".json" {
			continue
		}
		l, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return loaded, err
		}
		r.Register(l)
		loaded++
	}
	return loaded, nil
}

// Validate checks a layout tree for unknown item types and malformed ifelse
// branches (a non-final branch with an empty condition).
func Validate(l *Layout) error {
	if l == nil {
		return errors.New(errors.ErrCodeInvalidLayout, "nil layout")
	}
	return validateItems(l.Name, l.Blocks)
}

func validateItems(layout string, items []Item) error {
	for _, item := range items {
		if !item.Type.Valid() {
			return errors.New(errors.ErrCodeInvalidLayout, "layout %q: unknown item type %q", layout, item.Type)
		}
		if item.Type == TypeIfElse {
			for bi, b := range item.Branches {
				if b.Condition == "" && bi != len(item.Branches)-1 {
					return errors.New(errors.ErrCodeInvalidLayout,
						"layout %q: ifelse branch %d has an empty condition but is not last", layout, bi)
				}
				if err := validateItems(layout, b.Nested); err != nil {
					return err
				}
			}
		}
		if err := validateItems(layout, item.Nested); err != nil {
			return err
		}
	}
	return nil
}
