package server

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/pellig/statblock/pkg/errors"
	"github.com/pellig/statblock/pkg/monster"
	"github.com/pellig/statblock/pkg/monster/importer"
)

// Bestiary holds the creature records the server can render, keyed by a
// URL-safe slug of the creature name.
type Bestiary struct {
	mu      sync.RWMutex
	records map[string]monster.Monster
}

// NewBestiary creates an empty bestiary.
func NewBestiary() *Bestiary {
	return &Bestiary{records: make(map[string]monster.Monster)}
}

// LoadBestiary reads every .json document in dir through format detection.
// Documents that fail to import are logged and skipped; a missing directory
// is an error.
func LoadBestiary(dir string, logger *log.Logger) (*Bestiary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read bestiary %s", dir)
	}

	b := NewBestiary()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable creature file", "file", path, "err", err)
			continue
		}
		m, err := importer.Import(data, "")
		if err != nil {
			logger.Warn("skipping broken creature file", "file", path, "err", err)
			continue
		}
		b.Add(m)
	}
	logger.Info("loaded bestiary", "dir", dir, "creatures", len(b.records))
	return b, nil
}

// Add registers a record under its name's slug.
func (b *Bestiary) Add(m monster.Monster) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[Slug(m.Name())] = m
}

// Get looks a record up by slug or exact name.
func (b *Bestiary) Get(name string) (monster.Monster, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if m, ok := b.records[name]; ok {
		return m, true
	}
	m, ok := b.records[Slug(name)]
	return m, ok
}

// Names returns the registered creature names, sorted.
func (b *Bestiary) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.records))
	for _, m := range b.records {
		names = append(names, m.Name())
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered records.
func (b *Bestiary) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}

// Slug lowers a creature name and joins its words with dashes.
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
