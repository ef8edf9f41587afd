// Package cache provides the render-artifact cache used by the CLI and the
// preview server. Backends share one interface; keys are derived from the
// monster record and the render options so any change invalidates naturally.
package cache

import (
	"context"
	"time"
)

// TTLs per artifact class.
const (
	// TTLRender applies to rendered statblock artifacts (HTML, JSON).
	TTLRender = 24 * time.Hour

	// TTLImport applies to normalized monster records produced by importers.
	TTLImport = 7 * 24 * time.Hour
)

// Cache is a byte-level cache with TTL support.
//
// Get returns (nil, false, nil) on a miss; errors are reserved for backend
// failures. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// RenderKeyOpts are the options that affect a rendered artifact.
type RenderKeyOpts struct {
	Format      string  `json:"format"`
	Layout      string  `json:"layout"`
	Columns     int     `json:"columns"`
	MaxColumns  int     `json:"max_columns"`
	ColumnWidth string  `json:"column_width"`
	MinSplit    float64 `json:"min_split"`
}

// RenderKey builds the cache key for a rendered artifact from the monster
// record's content hash and the render options.
func RenderKey(monsterHash string, opts RenderKeyOpts) string {
	return hashKey("render", monsterHash, opts)
}

// ImportKey builds the cache key for a normalized monster record from the
// source document's content hash and the importer that produced it.
func ImportKey(importer, sourceHash string) string {
	return hashKey("import", importer, sourceHash)
}
