// Package columns distributes measured blocks across visual columns. The
// split height — the per-column height budget — is computed once per render
// pass from the total content height and the pagination hints, then blocks
// are packed in document order with a single greedy pass.
package columns

import "math"

// DefaultMinSplit is the lower bound on the computed split height, in the
// same units as block heights (pixels for display surfaces). It prevents
// short statblocks from shattering into slivers of columns.
const DefaultMinSplit = 600.0

const eps = 1e-9

// Config carries the pagination hints for one render pass.
type Config struct {
	// Columns is the caller-supplied default column count (container hint).
	Columns int

	// MaxColumns caps the column count under ForceColumns. Defaults to
	// Columns when zero.
	MaxColumns int

	// RecordColumns is the monster record's explicit column count, 0 if the
	// record gives none.
	RecordColumns int

	// MaxHeight bounds the split height (record columnHeight hint);
	// 0 means unbounded.
	MaxHeight float64

	// MinSplit overrides DefaultMinSplit when positive. Terminal surfaces
	// set this to work in row units instead of pixels.
	MinSplit float64

	// ForceColumns packs eagerly into MaxColumns regardless of other hints.
	ForceColumns bool
}

func (c Config) columns() int {
	if c.Columns < 1 {
		return 1
	}
	return c.Columns
}

func (c Config) maxColumns() int {
	if c.MaxColumns < 1 {
		return c.columns()
	}
	return c.MaxColumns
}

func (c Config) minSplit() float64 {
	if c.MinSplit > 0 {
		return c.MinSplit
	}
	return DefaultMinSplit
}

// Total sums block heights.
func Total(heights []float64) float64 {
	var sum float64
	for _, h := range heights {
		sum += h
	}
	return sum
}

// SplitHeight computes the per-column height budget for the pass.
//
// Policies, highest priority first:
//  1. ForceColumns: total/maxColumns, packing into the maximum column count.
//  2. Explicit record column count k: max(total/k, total/columns) — never
//     finer than the container's own count.
//  3. Otherwise: total/columns clamped to [minSplit, maxHeight], with
//     maxHeight unbounded when zero.
func SplitHeight(total float64, cfg Config) float64 {
	switch {
	case cfg.ForceColumns:
		return total / float64(cfg.maxColumns())
	case cfg.RecordColumns > 0:
		return math.Max(total/float64(cfg.RecordColumns), total/float64(cfg.columns()))
	default:
		split := total / float64(cfg.columns())
		if split < cfg.minSplit() {
			split = cfg.minSplit()
		}
		if cfg.MaxHeight > 0 && split > cfg.MaxHeight {
			split = cfg.MaxHeight
		}
		return split
	}
}

// Assign packs blocks into columns in document order and returns, per
// column, the indices of the blocks it holds.
//
// A single greedy pass maintains a running height: each block joins the
// current column unless adding it would exceed the split height, in which
// case a new column opens first. Blocks are never split or reordered; a
// block taller than the split height occupies a column alone.
func Assign(heights []float64, cfg Config) [][]int {
	if len(heights) == 0 {
		return nil
	}
	split := SplitHeight(Total(heights), cfg)

	var (
		cols    [][]int
		current []int
		running float64
	)
	for i, h := range heights {
		if len(current) > 0 && running+h > split+eps {
			cols = append(cols, current)
			current = nil
			running = 0
		}
		current = append(current, i)
		running += h
	}
	return append(cols, current)
}
