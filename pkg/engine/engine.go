// Package engine runs the expand → measure → balance pipeline that turns a
// monster record and a named layout into column-assigned render blocks.
//
// The engine is surface-agnostic: the caller supplies a block producer and a
// measurer for the target surface, and gets back the ordered blocks, their
// heights, and the column assignment. Multiple goroutines can safely share
// one Engine with different options.
//
// # Usage
//
//	eng, err := engine.New(engine.Config{
//	    Producer: producer,
//	    Measurer: measurer,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := eng.Build(ctx, record, engine.Options{Layout: "Basic 5e"})
package engine

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/pellig/statblock/pkg/engine/columns"
	"github.com/pellig/statblock/pkg/engine/condition"
	"github.com/pellig/statblock/pkg/engine/expand"
	"github.com/pellig/statblock/pkg/errors"
	"github.com/pellig/statblock/pkg/linkify"
	"github.com/pellig/statblock/pkg/monster"
	"github.com/pellig/statblock/pkg/render"
	"github.com/pellig/statblock/pkg/statblock"
)

const (
	// DefaultColumns is the column count used when neither the caller nor the
	// monster record supplies one.
	DefaultColumns = 2

	// DefaultColumnWidth is the fallback column width for surfaces that care
	// about widths (HTML). Layout and record hints take precedence.
	DefaultColumnWidth = "400px"
)

// Config wires an Engine to one display surface.
type Config struct {
	// Producer and Measurer belong to the target surface. Both are required.
	Producer render.Producer
	Measurer render.Measurer

	// Layouts resolves layout names. Defaults to a registry holding the
	// built-in layouts.
	Layouts *statblock.Registry

	// Linkify rewrites wiki-style links in spell text. Defaults to leaving
	// text untouched.
	Linkify linkify.Linkifier

	// Eval evaluates ifelse branch conditions. Defaults to the sandboxed
	// script evaluator.
	Eval condition.Evaluator

	// Plugin is the host handle exposed to branch scripts.
	Plugin any

	Logger *log.Logger
}

// Options configures one Build call.
type Options struct {
	// Layout names the layout to render. Defaults to the built-in Basic 5e
	// layout.
	Layout string

	// Columns is the container's default column count. The record's own
	// hints take precedence during balancing.
	Columns int

	// MaxColumns caps the column count when the record forces columns.
	MaxColumns int

	// ColumnWidth is the container's default column width. Layout and record
	// hints take precedence.
	ColumnWidth string

	// MinSplit overrides the minimum per-column height. Terminal surfaces
	// set this to work in rows instead of pixels.
	MinSplit float64
}

func (o *Options) setDefaults() {
	if o.Layout == "" {
		o.Layout = statblock.Basic5e().Name
	}
	if o.Columns < 1 {
		o.Columns = DefaultColumns
	}
	if o.ColumnWidth == "" {
		o.ColumnWidth = DefaultColumnWidth
	}
}

// Result holds the output of one Build call.
type Result struct {
	// PassID uniquely identifies this render pass. It is forwarded to the
	// linkifier as the link context.
	PassID string

	// Layout is the resolved layout name.
	Layout string

	// Blocks is the flat block sequence in document order.
	Blocks []render.Block

	// Heights holds the measured height of each block, index-aligned with
	// Blocks.
	Heights []float64

	// Columns is the balanced assignment: per column, the blocks it holds,
	// in document order.
	Columns [][]render.Block

	// SplitHeight is the per-column height budget used for balancing.
	SplitHeight float64

	// ColumnWidth is the resolved column width for width-aware surfaces.
	ColumnWidth string

	Stats Stats
}

// Stats contains build statistics.
type Stats struct {
	BlockCount  int
	ColumnCount int
	ExpandTime  time.Duration
	MeasureTime time.Duration
	BalanceTime time.Duration
}

// Engine is the shared pipeline runner for one display surface.
type Engine struct {
	cfg Config
}

// New validates the configuration and creates an engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Producer == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "producer is required")
	}
	if cfg.Measurer == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "measurer is required")
	}
	if cfg.Layouts == nil {
		cfg.Layouts = statblock.NewRegistry()
	}
	if cfg.Linkify == nil {
		cfg.Linkify = linkify.Null{}
	}
	if cfg.Eval == nil {
		cfg.Eval = condition.NewScriptEvaluator()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Engine{cfg: cfg}, nil
}

// Layouts returns the engine's layout registry.
func (e *Engine) Layouts() *statblock.Registry {
	return e.cfg.Layouts
}

// Build runs the full pipeline for one monster record.
func (e *Engine) Build(ctx context.Context, m monster.Monster, opts Options) (*Result, error) {
	opts.setDefaults()

	layout, ok := e.cfg.Layouts.Get(opts.Layout)
	if !ok {
		return nil, errors.New(errors.ErrCodeLayoutNotFound, "layout %q is not registered", opts.Layout)
	}

	result := &Result{
		PassID: uuid.NewString(),
		Layout: layout.Name,
	}

	// Stage 1: Expand
	expandStart := time.Now()
	expander := &expand.Expander{
		Producer: e.cfg.Producer,
		Layouts:  e.cfg.Layouts,
		Linkify:  e.cfg.Linkify,
		Eval:     e.cfg.Eval,
		Plugin:   e.cfg.Plugin,
		Logger:   e.cfg.Logger,
	}
	result.Blocks = expander.Expand(layout.Blocks, m, result.PassID)
	result.Stats.ExpandTime = time.Since(expandStart)
	result.Stats.BlockCount = len(result.Blocks)

	e.cfg.Logger.Debug("expanded layout",
		"layout", layout.Name,
		"blocks", len(result.Blocks),
		"duration", result.Stats.ExpandTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(result.Blocks) == 0 {
		result.ColumnWidth = m.ColumnWidth(firstNonEmpty(layout.ColumnWidth, opts.ColumnWidth))
		return result, nil
	}

	// Stage 2: Measure
	measureStart := time.Now()
	heights, err := e.cfg.Measurer.Measure(ctx, result.Blocks)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMeasure, err, "measure blocks")
	}
	if len(heights) != len(result.Blocks) {
		return nil, errors.New(errors.ErrCodeMeasure,
			"measurer returned %d heights for %d blocks", len(heights), len(result.Blocks))
	}
	result.Heights = heights
	result.Stats.MeasureTime = time.Since(measureStart)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: Balance
	balanceStart := time.Now()
	colCfg := columns.Config{
		Columns:       opts.Columns,
		MaxColumns:    opts.MaxColumns,
		RecordColumns: m.Columns(),
		MaxHeight:     m.ColumnHeight(),
		MinSplit:      opts.MinSplit,
		ForceColumns:  m.ForceColumns(),
	}
	result.SplitHeight = columns.SplitHeight(columns.Total(heights), colCfg)
	assignment := columns.Assign(heights, colCfg)
	result.Columns = make([][]render.Block, len(assignment))
	for ci, indices := range assignment {
		col := make([]render.Block, len(indices))
		for i, idx := range indices {
			col[i] = result.Blocks[idx]
		}
		result.Columns[ci] = col
	}
	result.Stats.BalanceTime = time.Since(balanceStart)
	result.Stats.ColumnCount = len(result.Columns)

	result.ColumnWidth = m.ColumnWidth(firstNonEmpty(layout.ColumnWidth, opts.ColumnWidth))

	e.cfg.Logger.Debug("balanced columns",
		"columns", len(result.Columns),
		"split_height", result.SplitHeight,
		"duration", result.Stats.BalanceTime)

	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
