package htmlsink

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/pellig/statblock/pkg/errors"
	"github.com/pellig/statblock/pkg/render"
)

// Layout metrics for the estimating measurer. Derived from the page styles:
// 14px body text at the default font averages about 7.2px per character, and
// paragraphs occupy 22px per line plus their margins.
const (
	charWidth  = 7.2
	lineHeight = 22.0
	blockGap   = 8.0
)

// Measurer estimates block heights in pixels without a browser. Heights only
// steer column balancing, so small estimation errors are acceptable; fixed
// elements (headings, tables) use constant line counts and flowing text is
// divided over the column width.
type Measurer struct {
	// Width is the column width in pixels the estimate assumes.
	Width float64
}

// NewMeasurer creates a measurer for the given column width. ParseWidth
// converts "400px"-style hints into the numeric width.
func NewMeasurer(width float64) Measurer {
	if width <= 0 {
		width = 400
	}
	return Measurer{Width: width}
}

// ParseWidth converts a CSS-ish width hint ("400px", "400") into pixels.
// Unparseable hints return the fallback.
func ParseWidth(hint string, fallback float64) float64 {
	hint = strings.TrimSuffix(strings.TrimSpace(hint), "px")
	if n, err := strconv.ParseFloat(hint, 64); err == nil && n > 0 {
		return n
	}
	return fallback
}

// Measure implements render.Measurer.
func (m Measurer) Measure(ctx context.Context, blocks []render.Block) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	charsPerLine := math.Max(m.Width/charWidth, 1)

	heights := make([]float64, len(blocks))
	for i, b := range blocks {
		hb, ok := b.(*Block)
		if !ok {
			return nil, errors.New(errors.ErrCodeMeasure, "block %d is not an HTML block (%T)", i, b)
		}
		if hb.lines > 0 {
			heights[i] = float64(hb.lines)*lineHeight + blockGap
			continue
		}
		lines := math.Ceil(float64(hb.textLen) / charsPerLine)
		if lines < 1 {
			lines = 1
		}
		heights[i] = lines*lineHeight + blockGap
	}
	return heights, nil
}
