package term

import (
	"context"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pellig/statblock/pkg/errors"
	"github.com/pellig/statblock/pkg/render"
)

// Measurer reports terminal block heights in rows. Terminal rendering is
// deterministic, so no detached render pass is needed: the block's styled
// text already has its final shape.
type Measurer struct{}

// Measure implements render.Measurer.
func (Measurer) Measure(ctx context.Context, blocks []render.Block) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	heights := make([]float64, len(blocks))
	for i, b := range blocks {
		tb, ok := b.(*Block)
		if !ok {
			return nil, errors.New(errors.ErrCodeMeasure, "block %d is not a terminal block (%T)", i, b)
		}
		heights[i] = float64(lipgloss.Height(tb.text))
	}
	return heights, nil
}

// JoinColumns assembles balanced columns into one printable string. Blocks
// within a column are stacked with a blank line between them; columns sit
// side by side separated by gap cells.
func JoinColumns(cols [][]render.Block, gap int) string {
	if gap < 0 {
		gap = 0
	}
	rendered := make([]string, 0, len(cols)*2)
	for ci, col := range cols {
		parts := texts(col)
		if len(parts) == 0 {
			continue
		}
		if ci > 0 && len(rendered) > 0 {
			rendered = append(rendered, strings.Repeat(" ", gap))
		}
		rendered = append(rendered, strings.Join(parts, "\n\n"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
