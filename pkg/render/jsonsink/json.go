// Package jsonsink renders statblocks as structured JSON for programmatic
// consumers: each block keeps its kind and resolved content, and the
// document records the column assignment the balancer produced.
package jsonsink

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pellig/statblock/pkg/engine/spells"
	"github.com/pellig/statblock/pkg/errors"
	"github.com/pellig/statblock/pkg/monster"
	"github.com/pellig/statblock/pkg/render"
	"github.com/pellig/statblock/pkg/statblock"
)

// Block is one serializable render block.
type Block struct {
	BlockKind render.Kind    `json:"kind"`
	Label     string         `json:"label,omitempty"`
	Value     string         `json:"value,omitempty"`
	Headers   []string       `json:"headers,omitempty"`
	Cells     []string       `json:"cells,omitempty"`
	Trait     *monster.Trait `json:"trait,omitempty"`
	Spell     *spells.Entry  `json:"spell,omitempty"`
	Children  []*Block       `json:"children,omitempty"`
	Classes   []string       `json:"classes,omitempty"`
}

// Kind implements render.Block.
func (b *Block) Kind() render.Kind { return b.BlockKind }

// Empty implements render.Block. A label alone is not content: a property
// whose fields all resolved empty must still be filtered.
func (b *Block) Empty() bool {
	if b.BlockKind == render.KindSeparator {
		return false
	}
	return b.Value == "" && b.Trait == nil && b.Spell == nil &&
		len(b.Children) == 0 && len(b.Cells) == 0
}

// Producer captures produce requests as serializable blocks.
type Producer struct{}

// NewProducer creates a JSON producer.
func NewProducer() *Producer { return &Producer{} }

// Produce implements render.Producer.
func (p *Producer) Produce(req render.Request) (render.Block, error) {
	b := &Block{BlockKind: req.Kind, Classes: req.Classes}

	switch req.Kind {
	case render.KindSectionHeading:
		b.Value = req.Text
		return b, nil
	case render.KindContainer, render.KindCollapse:
		for _, c := range req.Children {
			jb, ok := c.(*Block)
			if !ok {
				return nil, errors.New(errors.ErrCodeProduce, "child is not a JSON block (%T)", c)
			}
			b.Children = append(b.Children, jb)
		}
		if req.Item != nil {
			b.Label = req.Item.Heading
		}
		return b, nil
	case render.KindTraitEntry:
		// Only the first entry of a run carries an empty description.
		if req.Trait != nil && req.Trait.Desc == "" && !req.First {
			return nil, nil
		}
		b.Trait = req.Trait
		return b, nil
	case render.KindSpellEntry:
		b.Spell = req.Spell
		return b, nil
	case render.KindSeparator:
		return b, nil
	}

	if req.Item == nil {
		return nil, nil
	}
	switch req.Item.Type {
	case statblock.TypeHeading, statblock.TypeSubheading:
		b.Value = joinProperties(req.Monster, req.Item.Properties)
	case statblock.TypeProperty, statblock.TypeAction, statblock.TypeSaves:
		b.Label = req.Item.Heading
		b.Value = joinProperties(req.Monster, req.Item.Properties)
		if b.Value == "" {
			b.Value = req.Item.Fallback
		}
	case statblock.TypeTable:
		b.Headers = req.Item.Headers
		b.Cells = tableCells(req)
	case statblock.TypeText:
		b.Value = req.Text
	case statblock.TypeImage:
		b.Value = req.Monster.String(req.Item.FirstProperty())
	case statblock.TypeJavaScript:
		return nil, nil
	}
	return b, nil
}

// Measurer assigns nominal heights so the balancer can still spread JSON
// output across columns: one unit per block plus one per 80 characters of
// flowing text.
type Measurer struct{}

// Measure implements render.Measurer.
func (Measurer) Measure(ctx context.Context, blocks []render.Block) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	heights := make([]float64, len(blocks))
	for i, b := range blocks {
		jb, ok := b.(*Block)
		if !ok {
			return nil, errors.New(errors.ErrCodeMeasure, "block %d is not a JSON block (%T)", i, b)
		}
		heights[i] = 1 + float64(len(jb.textContent()))/80
	}
	return heights, nil
}

func (b *Block) textContent() string {
	var sb strings.Builder
	sb.WriteString(b.Label)
	sb.WriteString(b.Value)
	if b.Trait != nil {
		sb.WriteString(b.Trait.Name)
		sb.WriteString(b.Trait.Desc)
	}
	if b.Spell != nil {
		sb.WriteString(b.Spell.Text)
	}
	for _, c := range b.Children {
		sb.WriteString(c.textContent())
	}
	return sb.String()
}

// Document is the serialized result of one render pass.
type Document struct {
	PassID      string     `json:"passId"`
	Layout      string     `json:"layout"`
	ColumnWidth string     `json:"columnWidth,omitempty"`
	SplitHeight float64    `json:"splitHeight"`
	Columns     [][]*Block `json:"columns"`
}

// Marshal serializes balanced columns into a JSON document. Every block must
// come from this package's producer.
func Marshal(passID, layout, columnWidth string, splitHeight float64, columns [][]render.Block) ([]byte, error) {
	doc := Document{
		PassID:      passID,
		Layout:      layout,
		ColumnWidth: columnWidth,
		SplitHeight: splitHeight,
		Columns:     make([][]*Block, 0, len(columns)),
	}
	for _, col := range columns {
		out := make([]*Block, 0, len(col))
		for _, b := range col {
			jb, ok := b.(*Block)
			if !ok {
				return nil, errors.New(errors.ErrCodeProduce, "block is not a JSON block (%T)", b)
			}
			out = append(out, jb)
		}
		doc.Columns = append(doc.Columns, out)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func joinProperties(m monster.Monster, props []string) string {
	parts := make([]string, 0, len(props))
	for _, prop := range props {
		if s := m.String(prop); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func tableCells(req render.Request) []string {
	raw, hasList := req.Monster.List(req.Item.FirstProperty())
	cells := make([]string, len(req.Item.Headers))
	for i, h := range req.Item.Headers {
		if hasList && i < len(raw) {
			cells[i] = stringifyCell(raw[i])
			continue
		}
		cells[i] = req.Monster.String(strings.ToLower(h))
	}
	return cells
}

func stringifyCell(v any) string {
	m := monster.Monster{"v": v}
	return m.String("v")
}
