// Package htmlsink renders statblocks as self-contained HTML. The producer
// emits one element per block; the measurer estimates pixel heights from the
// column width and text length so balancing can run without a browser.
package htmlsink

import (
	"fmt"
	"html"
	"strings"

	"github.com/pellig/statblock/pkg/monster"
	"github.com/pellig/statblock/pkg/render"
	"github.com/pellig/statblock/pkg/statblock"
)

// Block is one rendered HTML fragment.
type Block struct {
	kind render.Kind
	html string

	// textLen is the visible text length used by the estimating measurer.
	textLen int

	// lines is a fixed line count for blocks whose height does not depend
	// on text flow (headings, tables, separators). 0 means flow-measured.
	lines int
}

// Kind implements render.Block.
func (b *Block) Kind() render.Kind { return b.kind }

// Empty implements render.Block.
func (b *Block) Empty() bool { return b.html == "" }

// HTML returns the rendered fragment.
func (b *Block) HTML() string { return b.html }

// Producer renders produce requests into HTML fragments.
type Producer struct{}

// NewProducer creates an HTML producer.
func NewProducer() *Producer { return &Producer{} }

// Produce implements render.Producer.
func (p *Producer) Produce(req render.Request) (render.Block, error) {
	switch req.Kind {
	case render.KindSectionHeading:
		return fixed(req.Kind, 2,
			`<h3 class="sb-section%s">%s</h3>`, classAttr(req.Classes), esc(req.Text)), nil

	case render.KindContainer:
		inner := joinChildren(req.Children)
		if inner == "" {
			return nil, nil
		}
		return flow(req.Kind, childTextLen(req.Children),
			`<div class="sb-inline%s">%s</div>`, classAttr(req.Classes), inner), nil

	case render.KindCollapse:
		inner := joinChildren(req.Children)
		if inner == "" {
			return nil, nil
		}
		return flow(req.Kind, childTextLen(req.Children),
			`<details class="sb-collapse%s"><summary>%s</summary>%s</details>`,
			classAttr(req.Classes), esc(headingOf(req.Item)), inner), nil

	case render.KindTraitEntry:
		return p.traitEntry(req), nil

	case render.KindSpellEntry:
		if req.Spell == nil || req.Spell.Text == "" {
			return nil, nil
		}
		return flow(req.Kind, len(req.Spell.Text),
			`<p class="sb-spell%s">%s</p>`, classAttr(req.Classes), esc(req.Spell.Text)), nil

	case render.KindSeparator:
		return fixed(req.Kind, 1, `<hr class="sb-rule">`), nil
	}

	if req.Item == nil {
		return nil, nil
	}
	switch req.Item.Type {
	case statblock.TypeHeading:
		name := req.Monster.String(req.Item.FirstProperty())
		return fixed(req.Kind, 2, `<h1 class="sb-name%s">%s</h1>`, classAttr(req.Classes), esc(name)), nil

	case statblock.TypeSubheading:
		value := joinProperties(req.Monster, req.Item.Properties)
		if value == "" {
			return nil, nil
		}
		return fixed(req.Kind, 1, `<p class="sb-meta%s"><em>%s</em></p>`, classAttr(req.Classes), esc(value)), nil

	case statblock.TypeProperty, statblock.TypeAction, statblock.TypeSaves:
		return p.property(req), nil

	case statblock.TypeTable:
		return p.statsTable(req), nil

	case statblock.TypeText:
		if req.Text == "" {
			return nil, nil
		}
		return flow(req.Kind, len(req.Text),
			`<p class="sb-text%s">%s</p>`, classAttr(req.Classes), esc(req.Text)), nil

	case statblock.TypeImage:
		src := req.Monster.String(req.Item.FirstProperty())
		if src == "" {
			return nil, nil
		}
		return fixed(req.Kind, 7, `<img class="sb-image%s" src="%s" alt="%s">`,
			classAttr(req.Classes), esc(src), esc(req.Monster.Name())), nil

	case statblock.TypeJavaScript:
		// Scripts never reach the page; they are evaluation-only.
		return nil, nil
	}
	return nil, nil
}

func (p *Producer) property(req render.Request) render.Block {
	value := joinProperties(req.Monster, req.Item.Properties)
	if value == "" {
		value = req.Item.Fallback
	}
	if value == "" {
		return nil
	}
	label := ""
	if req.Item.Heading != "" {
		label = fmt.Sprintf(`<strong>%s</strong> `, esc(req.Item.Heading))
	}
	return flow(render.ItemKind(req.Item.Type), len(req.Item.Heading)+len(value),
		`<p class="sb-prop%s">%s%s</p>`, classAttr(req.Classes), label, esc(value))
}

func (p *Producer) traitEntry(req render.Request) render.Block {
	if req.Trait == nil || (req.Trait.Name == "" && req.Trait.Desc == "") {
		return nil
	}
	// Only the first entry of a run renders with an empty description.
	if req.Trait.Desc == "" && !req.First {
		return nil
	}
	name := ""
	if req.Trait.Name != "" {
		name = fmt.Sprintf(`<strong><em>%s.</em></strong> `, esc(req.Trait.Name))
	}
	return flow(req.Kind, len(req.Trait.Name)+len(req.Trait.Desc),
		`<p class="sb-trait%s">%s%s</p>`, classAttr(req.Classes), name, esc(req.Trait.Desc))
}

func (p *Producer) statsTable(req render.Request) render.Block {
	headers := req.Item.Headers
	if len(headers) == 0 {
		return nil
	}
	var head, row strings.Builder
	raw, hasList := req.Monster.List(req.Item.FirstProperty())
	for i, h := range headers {
		head.WriteString("<th>" + esc(h) + "</th>")
		var v any
		if hasList && i < len(raw) {
			v = raw[i]
		} else {
			v = req.Monster[strings.ToLower(h)]
		}
		row.WriteString("<td>" + esc(formatScore(v)) + "</td>")
	}
	return fixed(render.ItemKind(statblock.TypeTable), 3,
		`<table class="sb-stats%s"><thead><tr>%s</tr></thead><tbody><tr>%s</tr></tbody></table>`,
		classAttr(req.Classes), head.String(), row.String())
}

func fixed(kind render.Kind, lines int, format string, args ...any) *Block {
	return &Block{kind: kind, html: fmt.Sprintf(format, args...), lines: lines}
}

func flow(kind render.Kind, textLen int, format string, args ...any) *Block {
	return &Block{kind: kind, html: fmt.Sprintf(format, args...), textLen: textLen}
}

func joinChildren(children []render.Block) string {
	var b strings.Builder
	for _, c := range children {
		if hb, ok := c.(*Block); ok {
			b.WriteString(hb.html)
		}
	}
	return b.String()
}

func childTextLen(children []render.Block) int {
	total := 0
	for _, c := range children {
		if hb, ok := c.(*Block); ok {
			total += hb.textLen + hb.lines*20
		}
	}
	return total
}

func headingOf(item *statblock.Item) string {
	if item == nil || item.Heading == "" {
		return "Details"
	}
	return item.Heading
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

func formatScore(v any) string {
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case int64:
		n = int(x)
	case float64:
		n = int(x)
	case string:
		if x != "" {
			return x
		}
		return "—"
	default:
		return "—"
	}
	mod := (n - 10) / 2
	if n < 10 && (n-10)%2 != 0 {
		mod--
	}
	return fmt.Sprintf("%d (%+d)", n, mod)
}

func classAttr(classes []string) string {
	if len(classes) == 0 {
		return ""
	}
	return " " + esc(strings.Join(classes, " "))
}

func esc(s string) string { return html.EscapeString(s) }
