// Package term renders statblocks for terminals using lip gloss styles. It
// provides the block producer, a row-based measurer, and a column joiner for
// assembling the balanced result into a single printable string.
package term

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pellig/statblock/pkg/monster"
	"github.com/pellig/statblock/pkg/render"
	"github.com/pellig/statblock/pkg/statblock"
)

// MinWidth is the narrowest usable column width in cells.
const MinWidth = 24

// Block is a rendered terminal block: styled, wrapped text of a fixed width.
type Block struct {
	kind render.Kind
	text string
}

// Kind implements render.Block.
func (b *Block) Kind() render.Kind { return b.kind }

// Empty implements render.Block.
func (b *Block) Empty() bool { return b.text == "" }

// String returns the styled text.
func (b *Block) String() string { return b.text }

type styles struct {
	heading    lipgloss.Style
	subheading lipgloss.Style
	section    lipgloss.Style
	label      lipgloss.Style
	traitName  lipgloss.Style
	spell      lipgloss.Style
	body       lipgloss.Style
	separator  lipgloss.Style
	collapse   lipgloss.Style
	tableHead  lipgloss.Style
}

func newStyles(width int) styles {
	accent := lipgloss.AdaptiveColor{Light: "#7A200D", Dark: "#E06C5C"}
	muted := lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#9A9A9A"}
	return styles{
		heading:    lipgloss.NewStyle().Bold(true).Foreground(accent).Width(width),
		subheading: lipgloss.NewStyle().Italic(true).Foreground(muted).Width(width),
		section: lipgloss.NewStyle().Bold(true).Foreground(accent).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(accent).Width(width),
		label:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		traitName: lipgloss.NewStyle().Bold(true).Italic(true),
		spell:     lipgloss.NewStyle().Italic(true),
		body:      lipgloss.NewStyle().Width(width),
		separator: lipgloss.NewStyle().Foreground(accent),
		collapse: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).BorderForeground(muted).
			Padding(0, 1).Width(width - 2),
		tableHead: lipgloss.NewStyle().Bold(true).Foreground(accent),
	}
}

// Producer renders produce requests into terminal blocks at a fixed column
// width.
type Producer struct {
	width  int
	styles styles
}

// NewProducer creates a terminal producer rendering at the given column
// width, in cells.
func NewProducer(width int) *Producer {
	if width < MinWidth {
		width = MinWidth
	}
	return &Producer{width: width, styles: newStyles(width)}
}

// Width returns the column width in cells.
func (p *Producer) Width() int { return p.width }

// Produce implements render.Producer.
func (p *Producer) Produce(req render.Request) (render.Block, error) {
	switch req.Kind {
	case render.KindSectionHeading:
		return p.block(req.Kind, p.styles.section.Render(req.Text)), nil

	case render.KindContainer:
		return p.block(req.Kind, p.joinInline(req.Children)), nil

	case render.KindCollapse:
		inner := p.joinVertical(req.Children)
		if inner == "" {
			return nil, nil
		}
		return p.block(req.Kind, p.styles.collapse.Render(inner)), nil

	case render.KindTraitEntry:
		return p.block(req.Kind, p.traitEntry(req)), nil

	case render.KindSpellEntry:
		if req.Spell == nil || req.Spell.Text == "" {
			return nil, nil
		}
		return p.block(req.Kind, p.styles.body.Render(p.styles.spell.Render(req.Spell.Text))), nil

	case render.KindSeparator:
		rule := strings.Repeat("─", p.width)
		return p.block(req.Kind, p.styles.separator.Render(rule)), nil
	}

	if req.Item == nil {
		return nil, nil
	}
	switch req.Item.Type {
	case statblock.TypeHeading:
		return p.block(req.Kind, p.styles.heading.Render(req.Monster.String(req.Item.FirstProperty()))), nil

	case statblock.TypeSubheading:
		return p.block(req.Kind, p.styles.subheading.Render(joinProperties(req.Monster, req.Item.Properties))), nil

	case statblock.TypeProperty, statblock.TypeAction:
		return p.block(req.Kind, p.property(req)), nil

	case statblock.TypeSaves:
		return p.block(req.Kind, p.saves(req)), nil

	case statblock.TypeTable:
		return p.block(req.Kind, p.statsTable(req)), nil

	case statblock.TypeText:
		return p.block(req.Kind, p.styles.body.Render(req.Text)), nil

	case statblock.TypeImage, statblock.TypeJavaScript:
		// Terminals render neither images nor scripted widgets.
		return nil, nil
	}
	return nil, nil
}

func (p *Producer) block(kind render.Kind, text string) *Block {
	return &Block{kind: kind, text: text}
}

// property renders "Label value" with the label styled, falling back to the
// item's fallback text when every referenced field is empty.
func (p *Producer) property(req render.Request) string {
	value := joinProperties(req.Monster, req.Item.Properties)
	if value == "" {
		value = req.Item.Fallback
	}
	if value == "" {
		return ""
	}
	if req.Item.Heading == "" {
		return p.styles.body.Render(value)
	}
	return p.styles.body.Render(p.styles.label.Render(req.Item.Heading) + " " + value)
}

// saves renders a modifier list ("Str +4, Dex +2"). Entries may be maps with
// name and modifier keys; anything else falls back to plain stringification.
func (p *Producer) saves(req render.Request) string {
	field := req.Item.FirstProperty()
	raw, ok := req.Monster.List(field)
	if !ok {
		return p.property(req)
	}

	parts := make([]string, 0, len(raw))
	for _, entry := range raw {
		mm, ok := entry.(map[string]any)
		if !ok {
			return p.property(req)
		}
		if name, ok := mm["name"].(string); ok {
			parts = append(parts, fmt.Sprintf("%s %s", name, formatModifier(mm["modifier"])))
			continue
		}
		// Shorthand form: {dex = 4}.
		if len(mm) == 1 {
			for name, mod := range mm {
				parts = append(parts, fmt.Sprintf("%s %s", titleCase(name), formatModifier(mod)))
			}
			continue
		}
		return p.property(req)
	}
	if len(parts) == 0 {
		return p.property(req)
	}
	value := strings.Join(parts, ", ")
	if req.Item.Heading != "" {
		value = p.styles.label.Render(req.Item.Heading) + " " + value
	}
	return p.styles.body.Render(value)
}

// statsTable renders the ability score row: headers, then score with the
// derived modifier underneath each.
func (p *Producer) statsTable(req render.Request) string {
	headers := req.Item.Headers
	if len(headers) == 0 {
		return ""
	}

	scores := make([]string, len(headers))
	if raw, ok := req.Monster.List(req.Item.FirstProperty()); ok && len(raw) == len(headers) {
		for i, v := range raw {
			scores[i] = formatScore(v)
		}
	} else {
		for i, h := range headers {
			scores[i] = formatScore(req.Monster[strings.ToLower(h)])
		}
	}

	cellWidth := p.width / len(headers)
	if cellWidth < 4 {
		cellWidth = 4
	}
	cell := lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Center)

	headRow := make([]string, len(headers))
	scoreRow := make([]string, len(headers))
	for i := range headers {
		headRow[i] = cell.Render(p.styles.tableHead.Render(headers[i]))
		scoreRow[i] = cell.Render(scores[i])
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, headRow...),
		lipgloss.JoinHorizontal(lipgloss.Top, scoreRow...),
	)
}

func (p *Producer) traitEntry(req render.Request) string {
	if req.Trait == nil {
		return ""
	}
	name, desc := req.Trait.Name, req.Trait.Desc
	switch {
	case name == "" && desc == "":
		return ""
	case name == "":
		return p.styles.body.Render(desc)
	case desc == "":
		// Only the first entry of a run renders name-only.
		if !req.First {
			return ""
		}
		return p.styles.body.Render(p.styles.traitName.Render(name + "."))
	}
	return p.styles.body.Render(p.styles.traitName.Render(name+".") + " " + desc)
}

// joinInline lays the children of an inline item side by side when they fit,
// stacking them otherwise.
func (p *Producer) joinInline(children []render.Block) string {
	parts := texts(children)
	if len(parts) == 0 {
		return ""
	}
	joined := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if lipgloss.Width(joined) > p.width {
		return p.joinVertical(children)
	}
	return joined
}

func (p *Producer) joinVertical(children []render.Block) string {
	parts := texts(children)
	if len(parts) == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func texts(blocks []render.Block) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if tb, ok := b.(*Block); ok && tb.text != "" {
			out = append(out, tb.text)
		}
	}
	return out
}

// joinProperties resolves each referenced field and joins the non-empty
// values with commas.
func joinProperties(m monster.Monster, props []string) string {
	parts := make([]string, 0, len(props))
	for _, prop := range props {
		if s := m.String(prop); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// formatScore renders an ability score as "16 (+3)".
func formatScore(v any) string {
	n, ok := asInt(v)
	if !ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
		return "—"
	}
	mod := (n - 10) / 2
	if n < 10 && (n-10)%2 != 0 {
		mod--
	}
	return fmt.Sprintf("%d (%+d)", n, mod)
}

func formatModifier(v any) string {
	if n, ok := asInt(v); ok {
		return fmt.Sprintf("%+d", n)
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
