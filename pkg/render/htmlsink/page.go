package htmlsink

import (
	"bytes"
	"html/template"

	"github.com/pellig/statblock/pkg/errors"
	"github.com/pellig/statblock/pkg/render"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: "Noto Sans", "Segoe UI", sans-serif; font-size: 14px; background: #fdf1dc; color: #1a1a1a; margin: 2rem; }
.sb-columns { display: flex; gap: 24px; align-items: flex-start; }
.sb-column { width: {{.ColumnWidth}}; flex: 0 0 auto; }
.sb-name { color: #7a200d; font-variant: small-caps; font-size: 28px; margin: 0; }
.sb-meta { font-style: italic; margin: 0 0 4px; }
.sb-section { color: #7a200d; border-bottom: 1px solid #7a200d; font-variant: small-caps; font-size: 20px; margin: 12px 0 4px; }
.sb-prop, .sb-trait, .sb-text, .sb-spell { margin: 4px 0; line-height: 22px; }
.sb-prop strong { color: #7a200d; }
.sb-spell { margin-left: 1em; }
.sb-rule { border: none; border-top: 2px solid #7a200d; margin: 6px 0; }
.sb-stats { width: 100%; text-align: center; color: #7a200d; border-collapse: collapse; }
.sb-inline { display: flex; gap: 12px; align-items: center; }
.sb-image { max-width: 140px; border-radius: 4px; }
</style>
</head>
<body>
<div class="sb-columns">
{{- range .Columns}}
<div class="sb-column">
{{- range .}}
{{.}}
{{- end}}
</div>
{{- end}}
</div>
</body>
</html>
`))

type pageData struct {
	Title       string
	ColumnWidth string
	Columns     [][]template.HTML
}

// Page assembles balanced columns into a complete standalone HTML document.
// Every block must come from this package's producer.
func Page(title string, columns [][]render.Block, columnWidth string) ([]byte, error) {
	if columnWidth == "" {
		columnWidth = "400px"
	}
	data := pageData{Title: title, ColumnWidth: columnWidth}
	for _, col := range columns {
		fragments := make([]template.HTML, 0, len(col))
		for _, b := range col {
			hb, ok := b.(*Block)
			if !ok {
				return nil, errors.New(errors.ErrCodeProduce, "block is not an HTML block (%T)", b)
			}
			fragments = append(fragments, template.HTML(hb.html))
		}
		data.Columns = append(data.Columns, fragments)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeProduce, err, "render page")
	}
	return buf.Bytes(), nil
}
