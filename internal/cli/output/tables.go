package output

import (
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/edumetric-labs/edumetric/internal/render"
)

// Table writes a student table with go-pretty, as a box table in text mode
// and a pipe table in Markdown mode.
func (r *Renderer) Table(t render.Table) {
	if t.Empty() {
		msg := t.Placeholder
		if msg == "" {
			msg = "(0 rows)"
		}
		r.Muted(msg)
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(r.w)
	tw.SetStyle(table.StyleLight)

	header := make(table.Row, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	tw.AppendHeader(header)

	for _, row := range t.Rows {
		cells := make(table.Row, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = c
		}
		tw.AppendRow(cells)
	}

	if r.EffectiveMode() == ModeMarkdown {
		tw.RenderMarkdown()
		r.Println()
		return
	}
	tw.Render()
	r.Printf("(%d rows)\n", len(t.Rows))
}

// KeyValues writes label/value pairs as a two-column table.
func (r *Renderer) KeyValues(pairs [][2]string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(r.w)
	tw.SetStyle(table.StyleLight)
	for _, p := range pairs {
		tw.AppendRow(table.Row{p[0], p[1]})
	}
	if r.EffectiveMode() == ModeMarkdown {
		tw.AppendHeader(table.Row{"Metric", "Value"})
		tw.RenderMarkdown()
		r.Println()
		return
	}
	tw.Render()
}

// KPIs writes KPI tiles.
func (r *Renderer) KPIs(kpis []render.KPI) {
	pairs := make([][2]string, 0, len(kpis))
	for _, k := range kpis {
		pairs = append(pairs, [2]string{k.Label, k.Value})
	}
	r.KeyValues(pairs)
}
