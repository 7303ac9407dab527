package components

import (
	"fmt"
	"net/url"

	"github.com/edumetric-labs/edumetric/internal/render"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// DrillTarget is the scope a chart's clicks drill down into.
type DrillTarget struct {
	Scope      core.Scope
	ScopeValue string
}

// drill sets the $dd signals and posts them.
func drill(kind core.FilterKind, label string, t DrillTarget) string {
	expr := fmt.Sprintf("$dd.kind=%s; $dd.value=%s; $dd.scope=%s; $dd.scopeValue=%s; @post('/drilldown')",
		jsString(kind.Wire()), jsString(label), jsString(t.Scope.Wire()), jsString(t.ScopeValue))
	return attr("data-on:click", expr)
}

func kpis(w *writer, tiles []render.KPI) {
	w.raw(`<div class="kpi-grid">`)
	for _, k := range tiles {
		w.raw(`<div `, attr("class", classes("kpi", k.Tone)), `>`)
		w.el("span", `class="kpi-label"`, k.Label)
		w.el("span", `class="kpi-value"`, k.Value)
		w.raw(`</div>`)
	}
	w.raw(`</div>`)
}

func donut(w *writer, d render.DonutChart, t DrillTarget) {
	id := "chart-" + d.Kind.String()
	w.raw(`<figure `, attr("id", id), ` class="chart donut">`)
	w.el("figcaption", "", d.Title)
	if d.Empty() {
		w.el("p", `class="muted"`, "No data")
		w.raw(`</figure>`)
		return
	}
	w.raw(`<div class="stacked-bar">`)
	for _, s := range d.Slices {
		w.raw(`<button `, attr("class", classes("segment", "tone-"+render.Tone(s.Label, d.Kind != core.FilterPerformance))),
			` `, attr("style", fmt.Sprintf("flex-grow:%.3f", s.Percent)),
			` `, attr("title", fmt.Sprintf("%s: %d (%.1f%%)", render.Upper(s.Label), s.Count, s.Percent)),
			` `, drill(d.Kind, s.Label, t), `></button>`)
	}
	w.raw(`</div><ul class="legend">`)
	for _, s := range d.Slices {
		w.raw(`<li>`)
		w.printf(`%s <b>%d</b> (%s)`, esc(render.Upper(s.Label)), s.Count, esc(render.Pct(s.Percent)))
		w.raw(`</li>`)
	}
	w.raw(`</ul></figure>`)
}

func boxPlot(w *writer, title string, scores []float64) {
	w.raw(`<figure class="chart box">`)
	w.el("figcaption", "", title)
	b, err := render.BoxPlot(scores)
	if err != nil {
		w.el("p", `class="muted"`, "No scores")
		w.raw(`</figure>`)
		return
	}
	w.raw(`<dl class="box-summary">`)
	for _, kv := range []struct {
		k string
		v float64
	}{{"Min", b.Min}, {"Q1", b.Q1}, {"Median", b.Median}, {"Q3", b.Q3}, {"Max", b.Max}, {"Mean", b.Mean}} {
		w.el("dt", "", kv.k)
		w.el("dd", "", fmt.Sprintf("%.1f", kv.v))
	}
	w.raw(`</dl></figure>`)
}

func histogram(w *writer, title string, scores []float64) {
	w.raw(`<figure class="chart histogram">`)
	w.el("figcaption", "", title)
	bins, err := render.Histogram(scores, render.DefaultBins)
	if err != nil {
		w.el("p", `class="muted"`, "No scores")
		w.raw(`</figure>`)
		return
	}
	peak := 1
	for _, b := range bins {
		peak = max(peak, b.Count)
	}
	w.raw(`<div class="bars">`)
	for _, b := range bins {
		w.raw(`<div class="bar" `,
			attr("style", fmt.Sprintf("height:%d%%", b.Count*100/peak)), ` `,
			attr("title", fmt.Sprintf("%.1f-%.1f: %d", b.Lo, b.Hi, b.Count)), `></div>`)
	}
	w.raw(`</div></figure>`)
}

func trend(w *writer, points []render.TrendPoint) {
	w.raw(`<figure class="chart trend">`)
	w.el("figcaption", "", "SEMESTER PERFORMANCE TREND")
	if len(points) == 0 {
		w.el("p", `class="muted"`, "No semester data")
		w.raw(`</figure>`)
		return
	}
	w.raw(`<div class="bars">`)
	for _, p := range points {
		w.raw(`<div class="bar" `, attr("style", fmt.Sprintf("height:%.0f%%", min(p.Value, 100))), `>`)
		w.el("span", "", fmt.Sprintf("S%d %.1f", p.Semester, p.Value))
		w.raw(`</div>`)
	}
	w.raw(`</div></figure>`)
}

func table(w *writer, t render.Table, viewable bool) {
	if t.Empty() {
		w.el("p", `class="muted placeholder"`, t.Placeholder)
		return
	}
	w.raw(`<div class="table-wrap"><table><thead><tr>`)
	for _, c := range t.Columns {
		w.el("th", "", c)
	}
	if viewable {
		w.el("th", "", "Actions")
	}
	w.raw(`</tr></thead><tbody>`)
	for _, r := range t.Rows {
		w.raw(`<tr>`)
		for _, c := range r.Cells {
			w.el("td", "", c)
		}
		if viewable {
			w.raw(`<td><button class="link-btn" `, post("/students/"+url.PathEscape(r.RNO)+"/view"), `>`, esc(render.DrilldownViewAction), `</button></td>`)
		}
		w.raw(`</tr>`)
	}
	w.raw(`</tbody></table></div>`)
}
