package components

import (
	"net/url"

	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/render"
	"github.com/edumetric-labs/edumetric/internal/viewstate"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

var modeScopes = map[viewstate.ModeID]core.Scope{
	viewstate.ModeDepartment: core.ScopeDepartment,
	viewstate.ModeYear:       core.ScopeYear,
	viewstate.ModeCollege:    core.ScopeCollege,
}

func groupForm(w *writer, m viewstate.ModeID) {
	switch m {
	case viewstate.ModeDepartment:
		w.raw(`<div class="panel"><h2>Department Analysis</h2><div class="search-row">`)
		input(w, "dept.dept", "Department", "text")
		input(w, "dept.year", "Year (optional)", "number")
		w.raw(`<button class="primary-btn" `, post("/groups/department"), `>Analyse</button></div></div>`)
	case viewstate.ModeYear:
		w.raw(`<div class="panel"><h2>Year Analysis</h2><div class="search-row">`)
		input(w, "year.year", "Year", "number")
		w.raw(`<button class="primary-btn" `, post("/groups/year"), `>Analyse</button></div></div>`)
	case viewstate.ModeCollege:
		w.raw(`<div class="panel"><h2>College Analysis</h2><div class="search-row">`)
		w.raw(`<button class="primary-btn" `, post("/groups/college"), `>Analyse College</button></div></div>`)
	}
}

func groupSection(w *writer, s app.Snapshot, m viewstate.ModeID) {
	groupForm(w, m)
	scope := modeScopes[m]
	g, ok := s.Group(scope)
	if !ok {
		return
	}
	a := g.Analysis
	target := DrillTarget{Scope: g.Scope, ScopeValue: g.ScopeValue}

	w.raw(`<div class="panel" `, attr("id", "report-"+scope.String()), `>`)
	w.el("h2", "", g.Title)
	if a.SampleSize > 0 && a.TotalSize > a.SampleSize {
		w.printf(`<p class="meta">Showing a sample of %d of %d students</p>`, a.SampleSize, a.TotalSize)
	}
	kpis(w, render.GroupKPIs(a.Stats))

	w.raw(`<div class="chart-grid">`)
	for _, d := range render.Donuts(a.LabelCounts) {
		donut(w, d, target)
	}
	for _, k := range core.FilterKinds() {
		boxPlot(w, render.Upper(k.String())+" SCORES", a.Scores.For(k))
	}
	histogram(w, "PERFORMANCE HISTOGRAM", a.Scores.Performance)
	w.raw(`</div>`)

	w.raw(`<div class="actions"><a class="secondary-btn" download `,
		attr("href", "/groups/"+scope.String()+"/export.xlsx?value="+url.QueryEscape(g.ScopeValue)), `>Export XLSX</a></div>`)
	table(w, render.GroupTable(a.Table, scope != core.ScopeDepartment), true)
	w.raw(`</div>`)
}
