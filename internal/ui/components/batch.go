package components

import (
	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/render"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

func batchSection(w *writer, s app.Snapshot) {
	w.raw(`<div class="panel"><h2>Batch Analysis</h2><div class="search-row">`)
	input(w, "batch.batchYear", "Batch Year", "number")
	w.raw(`<button class="primary-btn" `, post("/groups/batch"), `>Analyse</button></div></div>`)

	if s.Batch == nil {
		return
	}
	a := s.Batch.Analysis
	target := DrillTarget{Scope: core.ScopeBatch, ScopeValue: s.Batch.BatchYear}

	w.raw(`<div id="report-batch" class="panel">`)
	w.el("h2", "", "Batch "+s.Batch.BatchYear)
	kpis(w, render.BatchKPIs(a.Stats))
	w.raw(`<div class="chart-grid">`)
	for _, d := range render.Donuts(a.Distributions) {
		donut(w, d, target)
	}
	trend(w, render.SemesterTrend(a.SemesterTrend))
	w.raw(`</div>`)
	narrative(w, render.BatchSummary(a), false)
	w.raw(`</div>`)
}
