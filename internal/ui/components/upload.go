package components

import (
	"fmt"

	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/render"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

func uploadSection(w *writer, s app.Snapshot) {
	w.raw(`<div class="panel"><h2>Batch Upload</h2>`)
	w.raw(`<form id="upload-form" enctype="multipart/form-data" `,
		attr("data-on:submit", "@post('/batch/upload', {contentType: 'form'})"), `>`)
	w.raw(`<label class="field">Spreadsheet <input type="file" name="file" accept=".csv,.xlsx,.xls"></label>`)
	w.raw(`<label class="field">Mode <select name="mode" data-bind="upload.mode">`)
	w.printf(`<option value="%s">Normalize and predict</option>`, core.UploadNormalize)
	w.printf(`<option value="%s">Analytics only</option>`, core.UploadAnalytics)
	w.raw(`</select></label><button type="submit" class="primary-btn">Upload</button></form>`)
	w.raw(`<button class="secondary-btn" `, post("/batch/preview"), `>Load Analytics Dashboard</button></div>`)

	if u := s.Upload; u != nil {
		w.raw(`<div id="upload-result" class="panel">`)
		w.el("h3", "", u.Filename)
		w.el("p", `class="meta"`, app.UploadMessage(u.Mode, u.Result))
		if u.Result.Message != "" {
			w.el("p", "", u.Result.Message)
		}
		w.raw(`</div>`)
	}

	if p := s.Preview; p != nil {
		w.raw(`<div id="analytics-preview" class="panel"><h3>Analytics Dashboard</h3>`)
		kpis(w, []render.KPI{
			{Label: "Total Students", Value: fmt.Sprint(p.Stats.TotalStudents)},
			{Label: "High Risk", Value: fmt.Sprint(p.Stats.HighRisk), Tone: "bad"},
			{Label: "High Dropout", Value: fmt.Sprint(p.Stats.HighDropout), Tone: "bad"},
		})
		table(w, render.GroupTable(p.Students, true), true)
		w.raw(`</div>`)
	}
}
