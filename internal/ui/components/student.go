package components

import (
	"fmt"

	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/render"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

type field struct {
	Signal string
	Label  string
	Type   string
}

var studentFields = []field{
	{"NAME", "Name", "text"},
	{"RNO", "Register No", "text"},
	{"EMAIL", "Email", "email"},
	{"DEPT", "Department", "text"},
	{"YEAR", "Year", "number"},
	{"CURR_SEM", "Current Semester", "number"},
	{"MENTOR", "Mentor", "text"},
	{"MENTOR_EMAIL", "Mentor Email", "email"},
	{"INTERNAL_MARKS", "Internal Marks (/30)", "number"},
	{"TOTAL_DAYS_CURR", "Total Days", "number"},
	{"ATTENDED_DAYS_CURR", "Attended Days", "number"},
	{"PREV_ATTENDANCE_PERC", "Previous Attendance %", "number"},
	{"BEHAVIOR_SCORE_10", "Behavior (/10)", "number"},
}

func input(w *writer, signal, label, typ string) {
	w.raw(`<label class="field">`)
	w.text(label)
	w.raw(` <input `, attr("type", typ), ` `, attr("data-bind", signal), `></label>`)
}

// studentForm renders the full record editor bound to $student. The same
// form backs manual analysis and CRUD create/update.
func studentForm(w *writer) {
	w.raw(`<div class="form-grid">`)
	for _, f := range studentFields {
		input(w, "student."+f.Signal, f.Label, f.Type)
	}
	for i := 1; i <= 8; i++ {
		input(w, fmt.Sprintf("student.SEM%d", i), fmt.Sprintf("Semester %d %%", i), "number")
	}
	w.raw(`</div>`)
}

func studentSection(w *writer, s app.Snapshot) {
	w.raw(`<div class="panel"><h2>Student Analysis</h2><div class="search-row">`)
	input(w, "search.rno", "Register No", "text")
	w.raw(`<button class="primary-btn" `, post("/student/search"), `>Search</button></div>`)
	w.raw(`<details class="manual"><summary>Enter details manually</summary>`)
	studentForm(w)
	w.raw(`<button class="primary-btn" `, post("/student/analyse"), `>Analyse</button></details></div>`)

	if s.Student == nil {
		return
	}
	studentReport(w, *s.Student)
}

func studentReport(w *writer, r core.PredictResult) {
	rep := render.Report(r)
	target := DrillTarget{Scope: core.ScopeStudent, ScopeValue: r.Student.RNO.String()}

	w.raw(`<div id="student-report" class="panel">`)
	w.el("h2", "", rep.Title)
	w.el("p", `class="meta"`, rep.Meta)
	w.el("p", `class="meta"`, rep.Metrics)

	w.raw(`<div class="kpi-grid">`)
	for i, k := range rep.KPIs {
		kind := core.FilterKinds()[i]
		w.raw(`<button `, attr("class", classes("kpi", k.Tone)), ` `, drill(kind, r.Predictions.Label(kind), target), `>`)
		w.el("span", `class="kpi-label"`, k.Label)
		w.el("span", `class="kpi-value"`, k.Value)
		w.raw(`</button>`)
	}
	w.raw(`</div>`)

	trend(w, render.SemesterTrend(r.Student.Semesters()))
	narrative(w, rep.Narrative, rep.NeedAlert)

	w.raw(`<div class="actions">`)
	if rep.NeedAlert {
		w.raw(`<button class="danger-btn" `, post("/alert"), `>Send Mentor Alert</button>`)
	}
	w.raw(`<a class="secondary-btn" href="/student/export.csv" download>Export CSV</a></div></div>`)
}

func narrative(w *writer, n render.Narrative, alert bool) {
	w.raw(`<div class="narrative"><h3>Summary</h3>`)
	for i, p := range n.Summary {
		cls := ""
		if alert && i == 0 {
			cls = `class="alert-line"`
		}
		w.el("p", cls, p)
	}
	if len(n.Suggestions) > 0 {
		w.raw(`<h3>Suggestions</h3><ul>`)
		for _, sg := range n.Suggestions {
			w.el("li", "", sg)
		}
		w.raw(`</ul>`)
	}
	w.raw(`</div>`)
}
