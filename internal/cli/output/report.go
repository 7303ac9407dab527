package output

import (
	"fmt"
	"html"
	"strings"

	"github.com/edumetric-labs/edumetric/internal/alertrules"
	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/drilldown"
	"github.com/edumetric-labs/edumetric/internal/render"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// Narrative writes summary paragraphs and a suggestion list. Markdown mode
// goes through the HTML-to-Markdown converter so escaping matches the web
// report.
func (r *Renderer) Narrative(title string, n render.Narrative) error {
	if r.EffectiveMode() == ModeMarkdown {
		var b strings.Builder
		b.WriteString("<h3>" + html.EscapeString(title) + "</h3>")
		for _, p := range n.Summary {
			b.WriteString("<p>" + html.EscapeString(p) + "</p>")
		}
		if len(n.Suggestions) > 0 {
			b.WriteString("<h4>Suggestions</h4><ul>")
			for _, s := range n.Suggestions {
				b.WriteString("<li>" + html.EscapeString(s) + "</li>")
			}
			b.WriteString("</ul>")
		}
		md, err := render.Markdown(b.String())
		if err != nil {
			return fmt.Errorf("failed to render markdown: %w", err)
		}
		r.Println(md)
		r.Println()
		return nil
	}

	r.Header(title)
	for _, p := range n.Summary {
		r.Println(p)
	}
	if len(n.Suggestions) > 0 {
		r.Println()
		r.Println(r.Styles.Header.Render("Suggestions"))
		for _, s := range n.Suggestions {
			r.Printf("  • %s\n", s)
		}
	}
	r.Println()
	return nil
}

// Student writes a student report.
func (r *Renderer) Student(res core.PredictResult) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(res)
	}
	rep := render.Report(res)
	r.Header(rep.Title)
	r.Muted(rep.Meta)
	r.Muted(rep.Metrics)
	r.Println()
	r.KPIs(rep.KPIs)

	trend := render.SemesterTrend(res.Student.Semesters())
	if len(trend) > 0 {
		pairs := make([][2]string, 0, len(trend))
		for _, p := range trend {
			pairs = append(pairs, [2]string{fmt.Sprintf("Semester %d", p.Semester), fmt.Sprintf("%.1f", p.Value)})
		}
		r.Println()
		r.KeyValues(pairs)
	}
	r.Println()
	return r.Narrative("Summary", rep.Narrative)
}

// Drilldown writes the students behind a chart segment.
func (r *Renderer) Drilldown(st drilldown.State) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(map[string]any{
			"status":   st.Status.String(),
			"request":  st.Request,
			"count":    st.Count,
			"students": st.Result,
			"error":    st.ErrorMessage,
		})
	}
	v := render.Drilldown(st)
	r.Header(v.Title)
	r.Muted(v.Count)
	if v.Message != "" {
		if st.Status == drilldown.StatusError {
			r.Error(v.Message)
		} else {
			r.Muted(v.Message)
		}
	}
	if len(v.Rows) == 0 {
		return nil
	}
	t := render.Table{Columns: render.DrilldownColumns[:len(render.DrilldownColumns)-1]}
	for _, row := range v.Rows {
		t.Rows = append(t.Rows, render.TableRow{RNO: row.RNO, Cells: row.Cells()})
	}
	r.Table(t)
	return nil
}

// Group writes a department, year or college analysis.
func (r *Renderer) Group(g app.Group) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(g.Analysis)
	}
	a := g.Analysis
	r.Header(g.Title)
	if a.SampleSize > 0 && a.TotalSize > 0 {
		r.Muted(fmt.Sprintf("Showing a sample of %d of %d students", a.SampleSize, a.TotalSize))
	}
	r.KPIs(render.GroupKPIs(a.Stats))
	r.Println()
	r.Distributions(a.LabelCounts)
	r.Table(render.GroupTable(a.Table, g.Scope != core.ScopeDepartment))
	return nil
}

// Distributions writes the label counts behind the donut charts.
func (r *Renderer) Distributions(counts core.LabelCounts) {
	var pairs [][2]string
	for _, d := range render.Donuts(counts) {
		if d.Empty() {
			continue
		}
		parts := make([]string, 0, len(d.Slices))
		for _, s := range d.Slices {
			parts = append(parts, fmt.Sprintf("%s %d (%s)", render.Upper(s.Label), s.Count, render.Pct(s.Percent)))
		}
		pairs = append(pairs, [2]string{d.Title, strings.Join(parts, ", ")})
	}
	if len(pairs) > 0 {
		r.KeyValues(pairs)
		r.Println()
	}
}

// Batch writes a batch analysis.
func (r *Renderer) Batch(b app.BatchView) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(b.Analysis)
	}
	r.Header("Batch " + b.BatchYear)
	r.KPIs(render.BatchKPIs(b.Analysis.Stats))
	r.Println()
	r.Distributions(b.Analysis.Distributions)
	return r.Narrative("Batch Summary", render.BatchSummary(b.Analysis))
}

// Stats writes the dashboard header counts.
func (r *Renderer) Stats(s core.Stats) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(s)
	}
	depts := make([]string, 0, len(s.Departments))
	for _, d := range s.Departments {
		depts = append(depts, d.String())
	}
	years := make([]string, 0, len(s.Years))
	for _, y := range s.Years {
		years = append(years, y.String())
	}
	r.KeyValues([][2]string{
		{"Students", fmt.Sprint(s.TotalStudents)},
		{"Departments", strings.Join(depts, ", ")},
		{"Years", strings.Join(years, ", ")},
	})
	return nil
}

// Alert writes a mentor alert assessment.
func (r *Renderer) Alert(a alertrules.Assessment, mentor string) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(map[string]any{"assessment": a, "mentor": mentor})
	}
	return r.Narrative(a.Title, render.Narrative{
		Summary:     []string{a.Urgency, "Mentor: " + mentor, a.Timeline},
		Suggestions: a.Actions,
	})
}
