package render

import (
	"fmt"
	"math"

	"github.com/edumetric-labs/edumetric/pkg/core"
)

// KPI is one headline tile.
type KPI struct {
	Label string
	Value string
	// Tone is "good", "bad", "medium" or empty for neutral tiles.
	Tone string
}

// GroupKPIs renders the tiles of a department, year or college analysis.
func GroupKPIs(s core.GroupStats) []KPI {
	return []KPI{
		{Label: "Total Students", Value: fmt.Sprint(s.TotalStudents)},
		{Label: "Avg Performance", Value: Pct(s.AvgPerformance.Float())},
		{Label: "High Performers", Value: fmt.Sprint(s.HighPerformers), Tone: "good"},
		{Label: "High Risk", Value: fmt.Sprint(s.HighRisk), Tone: "bad"},
		{Label: "High Dropout", Value: fmt.Sprint(s.HighDropout), Tone: "bad"},
	}
}

// BatchKPIs renders the tiles of a batch analysis.
func BatchKPIs(s core.BatchStats) []KPI {
	return []KPI{
		{Label: "Total Students", Value: fmt.Sprint(s.TotalStudents)},
		{Label: "Avg Performance", Value: Pct(s.AvgPerformance.Float())},
		{Label: "High Risk", Value: Pct(s.HighRiskPct.Float()), Tone: "bad"},
		{Label: "Dropout Risk", Value: Pct(s.AvgDropout.Float()), Tone: "bad"},
		{Label: "Top Performers", Value: Pct(s.TopPerformersPct.Float()), Tone: "good"},
	}
}

// Narrative is a summary paragraph list plus suggestions.
type Narrative struct {
	Summary     []string
	Suggestions []string
}

// BatchSummary combines the server's insights with the standing batch
// recommendations.
func BatchSummary(b core.BatchAnalysis) Narrative {
	s := b.Stats
	n := Narrative{}
	if b.Insights.Summary != "" {
		n.Summary = append(n.Summary, b.Insights.Summary)
	}
	n.Summary = append(n.Summary,
		fmt.Sprintf("Batch %d has %d students with an average performance of %s.",
			b.BatchYear, s.TotalStudents, Pct(s.AvgPerformance.Float())),
		fmt.Sprintf("%s are high-risk students, with an average dropout probability of %s.",
			Pct(s.HighRiskPct.Float()), Pct(s.AvgDropout.Float())),
	)
	n.Summary = append(n.Summary, b.Insights.Insights...)

	n.Suggestions = append(n.Suggestions, b.Insights.Recommendations...)
	if s.HighRiskPct > 20 {
		n.Suggestions = append(n.Suggestions, fmt.Sprintf(
			"URGENT: Conduct batch-wide intervention for %d - %s high-risk rate is critical.",
			b.BatchYear, Pct(s.HighRiskPct.Float())))
	}
	mentors := min(10, int(math.Ceil(float64(s.TotalStudents)*0.1)))
	n.Suggestions = append(n.Suggestions,
		fmt.Sprintf("Assign dedicated mentors to top %d high-risk students in batch %d.", mentors, b.BatchYear),
		fmt.Sprintf("Celebrate and leverage %s top performers as peer mentors.", Pct(s.TopPerformersPct.Float())),
		"Schedule monthly batch review meetings to track intervention effectiveness.",
	)
	return n
}

// StudentReport is the student-mode header, tiles and narrative.
type StudentReport struct {
	Title     string
	Meta      string
	Metrics   string
	KPIs      []KPI
	NeedAlert bool
	Narrative
}

// AlertNotice is shown above the summary when a mentor alert is required.
const AlertNotice = "Mentor Alert Required: This student needs immediate attention and support."

// Report builds the student-mode view of a prediction.
func Report(r core.PredictResult) StudentReport {
	s, f, p := r.Student, r.Features, r.Predictions

	rep := StudentReport{
		Title: fmt.Sprintf("%s (%s)", s.Name, s.RNO),
		Meta:  fmt.Sprintf("Dept: %s • Year: %d • Semester: %d", s.Dept, s.Year, s.CurrSem),
		Metrics: fmt.Sprintf("Internal: %s • Attendance: %s • Behavior: %s",
			Pct(f.InternalPct.Float()), Pct(f.AttendancePct.Float()), Pct(f.BehaviorPct.Float())),
		KPIs: []KPI{
			{Label: "PERFORMANCE " + Upper(p.PerformanceLabel), Value: Pct(f.PerformanceOverall.Float()), Tone: Tone(p.PerformanceLabel, false)},
			{Label: "RISK " + Upper(p.RiskLabel), Value: Pct(f.RiskScore.Float()), Tone: Tone(p.RiskLabel, true)},
			{Label: "DROPOUT " + Upper(p.DropoutLabel), Value: Pct(f.DropoutScore.Float()), Tone: Tone(p.DropoutLabel, true)},
		},
		NeedAlert: r.NeedAlert,
	}

	if r.NeedAlert {
		rep.Summary = append(rep.Summary, AlertNotice)
	}
	rep.Summary = append(rep.Summary,
		fmt.Sprintf("Overall academic performance is %s (%s).", Upper(p.PerformanceLabel), Pct(f.PerformanceOverall.Float())),
		fmt.Sprintf("Risk indicators: %s, Dropout risk: %s.", Upper(p.RiskLabel), Upper(p.DropoutLabel)),
		fmt.Sprintf("Attendance: %s (Present: %g%%, Previous: %g%%).", Pct(f.AttendancePct.Float()), f.PresentAtt.Float(), f.PrevAtt.Float()),
	)
	rep.Suggestions = studentSuggestions(p, f)
	return rep
}

func studentSuggestions(p core.Predictions, f core.Features) []string {
	var out []string
	add := func(s ...string) { out = append(out, s...) }

	switch p.PerformanceLabel {
	case "poor":
		add("CRITICAL: Immediate intervention required - schedule emergency counseling session within 24 hours.",
			"Implement intensive remedial program with daily 1-hour sessions for 2 weeks.",
			"Arrange peer tutoring with high-performing students in the same department.",
			"Contact parents/guardians immediately to discuss academic support strategies.")
	case "medium":
		add("Schedule bi-weekly mentoring sessions to monitor progress and prevent decline.",
			"Provide targeted practice materials focusing on weak subject areas.",
			"Create personalized study schedule with specific milestones and deadlines.")
	case "high":
		add("Excellent performance! Consider advanced learning opportunities and leadership roles.",
			"Encourage participation in academic competitions and research projects.")
	}

	if p.RiskLabel == "high" {
		add("Assign dedicated mentor for weekly one-on-one sessions to identify and address learning barriers.",
			"Conduct learning style assessment to customize teaching approach.",
			"Implement weekly progress tracking with specific, measurable goals.")
	}

	switch p.DropoutLabel {
	case "high":
		add("HIGH DROPOUT RISK: Implement comprehensive retention strategy immediately.",
			"Engage family support system - schedule parent-teacher conference within 48 hours.",
			"Connect with student counseling services for emotional and academic support.")
	case "medium":
		add("Monitor closely for early warning signs and maintain regular check-ins.",
			"Highlight student's strengths and celebrate small wins to boost motivation.")
	}

	switch att := f.AttendancePct.Float(); {
	case att < 60:
		add("CRITICAL ATTENDANCE ISSUE: Investigate underlying causes (health, transportation, family issues).",
			"Implement daily attendance monitoring with immediate follow-up for absences.")
	case att < 75:
		add("Create structured attendance improvement plan with weekly targets and rewards.",
			"Set up automated attendance alerts for parents/guardians.")
	}

	switch internal := f.InternalPct.Float(); {
	case internal < 40:
		add("URGENT: Conduct diagnostic assessment to identify specific knowledge gaps.",
			"Provide intensive subject-specific tutoring with qualified instructors.")
	case internal < 60:
		add("Increase frequency of internal assessments and provide immediate feedback.",
			"Focus on concept clarity through visual aids and practical examples.")
	}

	if f.PerformanceOverall >= 80 {
		add("Outstanding performance! Consider nominating for academic excellence awards.",
			"Encourage student to mentor struggling peers - benefits both parties.")
	}
	return out
}
