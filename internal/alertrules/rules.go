// Package alertrules decides how urgently a mentor should be alerted about
// a student, and what they should do about it.
//
// The built-in rules can be replaced by a Starlark script that defines
//
//	def alert_level(predictions, features):
//	    return "critical" | "high" | "medium" | "low"
//
// where both arguments are dicts keyed by the API field names.
package alertrules

import (
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// Level is an alert urgency.
type Level string

// Alert levels, most urgent first.
const (
	LevelCritical Level = "critical"
	LevelHigh     Level = "high"
	LevelMedium   Level = "medium"
	LevelLow      Level = "low"
)

// ParseLevel validates a level name.
func ParseLevel(s string) (Level, bool) {
	switch Level(s) {
	case LevelCritical, LevelHigh, LevelMedium, LevelLow:
		return Level(s), true
	default:
		return "", false
	}
}

// Attendance thresholds, in percent.
const (
	CriticalAttendance = 60
	HighAttendance     = 75
	LowInternal        = 60
)

// Assessment is everything the alert dialog shows.
type Assessment struct {
	Level    Level
	Title    string
	Urgency  string
	Actions  []string
	Timeline string
}

// BuiltinLevel applies the default rules.
func BuiltinLevel(p core.Predictions, f core.Features) Level {
	att := float64(f.AttendancePct)
	switch {
	case p.PerformanceLabel == "poor" || p.RiskLabel == "high" || p.DropoutLabel == "high" || att < CriticalAttendance:
		return LevelCritical
	case p.PerformanceLabel == "medium" || p.RiskLabel == "medium" || att < HighAttendance:
		return LevelHigh
	default:
		return LevelMedium
	}
}

// Headline returns the dialog title and urgency line for a level.
func Headline(l Level) (title, urgency string) {
	switch l {
	case LevelCritical:
		return "CRITICAL ALERT", "IMMEDIATE ACTION REQUIRED"
	case LevelHigh:
		return "HIGH PRIORITY ALERT", "URGENT ATTENTION NEEDED"
	case LevelMedium:
		return "MONITORING ALERT", "REGULAR FOLLOW-UP"
	default:
		return "STATUS UPDATE", "ROUTINE CHECK-IN"
	}
}

// ActionItems lists recommended interventions for a level, plus extra
// items for weak attendance or internal marks.
func ActionItems(l Level, f core.Features) []string {
	var items []string
	switch l {
	case LevelCritical:
		items = []string{
			"Schedule EMERGENCY counseling session within 12 hours",
			"Contact parents/guardians immediately",
			"Assign dedicated mentor for daily check-ins",
			"Develop intensive intervention strategy",
		}
	case LevelHigh:
		items = []string{
			"Schedule counseling session within 24 hours",
			"Conduct comprehensive academic assessment",
			"Implement personalized support plan",
			"Establish weekly progress monitoring",
		}
	case LevelMedium:
		items = []string{
			"Schedule bi-weekly mentoring sessions",
			"Provide targeted academic resources",
			"Monitor attendance and performance trends",
			"Offer study skills workshops",
		}
	default:
		items = []string{
			"Continue regular monitoring schedule",
			"Acknowledge positive performance",
			"Explore advanced learning opportunities",
			"Consider peer mentoring roles",
		}
	}
	if float64(f.AttendancePct) < HighAttendance {
		items = append(items, "Address attendance issues immediately")
	}
	if float64(f.InternalPct) < LowInternal {
		items = append(items, "Provide intensive academic support")
	}
	return items
}

// Timeline returns the expected response window for a level.
func Timeline(l Level) string {
	switch l {
	case LevelCritical:
		return "IMMEDIATE RESPONSE REQUIRED - Contact student within 12 hours and report back within 24 hours"
	case LevelHigh:
		return "URGENT RESPONSE REQUIRED - Initial contact within 24 hours, intervention plan within 48 hours"
	case LevelMedium:
		return "TIMELY RESPONSE REQUIRED - Contact within 48 hours, assessment within 1 week"
	default:
		return "ROUTINE FOLLOW-UP - Schedule check-in within 1 week, continue regular monitoring"
	}
}

// Assess builds the full assessment for a level.
func Assess(l Level, f core.Features) Assessment {
	title, urgency := Headline(l)
	return Assessment{
		Level:    l,
		Title:    title,
		Urgency:  urgency,
		Actions:  ActionItems(l, f),
		Timeline: Timeline(l),
	}
}
