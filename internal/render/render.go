// Package render turns API payloads and workflow state into view models
// shared by the web dashboard, the TUI and the CLI.
//
// Nothing here performs I/O except the exporters, which write to a
// caller-supplied io.Writer.
package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upper = cases.Upper(language.Und)

// Upper upper-cases a label for display.
func Upper(s string) string {
	return upper.String(s)
}

// Pct formats a percentage with one decimal.
func Pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// LabelOrUnknown returns the label or "unknown" when it is blank.
func LabelOrUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}

// Tone classifies a label for styling: "good", "bad" or "medium".
// Reverse flips the meaning for risk-like labels where high is bad.
func Tone(label string, reverse bool) string {
	switch label {
	case "high":
		if reverse {
			return "bad"
		}
		return "good"
	case "low", "poor":
		if reverse {
			return "good"
		}
		return "bad"
	default:
		return "medium"
	}
}
