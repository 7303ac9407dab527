package alertrules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumetric-labs/edumetric/internal/testutil"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

func TestBuiltinLevel(t *testing.T) {
	tests := []struct {
		name string
		p    core.Predictions
		att  float64
		want Level
	}{
		{"poor performance", core.Predictions{PerformanceLabel: "poor", RiskLabel: "low", DropoutLabel: "low"}, 90, LevelCritical},
		{"high risk", core.Predictions{PerformanceLabel: "high", RiskLabel: "high", DropoutLabel: "low"}, 90, LevelCritical},
		{"very low attendance", core.Predictions{PerformanceLabel: "high", RiskLabel: "low", DropoutLabel: "low"}, 55, LevelCritical},
		{"medium risk", core.Predictions{PerformanceLabel: "high", RiskLabel: "medium", DropoutLabel: "low"}, 90, LevelHigh},
		{"low attendance", core.Predictions{PerformanceLabel: "high", RiskLabel: "low", DropoutLabel: "low"}, 70, LevelHigh},
		{"healthy", core.Predictions{PerformanceLabel: "high", RiskLabel: "low", DropoutLabel: "low"}, 92, LevelMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuiltinLevel(tt.p, core.Features{AttendancePct: core.FlexFloat(tt.att)})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActionItems_Extras(t *testing.T) {
	base := ActionItems(LevelMedium, core.Features{AttendancePct: 90, InternalPct: 80})
	assert.Len(t, base, 4)

	extra := ActionItems(LevelHigh, core.Features{AttendancePct: 70, InternalPct: 50})
	assert.Len(t, extra, 6)
	assert.Contains(t, extra, "Address attendance issues immediately")
	assert.Contains(t, extra, "Provide intensive academic support")
}

func TestAssess(t *testing.T) {
	a := Assess(LevelCritical, core.Features{AttendancePct: 95, InternalPct: 90})
	assert.Equal(t, "CRITICAL ALERT", a.Title)
	assert.Equal(t, "IMMEDIATE ACTION REQUIRED", a.Urgency)
	assert.Contains(t, a.Timeline, "12 hours")
	assert.Len(t, a.Actions, 4)
}

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.star")
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))
	return path
}

func TestEngine_Script(t *testing.T) {
	path := writeScript(t, `
def alert_level(predictions, features):
    if features["attendance_pct"] < 50:
        return "critical"
    if predictions["risk_label"] == "low":
        return "low"
    return "medium"
`)

	e, err := Load(path, testutil.NewTestLogger(t))
	require.NoError(t, err)
	assert.True(t, e.Scripted())

	assert.Equal(t, LevelLow, e.Level(core.Predictions{RiskLabel: "low"}, core.Features{AttendancePct: 90}))
	assert.Equal(t, LevelCritical, e.Level(core.Predictions{RiskLabel: "low"}, core.Features{AttendancePct: 40}))

	a := e.Assess(core.Predictions{RiskLabel: "low"}, core.Features{AttendancePct: 90, InternalPct: 90})
	assert.Equal(t, "Continue regular monitoring schedule", a.Actions[0])
}

func TestEngine_ScriptFallsBack(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "unknown level",
			src: `
def alert_level(predictions, features):
    return "apocalyptic"
`,
		},
		{
			name: "non-string result",
			src: `
def alert_level(predictions, features):
    return 3
`,
		},
		{
			name: "runtime error",
			src: `
def alert_level(predictions, features):
    return predictions["missing"]
`,
		},
		{
			name: "runaway loop",
			src: `
def alert_level(predictions, features):
    n = 0
    for i in range(100000000):
        n += 1
    return "low"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Load(writeScript(t, tt.src), testutil.NewTestLogger(t))
			require.NoError(t, err)

			got := e.Level(core.Predictions{RiskLabel: "high"}, core.Features{AttendancePct: 90})
			assert.Equal(t, LevelCritical, got, "built-in rules decide")
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.star"), nil)
	assert.Error(t, err)

	_, err = Load(writeScript(t, "x = 1\n"), nil)
	assert.ErrorContains(t, err, "not defined")

	_, err = Load(writeScript(t, "alert_level = 3\n"), nil)
	assert.ErrorContains(t, err, "not a function")

	e, err := Load("", nil)
	require.NoError(t, err)
	assert.False(t, e.Scripted())
}
