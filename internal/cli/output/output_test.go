package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/drilldown"
	"github.com/edumetric-labs/edumetric/internal/render"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

func newRenderer(mode Mode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{ModeJSON, true, ModeJSON},
		{"", false, ModeMarkdown},
		{ModeText, false, ModeText},
	}
	for _, tt := range tests {
		r, _, _ := newRenderer(tt.mode, tt.isTTY)
		assert.Equal(t, tt.want, r.EffectiveMode(), "mode=%q tty=%v", tt.mode, tt.isTTY)
	}
}

func TestNewRenderer_BufferIsNotTTY(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
}

func sampleTable() render.Table {
	return render.GroupTable([]core.StudentSummary{
		{RNO: "24CS01", Name: "Asha", Dept: "CSE", Year: 1, PerformanceLabel: "high", RiskLabel: "low", DropoutLabel: "low"},
		{RNO: "24CS02", Name: "Ravi", Dept: "CSE", Year: 1, PerformanceLabel: "poor", RiskLabel: "high", DropoutLabel: "high"},
	}, true)
}

func TestTable_Text(t *testing.T) {
	r, out, _ := newRenderer(ModeText, false)
	r.Table(sampleTable())

	assert.Contains(t, out.String(), "24CS01")
	assert.Contains(t, out.String(), "(2 rows)")
	assert.Contains(t, out.String(), "┌")
}

func TestTable_Markdown(t *testing.T) {
	r, out, _ := newRenderer(ModeMarkdown, false)
	r.Table(sampleTable())

	assert.Contains(t, out.String(), "| RNO |")
	assert.Contains(t, out.String(), "| 24CS02 |")
	assert.NotContains(t, out.String(), "rows)")
}

func TestTable_Empty(t *testing.T) {
	r, out, _ := newRenderer(ModeText, false)
	r.Table(render.GroupTable(nil, false))
	assert.Contains(t, out.String(), render.NoGroupData)
}

func TestNarrative_Markdown(t *testing.T) {
	r, out, _ := newRenderer(ModeMarkdown, false)
	require.NoError(t, r.Narrative("Summary", render.Narrative{
		Summary:     []string{"Risk is HIGH"},
		Suggestions: []string{"Call parents"},
	}))

	assert.Contains(t, out.String(), "### Summary")
	assert.Contains(t, out.String(), "Risk is HIGH")
	assert.Contains(t, out.String(), "- Call parents")
}

func TestNarrative_TextHasNoANSIWithoutTTY(t *testing.T) {
	r, out, _ := newRenderer(ModeText, false)
	require.NoError(t, r.Narrative("Summary", render.Narrative{Summary: []string{"ok"}}))
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestDrilldown(t *testing.T) {
	req, err := core.NewFilterRequest("risk_label", "high", "batch", "2024")
	require.NoError(t, err)
	st := drilldown.State{
		Status:  drilldown.StatusSuccess,
		Request: req,
		Count:   1,
		Result:  []core.StudentSummary{{RNO: "24CS01", Name: "Asha", RiskLabel: "high"}},
	}

	r, out, _ := newRenderer(ModeText, false)
	require.NoError(t, r.Drilldown(st))
	assert.Contains(t, out.String(), "HIGH RISK STUDENTS")
	assert.Contains(t, out.String(), "24CS01")

	r, out, _ = newRenderer(ModeJSON, false)
	require.NoError(t, r.Drilldown(st))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "success", decoded["status"])
	assert.EqualValues(t, 1, decoded["count"])
}

func TestDrilldown_ErrorGoesToStderr(t *testing.T) {
	st := drilldown.State{Status: drilldown.StatusError, ErrorMessage: drilldown.NetworkErrorMessage}
	r, _, errOut := newRenderer(ModeText, false)
	require.NoError(t, r.Drilldown(st))
	assert.Contains(t, errOut.String(), drilldown.NetworkErrorMessage)
}

func TestGroup(t *testing.T) {
	g := app.Group{
		Scope: core.ScopeDepartment,
		Title: "CSE Department",
		Analysis: core.GroupAnalysis{
			Stats:       core.GroupStats{TotalStudents: 2},
			LabelCounts: core.LabelCounts{Risk: map[string]int{"high": 1, "low": 1}},
			Table:       []core.StudentSummary{{RNO: "24CS01", Name: "Asha"}},
		},
	}
	r, out, _ := newRenderer(ModeText, false)
	require.NoError(t, r.Group(g))

	assert.Contains(t, out.String(), "CSE Department")
	assert.Contains(t, out.String(), "HIGH 1 (50.0%)")
	assert.NotContains(t, out.String(), "Dept", "department tables omit the department column")
}

func TestStats(t *testing.T) {
	r, out, _ := newRenderer(ModeText, false)
	require.NoError(t, r.Stats(core.Stats{TotalStudents: 42, Departments: []core.FlexString{"CSE", "ECE"}, Years: []core.FlexInt{1, 2}}))
	assert.Contains(t, out.String(), "42")
	assert.Contains(t, out.String(), "CSE, ECE")
}
