package render

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/edumetric-labs/edumetric/internal/apiclient"
	"github.com/edumetric-labs/edumetric/internal/drilldown"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

func mustRequest(t *testing.T, kind, value, scope, scopeValue string) core.FilterRequest {
	t.Helper()
	req, err := core.NewFilterRequest(kind, value, scope, scopeValue)
	require.NoError(t, err)
	return req
}

// =============================================================================
// Drill-down view
// =============================================================================

func TestDrilldown_Phases(t *testing.T) {
	req := mustRequest(t, "risk_label", "high", "batch", "2024")

	tests := []struct {
		name      string
		state     drilldown.State
		title     string
		count     string
		message   string
		visible   bool
		canRetry  bool
		rowsCount int
	}{
		{
			name:  "idle",
			state: drilldown.State{},
		},
		{
			name:    "loading",
			state:   drilldown.State{Status: drilldown.StatusLoading, Request: req},
			title:   DrilldownLoadingTitle,
			count:   DrilldownLoadingCount,
			message: DrilldownLoadingBody,
			visible: true,
		},
		{
			name: "success",
			state: drilldown.State{Status: drilldown.StatusSuccess, Request: req, Count: 2, Result: []core.StudentSummary{
				{RNO: "1", Name: "A", Dept: "CSE", Year: 2, RiskLabel: "high"},
				{RNO: "2", Name: "B", Dept: "ECE", Year: 3, RiskLabel: "high"},
			}},
			title:     "HIGH RISK STUDENTS",
			count:     "2 students",
			visible:   true,
			rowsCount: 2,
		},
		{
			name:    "empty",
			state:   drilldown.State{Status: drilldown.StatusSuccess, Request: req},
			title:   "HIGH RISK STUDENTS",
			count:   "0 students",
			message: DrilldownEmpty,
			visible: true,
		},
		{
			name: "application error",
			state: drilldown.State{Status: drilldown.StatusError, Request: req,
				ErrorKind: apiclient.KindApplication, ErrorMessage: "bad scope"},
			title:    DrilldownErrorTitle,
			count:    DrilldownErrorCount,
			message:  "Failed to load student details: bad scope",
			visible:  true,
			canRetry: true,
		},
		{
			name: "network error",
			state: drilldown.State{Status: drilldown.StatusError, Request: req,
				ErrorKind: apiclient.KindNetwork, ErrorMessage: drilldown.NetworkErrorMessage},
			title:    DrilldownNetworkTitle,
			count:    DrilldownNetworkCount,
			message:  drilldown.NetworkErrorMessage,
			visible:  true,
			canRetry: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Drilldown(tt.state)
			assert.Equal(t, tt.visible, v.Visible)
			assert.Equal(t, tt.title, v.Title)
			assert.Equal(t, tt.count, v.Count)
			assert.Equal(t, tt.message, v.Message)
			assert.Equal(t, tt.canRetry, v.CanRetry)
			assert.Len(t, v.Rows, tt.rowsCount)
		})
	}
}

func TestDrilldown_PrefersServerFilterInfo(t *testing.T) {
	st := drilldown.State{
		Status:     drilldown.StatusSuccess,
		Request:    mustRequest(t, "performance", "poor", "year", "2"),
		FilterInfo: core.FilterInfo{FilterType: "dropout_label", FilterValue: "medium"},
	}
	assert.Equal(t, "MEDIUM DROPOUT STUDENTS", Drilldown(st).Title)
}

// =============================================================================
// Tables and charts
// =============================================================================

func TestGroupTable(t *testing.T) {
	empty := GroupTable(nil, true)
	assert.True(t, empty.Empty())
	assert.Equal(t, NoGroupData, empty.Placeholder)

	tbl := GroupTable([]core.StudentSummary{{
		RNO: "24CS01", Name: "Asha", Dept: "CSE", Year: 1, CurrSem: 2,
		PerformanceLabel: "high", PerformanceOverall: 81.25, RiskScore: 12, DropoutScore: 3.04,
	}}, true)
	require.Len(t, tbl.Rows, 1)
	assert.Len(t, tbl.Columns, len(tbl.Rows[0].Cells))
	assert.Equal(t, []string{"24CS01", "Asha", "CSE", "1", "2", "HIGH", "UNKNOWN", "UNKNOWN", "81.2%", "12.0%", "3.0%"}, tbl.Rows[0].Cells)

	noDept := GroupTable([]core.StudentSummary{{RNO: "1"}}, false)
	assert.Len(t, noDept.Rows[0].Cells, len(noDept.Columns))
	assert.NotContains(t, noDept.Columns, "Dept")
}

func TestDonut(t *testing.T) {
	d := Donut("RISK", core.FilterRisk, map[string]int{"low": 2, "high": 1, "medium": 1})
	require.Len(t, d.Slices, 3)
	assert.Equal(t, "high", d.Slices[0].Label)
	assert.Equal(t, "low", d.Slices[2].Label)
	assert.InDelta(t, 50.0, d.Slices[2].Percent, 1e-9)

	assert.True(t, Donut("x", core.FilterRisk, map[string]int{"high": 0}).Empty())
}

func TestKindForChart(t *testing.T) {
	k, ok := KindForChart("batch-perf-donut")
	assert.True(t, ok)
	assert.Equal(t, core.FilterPerformance, k)

	k, ok = KindForChart("dept-dropout")
	assert.True(t, ok)
	assert.Equal(t, core.FilterDropout, k)

	_, ok = KindForChart("semester-trend")
	assert.False(t, ok)
}

func TestBoxPlot(t *testing.T) {
	_, err := BoxPlot(nil)
	assert.ErrorIs(t, err, ErrNoScores)

	b, err := BoxPlot([]float64{5, 1, 3, 2, 4})
	require.NoError(t, err)
	assert.Equal(t, 5, b.N)
	assert.Equal(t, 1.0, b.Min)
	assert.Equal(t, 5.0, b.Max)
	assert.Equal(t, 3.0, b.Median)
	assert.Equal(t, 3.0, b.Mean)
	assert.LessOrEqual(t, b.Q1, b.Median)
	assert.GreaterOrEqual(t, b.Q3, b.Median)
}

func TestHistogram(t *testing.T) {
	bins, err := Histogram([]float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, 5)
	require.NoError(t, err)
	require.Len(t, bins, 5)

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 11, total, "every score lands in a bin, including the maximum")
	assert.Equal(t, 0.0, bins[0].Lo)

	same, err := Histogram([]float64{7, 7, 7}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, same[0].Count)

	_, err = Histogram(nil, 3)
	assert.ErrorIs(t, err, ErrNoScores)
}

func TestSemesterTrend(t *testing.T) {
	pts := SemesterTrend([]core.OptFloat{core.Float(7.5), {}, core.Float(0), core.Float(8)})
	assert.Equal(t, []TrendPoint{{Semester: 1, Value: 7.5}, {Semester: 4, Value: 8}}, pts)
}

// =============================================================================
// Reports and exports
// =============================================================================

func samplePrediction() core.PredictResult {
	return core.PredictResult{
		Student: core.Student{Name: "Asha", RNO: "24CS01", Dept: "CSE", Year: 1, CurrSem: 2},
		Features: core.Features{
			InternalPct: 55, AttendancePct: 70, BehaviorPct: 80,
			PerformanceOverall: 62.5, RiskScore: 40, DropoutScore: 20,
		},
		Predictions: core.Predictions{PerformanceLabel: "medium", RiskLabel: "high", DropoutLabel: "low"},
		NeedAlert:   true,
	}
}

func TestReport(t *testing.T) {
	rep := Report(samplePrediction())
	assert.Equal(t, "Asha (24CS01)", rep.Title)
	assert.Equal(t, "Dept: CSE • Year: 1 • Semester: 2", rep.Meta)
	assert.Equal(t, AlertNotice, rep.Summary[0])
	require.Len(t, rep.KPIs, 3)
	assert.Equal(t, "RISK HIGH", rep.KPIs[1].Label)
	assert.Equal(t, "bad", rep.KPIs[1].Tone)
	assert.Contains(t, rep.Suggestions, "Set up automated attendance alerts for parents/guardians.")
	assert.Contains(t, rep.Suggestions, "Focus on concept clarity through visual aids and practical examples.")
}

func TestBatchSummary(t *testing.T) {
	n := BatchSummary(core.BatchAnalysis{
		BatchYear: 2024,
		Stats:     core.BatchStats{TotalStudents: 250, HighRiskPct: 25},
	})
	assert.Contains(t, n.Suggestions[0], "URGENT")
	assert.Contains(t, n.Suggestions, "Assign dedicated mentors to top 10 high-risk students in batch 2024.")
}

func TestWriteStudentCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStudentCSV(&buf, samplePrediction()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, StudentCSVHeader, records[0])
	assert.Equal(t, []string{"Asha", "24CS01", "CSE", "1", "2", "55", "70", "80", "62.5", "40", "20", "medium", "high", "low"}, records[1])
	assert.Equal(t, "student_24CS01.csv", StudentCSVName("24CS01"))
}

func TestWriteStudentsXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStudentsXLSX(&buf, []core.StudentSummary{
		{RNO: "1", Name: "A", RiskLabel: "high"},
		{RNO: "2", Name: "B", RiskLabel: "low"},
	}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(XLSXSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "RNO", rows[0][0])
	assert.Equal(t, "B", rows[2][1])
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown("<h2>Summary</h2><p>Risk is <strong>HIGH</strong></p>")
	require.NoError(t, err)
	assert.Contains(t, md, "## Summary")
	assert.Contains(t, md, "**HIGH**")
}

func TestBoxPlot_SingleScore(t *testing.T) {
	b, err := BoxPlot([]float64{42})
	require.NoError(t, err)
	assert.Equal(t, 42.0, b.Q1)
	assert.Equal(t, 42.0, b.Q3)
}
