package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterKind(t *testing.T) {
	tests := []struct {
		in   string
		want FilterKind
		ok   bool
	}{
		{"risk", FilterRisk, true},
		{"risk_label", FilterRisk, true},
		{"Performance", FilterPerformance, true},
		{" dropout_label ", FilterDropout, true},
		{"attendance", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseFilterKind(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScope(t *testing.T) {
	sc, ok := ParseScope("dept")
	require.True(t, ok)
	assert.Equal(t, ScopeDepartment, sc)
	assert.Equal(t, "dept", sc.Wire())
	assert.Equal(t, "department", sc.String())

	sc, ok = ParseScope("batch")
	require.True(t, ok)
	assert.Equal(t, "batch", sc.Wire())

	_, ok = ParseScope("galaxy")
	assert.False(t, ok)
}

func TestNewFilterRequest(t *testing.T) {
	tests := []struct {
		name      string
		kind      string
		value     string
		scope     string
		scopeVal  string
		wantField string
	}{
		{name: "valid", kind: "risk_label", value: "high", scope: "batch", scopeVal: "2024"},
		{name: "bad kind", kind: "mood", value: "high", scope: "batch", scopeVal: "2024", wantField: "filter_kind"},
		{name: "bad scope", kind: "risk", value: "high", scope: "planet", scopeVal: "2024", wantField: "scope"},
		{name: "empty value", kind: "risk", value: "  ", scope: "batch", scopeVal: "2024", wantField: "filter_value"},
		{name: "empty scope value", kind: "risk", value: "high", scope: "year", scopeVal: "", wantField: "scope_value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewFilterRequest(tt.kind, tt.value, tt.scope, tt.scopeVal)
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.False(t, req.IsZero())
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.True(t, req.IsZero())
		})
	}
}

func TestFilterRequest_MarshalJSON(t *testing.T) {
	req, err := NewFilterRequest("risk", "high", "department", "CSE")
	require.NoError(t, err)

	b, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"filter_type":"risk_label","filter_value":"high","scope":"dept","scope_value":"CSE"}`, string(b))
}

func TestStudentSummary_FlexibleNumbers(t *testing.T) {
	body := `{"RNO": 2101, "NAME": "Asha", "DEPT": "CSE", "YEAR": "3", "CURR_SEM": 5,
		"risk_label": "high", "risk_score": "71.5", "dropout_score": null}`

	var s StudentSummary
	require.NoError(t, json.Unmarshal([]byte(body), &s))
	assert.Equal(t, FlexString("2101"), s.RNO)
	assert.Equal(t, FlexInt(3), s.Year)
	assert.Equal(t, FlexInt(5), s.CurrSem)
	assert.InDelta(t, 71.5, float64(s.RiskScore), 0.001)
	assert.Zero(t, s.DropoutScore)
}

func TestOptFloat(t *testing.T) {
	var trend []OptFloat
	require.NoError(t, json.Unmarshal([]byte(`[7.5, null, "8"]`), &trend))
	require.Len(t, trend, 3)
	assert.True(t, trend[0].Valid)
	assert.False(t, trend[1].Valid)
	assert.InDelta(t, 8.0, trend[2].Value, 0.001)

	b, err := json.Marshal(trend)
	require.NoError(t, err)
	assert.JSONEq(t, `[7.5, null, 8]`, string(b))
}

func TestStudent_Validate(t *testing.T) {
	valid := NewStudent()
	valid.Name = "Asha"
	valid.RNO = "2101"
	valid.Email = "asha@example.edu"
	valid.Dept = "CSE"
	valid.Year = 3
	valid.CurrSem = 5

	require.NoError(t, valid.Validate())

	tests := []struct {
		name      string
		mutate    func(s *Student)
		wantField string
	}{
		{"missing name", func(s *Student) { s.Name = "" }, "NAME"},
		{"bad email", func(s *Student) { s.Email = "not-an-email" }, "EMAIL"},
		{"year out of range", func(s *Student) { s.Year = 7 }, "YEAR"},
		{"missing semester", func(s *Student) { s.CurrSem = 0 }, "CURR_SEM"},
		{"attended exceeds total", func(s *Student) { s.AttendedDaysCurr = 120 }, "ATTENDED_DAYS_CURR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestFilterInfo_Fallbacks(t *testing.T) {
	var a, b FilterInfo
	require.NoError(t, json.Unmarshal([]byte(`{"type":"risk_label","value":"high"}`), &a))
	require.NoError(t, json.Unmarshal([]byte(`{"filter_type":"dropout_label","filter_value":"low"}`), &b))

	assert.Equal(t, "risk_label", a.Kind())
	assert.Equal(t, "high", a.Label())
	assert.Equal(t, "dropout_label", b.Kind())
	assert.Equal(t, "low", b.Label())
}
