package drilldown

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumetric-labs/edumetric/internal/apiclient"
	wf "github.com/edumetric-labs/edumetric/internal/drilldown"
	"github.com/edumetric-labs/edumetric/internal/testutil"
	"github.com/edumetric-labs/edumetric/internal/ui/features"
	"github.com/edumetric-labs/edumetric/internal/viewstate"
)

func setupTestHandlers(t *testing.T) (*Handlers, *features.TestFixture) {
	t.Helper()
	fixture := features.SetupTestFixture(t)
	fixture.API.JSON(apiclient.PathDrilldown, http.StatusOK, `{"success": true, "count": 1,
		"filter_info": {"filter_type": "risk_label", "filter_value": "high"},
		"students": [{"RNO": "24CS01", "NAME": "Asha", "DEPT": "CSE", "YEAR": 1, "risk_label": "high"}]}`)
	return NewHandlers(fixture.Sessions, testutil.NewTestLogger(t)), fixture
}

func ddSignals(kind, chart, value, scope, scopeValue string) map[string]any {
	return map[string]any{"dd": map[string]string{
		"kind": kind, "chart": chart, "value": value, "scope": scope, "scopeValue": scopeValue,
	}}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name      string
		signals   map[string]any
		wantWire  map[string]string
		wantTitle string
	}{
		{
			name:      "explicit kind",
			signals:   ddSignals("risk_label", "", "high", "dept", "CSE"),
			wantWire:  map[string]string{"filter_type": "risk_label", "filter_value": "high", "scope": "dept", "scope_value": "CSE"},
			wantTitle: "HIGH RISK STUDENTS",
		},
		{
			name:      "chart id",
			signals:   ddSignals("", "deptDropoutChart", "HIGH", "year", "2"),
			wantWire:  map[string]string{"filter_type": "dropout_label", "filter_value": "high", "scope": "year", "scope_value": "2"},
			wantTitle: "HIGH RISK STUDENTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fixture := setupTestHandlers(t)
			sess := fixture.Session()

			rec := httptest.NewRecorder()
			h.Open(rec, fixture.SignalsRequest(http.MethodPost, "/drilldown", tt.signals))

			var sent map[string]string
			require.NoError(t, json.Unmarshal(fixture.API.LastBody(apiclient.PathDrilldown), &sent))
			assert.Equal(t, tt.wantWire, sent)

			snap := sess.Controller.Snapshot()
			assert.Equal(t, wf.StatusSuccess, snap.Drilldown.Status)
			assert.True(t, snap.View.IsOpen(viewstate.ModalDrilldown))
			assert.Contains(t, rec.Body.String(), tt.wantTitle)
			assert.Contains(t, rec.Body.String(), "Asha")
		})
	}
}

func TestOpen_Invalid(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	sess := fixture.Session()

	rec := httptest.NewRecorder()
	h.Open(rec, fixture.SignalsRequest(http.MethodPost, "/drilldown", ddSignals("attendance", "", "high", "batch", "2024")))

	snap := sess.Controller.Snapshot()
	assert.NotNil(t, snap.Notice)
	assert.False(t, snap.View.IsOpen(viewstate.ModalDrilldown))
	assert.Zero(t, fixture.API.Calls(apiclient.PathDrilldown))
}

func TestRetryAndClose(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	fixture.API.JSON(apiclient.PathDrilldown, http.StatusBadGateway, `<html>bad gateway</html>`)
	sess := fixture.Session()

	rec := httptest.NewRecorder()
	h.Open(rec, fixture.SignalsRequest(http.MethodPost, "/drilldown", ddSignals("risk", "", "high", "batch", "2024")))
	require.Equal(t, wf.StatusError, sess.Controller.Snapshot().Drilldown.Status)
	assert.Contains(t, rec.Body.String(), "Retry")

	fixture.API.JSON(apiclient.PathDrilldown, http.StatusOK, `{"success": true, "students": []}`)
	rec = httptest.NewRecorder()
	h.Retry(rec, fixture.NewRequest(http.MethodPost, "/drilldown/retry", nil))
	assert.Equal(t, wf.StatusSuccess, sess.Controller.Snapshot().Drilldown.Status)
	assert.Contains(t, rec.Body.String(), "No students found for this filter")

	rec = httptest.NewRecorder()
	h.Close(rec, fixture.NewRequest(http.MethodPost, "/drilldown/close", nil))
	assert.Equal(t, wf.StatusIdle, sess.Controller.Snapshot().Drilldown.Status)
	assert.False(t, sess.Controller.Snapshot().View.IsOpen(viewstate.ModalDrilldown))

	// Retrying with nothing failed is a no-op.
	rec = httptest.NewRecorder()
	h.Retry(rec, fixture.NewRequest(http.MethodPost, "/drilldown/retry", nil))
	assert.Nil(t, sess.Controller.Snapshot().Notice)
}
