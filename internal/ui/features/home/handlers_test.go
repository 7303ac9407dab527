package home

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumetric-labs/edumetric/internal/apiclient"
	"github.com/edumetric-labs/edumetric/internal/testutil"
	"github.com/edumetric-labs/edumetric/internal/ui/features"
	"github.com/edumetric-labs/edumetric/internal/viewstate"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupTestHandlers(t *testing.T) (*Handlers, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t)
	fixture.API.JSON(apiclient.PathStats, http.StatusOK,
		`{"total_students": 120, "departments": ["CSE", "ECE"], "years": [1, 2, 3, 4]}`)

	handlers := NewHandlers(fixture.Sessions, testutil.NewTestLogger(t), true)
	return handlers, fixture
}

// =============================================================================
// HomePage Tests - Full HTML page responses with server-rendered content
// =============================================================================

func TestHomePage(t *testing.T) {
	tests := []struct {
		name       string
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "returns HTML with dashboard title and full content",
			wantStatus: http.StatusOK,
			wantBody: []string{
				"<!doctype html>",
				"<title>Dashboard - EduMetric</title>",
				"data-init",
				"/updates",
				"ui-content",
				"Students <b>120</b>",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fixture := setupTestHandlers(t)

			req := fixture.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			h.HomePage(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := rec.Body.String()
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want, "response should contain %q", want)
			}
		})
	}
}

func TestHomePage_StatsLoadedOncePerSession(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	fixture.Session()

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.HomePage(rec, fixture.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 1, fixture.API.Calls(apiclient.PathStats))
}

func TestHomePage_BackendDown(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	fixture.API.JSON(apiclient.PathStats, http.StatusInternalServerError, `oops`)

	rec := httptest.NewRecorder()
	h.HomePage(rec, fixture.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Statistics unavailable")
}

// =============================================================================
// HomePageUpdates Tests - SSE endpoint for live updates only
// =============================================================================

func TestHomePageUpdates_SendsUpdateOnChange(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	sess := fixture.Session()

	req := fixture.NewRequest(http.MethodGet, "/updates", nil)
	ctx, cancel := context.WithTimeout(req.Context(), 300*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.HomePageUpdates(rec, req)
		close(done)
	}()

	// Wait a bit then trigger a state change
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, sess.Controller.ActivateMode(string(viewstate.ModeCollege)))

	<-done

	body := rec.Body.String()
	eventCount := strings.Count(body, "event:")
	assert.GreaterOrEqual(t, eventCount, 1, "should have at least 1 SSE event from the change")
	assert.Contains(t, body, "College Analysis", "update should contain the active section")
}

func TestHomePageUpdates_NoInitialState(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	fixture.Session()

	req := fixture.NewRequest(http.MethodGet, "/updates", nil)
	ctx, cancel := context.WithTimeout(req.Context(), 50*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	h.HomePageUpdates(rec, req)

	eventCount := strings.Count(rec.Body.String(), "event:")
	assert.Equal(t, 0, eventCount, "should have no SSE events without a change")
}

func TestHomePageUpdates_OtherSessionsUnaffected(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	fixture.Session()

	// A second browser without the fixture's cookie.
	otherSess, err := fixture.Sessions.Get(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, 2, fixture.Sessions.Len())

	req := fixture.NewRequest(http.MethodGet, "/updates", nil)
	ctx, cancel := context.WithTimeout(req.Context(), 150*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		h.HomePageUpdates(rec, req)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, otherSess.Controller.ActivateMode(string(viewstate.ModeBatch)))
	<-done

	assert.Equal(t, 0, strings.Count(rec.Body.String(), "event:"))
}

// =============================================================================
// Actions
// =============================================================================

func TestSetMode(t *testing.T) {
	tests := []struct {
		name       string
		mode       string
		wantMode   viewstate.ModeID
		wantNotice bool
	}{
		{name: "known mode", mode: "batch", wantMode: viewstate.ModeBatch},
		{name: "unknown mode", mode: "gpa", wantMode: viewstate.ModeStudent, wantNotice: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fixture := setupTestHandlers(t)
			sess := fixture.Session()

			req := features.RequestWithPathParam(fixture.NewRequest(http.MethodPost, "/mode/"+tt.mode, nil), "mode", tt.mode)
			rec := httptest.NewRecorder()
			h.SetMode(rec, req)

			snap := sess.Controller.Snapshot()
			assert.Equal(t, tt.wantMode, snap.View.Mode)
			assert.Equal(t, tt.wantNotice, snap.Notice != nil)
			assert.Contains(t, rec.Body.String(), "app-shell")
		})
	}
}

func TestDismissNotice(t *testing.T) {
	h, fixture := setupTestHandlers(t)
	sess := fixture.Session()
	require.Error(t, sess.Controller.ActivateMode("nope"))
	require.NotNil(t, sess.Controller.Snapshot().Notice)

	rec := httptest.NewRecorder()
	h.DismissNotice(rec, fixture.NewRequest(http.MethodPost, "/notice/dismiss", nil))

	assert.Nil(t, sess.Controller.Snapshot().Notice)
	assert.NotContains(t, rec.Body.String(), "notice-error")
}
