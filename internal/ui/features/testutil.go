// Package features provides shared test utilities for UI feature tests.
package features

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/edumetric-labs/edumetric/internal/apiclient"
	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/testutil"
	"github.com/edumetric-labs/edumetric/internal/ui/session"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	API          *testutil.StubAPI
	Client       *apiclient.Client
	SessionStore *sessions.CookieStore
	Sessions     *session.Manager

	t       *testing.T
	cookies []*http.Cookie
}

// SetupTestFixture creates a stub backend, a client against it and a
// session manager whose controllers use that client.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	stub := testutil.NewStubAPI(t)
	client, err := apiclient.New(apiclient.Config{BaseURL: stub.URL, Timeout: 2 * time.Second, Logger: logger})
	require.NoError(t, err)

	store := NewTestSessionStore()
	factory := func(onChange func()) *app.Controller {
		return app.New(app.Options{API: client, Logger: logger, OnChange: onChange})
	}

	return &TestFixture{
		API:          stub,
		Client:       client,
		SessionStore: store,
		Sessions:     session.NewManager(store, factory, logger),
		t:            t,
	}
}

// Session returns the fixture's browser session, creating it on first use.
// Requests built with NewRequest carry its cookie.
func (f *TestFixture) Session() *session.Session {
	f.t.Helper()
	rec := httptest.NewRecorder()
	s, err := f.Sessions.Get(rec, f.NewRequest(http.MethodGet, "/", nil))
	require.NoError(f.t, err)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		f.cookies = cookies
	}
	return s
}

// NewRequest builds a request carrying the session cookie, if any.
func (f *TestFixture) NewRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	for _, c := range f.cookies {
		req.AddCookie(c)
	}
	return req
}

// SignalsRequest builds a datastar action request whose body is signals.
func (f *TestFixture) SignalsRequest(method, target string, signals any) *http.Request {
	f.t.Helper()
	b, err := json.Marshal(signals)
	require.NoError(f.t, err)
	req := f.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Datastar-Request", "true")
	return req
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
