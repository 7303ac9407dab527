package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/edumetric-labs/edumetric/internal/apiclient"
	"github.com/edumetric-labs/edumetric/internal/testutil"
)

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	stub := testutil.NewStubAPI(t)
	stub.JSON(apiclient.PathStats, http.StatusOK, `{"success": true, "total_students": 12, "departments": ["CSE"], "years": [1, 2]}`)
	client, err := apiclient.New(apiclient.Config{BaseURL: stub.URL, Timeout: time.Second})
	require.NoError(t, err)

	cfg.API = client
	cfg.SessionSecret = "test-secret-key-32-bytes-long!!"
	cfg.Logger = testutil.NewTestLogger(t)
	h, _, err := NewServer(cfg).Handler()
	require.NoError(t, err)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func noRedirect(_ *http.Request, _ []*http.Request) error { return http.ErrUseLastResponse }

func TestServer_HomePage(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_LoginGate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	srv := newTestServer(t, Config{Username: "hod", PasswordHash: string(hash)})

	client := &http.Client{CheckRedirect: noRedirect}
	resp, err := client.Get(srv.URL + "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, err = client.Post(srv.URL+"/login", "application/x-www-form-urlencoded", strings.NewReader("username=hod&password=pw"))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestServer_StaticAssets(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := http.Get(srv.URL + "/static/app.css")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWatchFiles_TriggersReload(t *testing.T) {
	dir := t.TempDir()
	s := NewServer(Config{StaticDir: dir, Dev: true, Logger: testutil.NewTestLogger(t)})

	reloaded := make(chan struct{}, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.watchFiles(ctx, func() { reloaded <- struct{}{} }) }()

	// Give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.css"), []byte("body{}"), 0600))

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("css change did not trigger a reload")
	}

	cancel()
	require.NoError(t, <-done)
}
