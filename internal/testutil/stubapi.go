package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// StubAPI is an httptest server standing in for the EduMetric backend.
// Routes are matched on exact path; unknown paths answer 404 with a
// failure envelope.
type StubAPI struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  map[string]int
	bodies map[string][]byte
}

// NewStubAPI starts a stub server that is closed when the test ends.
func NewStubAPI(t testing.TB) *StubAPI {
	t.Helper()
	s := &StubAPI{
		routes: make(map[string]http.HandlerFunc),
		calls:  make(map[string]int),
		bodies: make(map[string][]byte),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *StubAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.calls[r.URL.Path]++
	s.bodies[r.URL.Path] = body
	h, ok := s.routes[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"not found"}`))
		return
	}
	h(w, r)
}

// Handle registers a handler for path, replacing any previous one.
func (s *StubAPI) Handle(path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[path] = h
}

// JSON makes path answer with a fixed status and raw body.
func (s *StubAPI) JSON(path string, status int, body string) {
	s.Handle(path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

// Calls reports how many requests path has received.
func (s *StubAPI) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// LastBody returns the most recent request body sent to path.
func (s *StubAPI) LastBody(path string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[path]
}
