// Package session maps browser sessions to their application controllers.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/ui/notifier"
)

// CookieName is the name of the session cookie.
const CookieName = "edumetric"

// IdleTimeout is how long a session survives without a request. It matches
// the cookie lifetime: past it the browser no longer presents the id.
const IdleTimeout = 30 * 24 * time.Hour

const (
	keyID   = "id"
	keyAuth = "authenticated"
	keyUser = "user"
)

// Factory builds the controller of a new session. onChange must be passed
// through as the controller's change callback.
type Factory func(onChange func()) *app.Controller

// Session is one browser session.
type Session struct {
	ID         string
	Controller *app.Controller
	Notifier   *notifier.Notifier

	lastSeen time.Time
}

// Manager owns every live session.
type Manager struct {
	store   sessions.Store
	factory Factory
	logger  *slog.Logger
	idle    time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a manager backed by store.
func NewManager(store sessions.Store, factory Factory, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		store:    store,
		factory:  factory,
		logger:   logger,
		idle:     IdleTimeout,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session of r, creating it and setting the cookie when
// needed. It must be called before anything is written to w.
func (m *Manager) Get(w http.ResponseWriter, r *http.Request) (*Session, error) {
	cs, err := m.store.Get(r, CookieName)
	if err != nil {
		// A cookie signed with an old secret decodes to an error but still
		// yields a fresh session.
		m.logger.Debug("discarding unreadable session cookie", "error", err)
	}

	id, _ := cs.Values[keyID].(string)
	if id == "" {
		id = uuid.NewString()
		cs.Values[keyID] = id
		if err := cs.Save(r, w); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
	}
	return m.lookupOrCreate(id), nil
}

func (m *Manager) lookupOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		s.lastSeen = m.now()
		return s
	}
	n := notifier.New()
	s := &Session{ID: id, Notifier: n, Controller: m.factory(n.Broadcast), lastSeen: m.now()}
	m.sessions[id] = s
	m.logger.Debug("session created", "id", id)
	return s
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than IdleTimeout and returns how many
// went. A session with an open update stream is never idle.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.idle)
	evicted := 0
	for id, s := range m.sessions {
		if s.lastSeen.After(cutoff) || s.Notifier.Listeners() > 0 {
			continue
		}
		s.Controller.CloseDrilldown()
		delete(m.sessions, id)
		evicted++
		m.logger.Debug("session expired", "id", id)
	}
	return evicted
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Info("expired idle sessions", "count", n, "live", m.Len())
			}
		}
	}
}

// Authenticated reports whether r carries a logged-in session cookie.
func (m *Manager) Authenticated(r *http.Request) bool {
	cs, err := m.store.Get(r, CookieName)
	if err != nil {
		return false
	}
	ok, _ := cs.Values[keyAuth].(bool)
	return ok
}

// SetAuthenticated marks the session of r as logged in or out.
func (m *Manager) SetAuthenticated(w http.ResponseWriter, r *http.Request, user string, ok bool) error {
	cs, _ := m.store.Get(r, CookieName)
	if ok {
		cs.Values[keyAuth] = true
		cs.Values[keyUser] = user
	} else {
		delete(cs.Values, keyAuth)
		delete(cs.Values, keyUser)
	}
	if _, has := cs.Values[keyID]; !has {
		cs.Values[keyID] = uuid.NewString()
	}
	return cs.Save(r, w)
}

// User returns the logged-in user name of r, if any.
func (m *Manager) User(r *http.Request) string {
	cs, err := m.store.Get(r, CookieName)
	if err != nil {
		return ""
	}
	u, _ := cs.Values[keyUser].(string)
	return u
}

// NewCookieStore builds the cookie store used by the dashboard.
func NewCookieStore(secret string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(int(IdleTimeout / time.Second))
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}
