package home

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/edumetric-labs/edumetric/internal/ui/components"
	"github.com/edumetric-labs/edumetric/internal/ui/features/common"
	"github.com/edumetric-labs/edumetric/internal/ui/session"
)

// Handlers provides HTTP handlers for the home feature.
type Handlers struct {
	sessions *session.Manager
	logger   *slog.Logger
	isDev    bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sessions *session.Manager, logger *slog.Logger, isDev bool) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{sessions: sessions, logger: logger, isDev: isDev}
}

// HomePage renders the dashboard with the session's current state.
// Statistics are loaded on the first visit of a session.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}
	if s.Controller.Snapshot().Stats == nil {
		if _, err := s.Controller.LoadStats(r.Context()); err != nil {
			h.logger.Debug("initial stats load failed", "error", err)
		}
	}

	page := components.Page(components.PageData{
		Title: "Dashboard",
		IsDev: h.isDev,
		User:  h.sessions.User(r),
		Snap:  s.Controller.Snapshot(),
	})
	if err := page.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HomePageUpdates is the long-lived SSE endpoint for the dashboard page.
// It pushes the shell every time the session's controller changes. It does
// NOT send initial state; HomePage already rendered it.
func (h *Handlers) HomePageUpdates(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)

	updates := s.Notifier.Subscribe()
	defer s.Notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := common.PatchShell(sse, s); err != nil {
				_ = sse.ConsoleError(err)
				// Don't return - keep trying on next update
			}
		}
	}
}

// SetMode switches the active dashboard section.
func (h *Handlers) SetMode(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)
	err := s.Controller.ActivateMode(chi.URLParam(r, "mode"))
	common.Finish(sse, s, h.logger, err)
}

// DismissNotice closes the notice modal.
func (h *Handlers) DismissNotice(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)
	s.Controller.DismissNotice()
	common.Finish(sse, s, h.logger, nil)
}
