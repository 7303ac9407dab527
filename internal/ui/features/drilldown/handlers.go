// Package drilldown serves the chart drill-down modal.
package drilldown

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	wf "github.com/edumetric-labs/edumetric/internal/drilldown"
	"github.com/edumetric-labs/edumetric/internal/ui/features/common"
	"github.com/edumetric-labs/edumetric/internal/ui/session"
)

// Signals identifies the clicked chart segment. Kind wins over Chart; a
// Chart id alone is mapped to its label kind.
type Signals struct {
	DD struct {
		Kind       string `json:"kind"`
		Chart      string `json:"chart"`
		Value      string `json:"value"`
		Scope      string `json:"scope"`
		ScopeValue string `json:"scopeValue"`
	} `json:"dd"`
}

// Handlers provides HTTP handlers for the drill-down feature.
type Handlers struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sessions *session.Manager, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{sessions: sessions, logger: logger}
}

// Open runs a drill-down and shows the modal.
func (h *Handlers) Open(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}
	var sig Signals
	readErr := common.ReadSignals(r, s, &sig)
	sse := datastar.NewSSE(w, r)
	if readErr != nil {
		common.Finish(sse, s, h.logger, readErr)
		return
	}

	dd := sig.DD
	var err error
	if dd.Kind == "" && dd.Chart != "" {
		_, err = s.Controller.DrilldownFromChart(r.Context(), dd.Chart, dd.Value, dd.Scope, dd.ScopeValue)
	} else {
		_, err = s.Controller.OpenDrilldown(r.Context(), dd.Kind, dd.Value, dd.Scope, dd.ScopeValue)
	}
	common.Finish(sse, s, h.logger, err)
}

// Retry re-issues the failed drill-down.
func (h *Handlers) Retry(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)
	_, err := s.Controller.RetryDrilldown(r.Context())
	if errors.Is(err, wf.ErrNothingToRetry) {
		err = nil
	}
	common.Finish(sse, s, h.logger, err)
}

// Close hides the modal.
func (h *Handlers) Close(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)
	s.Controller.CloseDrilldown()
	common.Finish(sse, s, h.logger, nil)
}

// SetupRoutes registers the drill-down routes.
func SetupRoutes(router chi.Router, sessions *session.Manager, logger *slog.Logger) error {
	handlers := NewHandlers(sessions, logger)

	router.Route("/drilldown", func(r chi.Router) {
		r.Post("/", handlers.Open)
		r.Post("/retry", handlers.Retry)
		r.Post("/close", handlers.Close)
	})

	return nil
}
