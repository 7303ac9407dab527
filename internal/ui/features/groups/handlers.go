// Package groups serves department, year, college and batch analyses.
package groups

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/edumetric-labs/edumetric/internal/render"
	"github.com/edumetric-labs/edumetric/internal/ui/features/common"
	"github.com/edumetric-labs/edumetric/internal/ui/session"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// Signals carries the filter boxes of every group form.
type Signals struct {
	Dept struct {
		Dept string `json:"dept"`
		Year string `json:"year"`
	} `json:"dept"`
	Year struct {
		Year string `json:"year"`
	} `json:"year"`
	Batch struct {
		BatchYear string `json:"batchYear"`
	} `json:"batch"`
}

// Handlers provides HTTP handlers for the groups feature.
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

// Analyse runs the analysis named by the {scope} path parameter.
func (h *Handlers) Analyse(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}
	scope, known := core.ParseScope(chi.URLParam(r, "scope"))

	var sig Signals
	readErr := common.ReadSignals(r, s, &sig)
	sse := datastar.NewSSE(w, r)
	if readErr != nil {
		common.Finish(sse, s, h.logger, readErr)
		return
	}

	ctx := r.Context()
	var err error
	switch {
	case known && scope == core.ScopeDepartment:
		_, err = s.Controller.AnalyseDepartment(ctx, sig.Dept.Dept, sig.Dept.Year)
	case known && scope == core.ScopeYear:
		_, err = s.Controller.AnalyseYear(ctx, sig.Year.Year)
	case known && scope == core.ScopeCollege:
		_, err = s.Controller.AnalyseCollege(ctx)
	case known && scope == core.ScopeBatch:
		_, err = s.Controller.AnalyseBatch(ctx, sig.Batch.BatchYear)
	default:
		err = s.Controller.Reject(fmt.Errorf("unknown analysis %q", chi.URLParam(r, "scope")))
	}
	common.Finish(sse, s, h.logger, err)
}

// ExportXLSX downloads the student table of the last analysis for {scope}.
func (h *Handlers) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}
	scope, known := core.ParseScope(chi.URLParam(r, "scope"))
	if !known {
		http.NotFound(w, r)
		return
	}
	g, ok := s.Controller.Snapshot().Group(scope)
	if !ok {
		http.Error(w, "no "+scope.String()+" analysis to export", http.StatusConflict)
		return
	}

	var buf bytes.Buffer
	if err := render.WriteStudentsXLSX(&buf, g.Analysis.Table); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	name := fmt.Sprintf("%s_%s.xlsx", scope, g.ScopeValue)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_, _ = w.Write(buf.Bytes())
}

// SetupRoutes registers the groups feature routes.
func SetupRoutes(router chi.Router, sessions *session.Manager, logger *slog.Logger) error {
	handlers := NewHandlers(sessions, logger)

	router.Post("/groups/{scope}", handlers.Analyse)
	router.Get("/groups/{scope}/export.xlsx", handlers.ExportXLSX)

	return nil
}
