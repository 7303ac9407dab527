// Package batch serves spreadsheet uploads and the analytics preview.
package batch

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/edumetric-labs/edumetric/internal/ui/features/common"
	"github.com/edumetric-labs/edumetric/internal/ui/session"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// MaxUploadBytes bounds an uploaded spreadsheet.
const MaxUploadBytes = 32 << 20

// Handlers provides HTTP handlers for the batch feature.
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

// Upload forwards a multipart spreadsheet to the server. A missing file
// is reported as "Please select a file first."
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	parseErr := r.ParseMultipartForm(MaxUploadBytes)
	sse := datastar.NewSSE(w, r)

	mode := core.UploadMode(r.FormValue("mode"))
	if mode == "" {
		mode = core.UploadNormalize
	}

	var filename string
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		filename = header.Filename
	case errors.Is(err, http.ErrMissingFile), parseErr != nil && errors.Is(parseErr, http.ErrNotMultipart):
		// Falls through to the controller's missing-file notice.
	default:
		common.Finish(sse, s, h.logger, s.Controller.Reject(fmt.Errorf("failed to read upload: %w", err)))
		return
	}

	_, err = s.Controller.UploadBatch(r.Context(), filename, file, mode)
	common.Finish(sse, s, h.logger, err)
}

// Preview loads the analytics dashboard.
func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)
	_, err := s.Controller.LoadPreview(r.Context())
	common.Finish(sse, s, h.logger, err)
}

// SetupRoutes registers the batch feature routes.
func SetupRoutes(router chi.Router, sessions *session.Manager, logger *slog.Logger) error {
	handlers := NewHandlers(sessions, logger)

	router.Post("/batch/upload", handlers.Upload)
	router.Post("/batch/preview", handlers.Preview)

	return nil
}
