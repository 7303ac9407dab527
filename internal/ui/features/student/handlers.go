package student

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/edumetric-labs/edumetric/internal/ui/features/common"
	"github.com/edumetric-labs/edumetric/internal/ui/session"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// SearchSignals carries the register-number search box.
type SearchSignals struct {
	Search struct {
		RNO string `json:"rno"`
	} `json:"search"`
}

// FormSignals carries the student record editor.
type FormSignals struct {
	Student core.Student `json:"student"`
}

// Handlers provides HTTP handlers for the student feature.
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

// Search looks a student up by register number, analyses them and fills
// the form with their record.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var sig SearchSignals
	readErr := common.ReadSignals(r, s, &sig)
	sse := datastar.NewSSE(w, r)
	if readErr != nil {
		common.Finish(sse, s, h.logger, readErr)
		return
	}

	res, err := s.Controller.SearchStudent(r.Context(), sig.Search.RNO)
	if err == nil {
		_ = common.PatchStudentForm(sse, res.Student)
	}
	common.Finish(sse, s, h.logger, err)
}

// Analyse runs the predictor on the hand-entered record.
func (h *Handlers) Analyse(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}
	var sig FormSignals
	readErr := common.ReadSignals(r, s, &sig)
	sse := datastar.NewSSE(w, r)
	if readErr != nil {
		common.Finish(sse, s, h.logger, readErr)
		return
	}

	_, err := s.Controller.AnalyseStudent(r.Context(), sig.Student)
	common.Finish(sse, s, h.logger, err)
}

// View opens a student from a table row or the drill-down modal.
func (h *Handlers) View(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)

	res, err := s.Controller.ViewStudent(r.Context(), chi.URLParam(r, "rno"))
	if err == nil {
		_ = sse.MarshalAndPatchSignals(map[string]any{"search": map[string]string{"rno": res.Student.RNO.String()}})
		_ = common.PatchStudentForm(sse, res.Student)
	}
	common.Finish(sse, s, h.logger, err)
}

// ExportCSV downloads the analysed student.
func (h *Handlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	name, err := s.Controller.ExportStudentCSV(&buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_, _ = w.Write(buf.Bytes())
}

// OpenAlert shows the mentor alert preview.
func (h *Handlers) OpenAlert(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)
	_, err := s.Controller.OpenAlert()
	common.Finish(sse, s, h.logger, err)
}

// SendAlert emails the mentor.
func (h *Handlers) SendAlert(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)
	_, err := s.Controller.SendAlert(r.Context())
	common.Finish(sse, s, h.logger, err)
}

// CloseAlert hides the alert preview.
func (h *Handlers) CloseAlert(w http.ResponseWriter, r *http.Request) {
	s, ok := common.Session(h.sessions, w, r)
	if !ok {
		return
	}
	sse := datastar.NewSSE(w, r)
	s.Controller.CloseAlert()
	common.Finish(sse, s, h.logger, nil)
}
