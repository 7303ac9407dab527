// Package crud serves the student record management forms.
package crud

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/ui/features/common"
	"github.com/edumetric-labs/edumetric/internal/ui/session"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// Signals carries the CRUD lookup boxes and the record editor.
type Signals struct {
	CRUD struct {
		Op      string `json:"op"`
		RNO     string `json:"rno"`
		Name    string `json:"name"`
		Confirm bool   `json:"confirm"`
	} `json:"crud"`
	Student core.Student `json:"student"`
}

// Handlers provides HTTP handlers for the crud feature.
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

// Submit runs the operation named by {op}.
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
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

	ctx := r.Context()
	c := s.Controller
	var err error
	switch op, _ := app.ParseCRUDOp(chi.URLParam(r, "op")); op {
	case app.CRUDCreate:
		_, err = c.CreateStudent(ctx, sig.Student)
	case app.CRUDRead:
		_, err = c.ReadStudents(ctx, sig.CRUD.RNO, sig.CRUD.Name)
	case app.CRUDUpdate:
		var updated *core.Student
		if updated, err = c.UpdateStudent(ctx, sig.Student); err == nil {
			_ = common.PatchStudentForm(sse, *updated)
		}
	case app.CRUDDelete:
		rno := sig.CRUD.RNO
		if sel := c.Snapshot().CRUD.Selected; sel != nil && rno == "" {
			rno = sel.RNO.String()
		}
		if !sig.CRUD.Confirm {
			err = c.Reject(fmt.Errorf("confirm deletion of student %s", rno))
			break
		}
		if _, err = c.DeleteStudent(ctx, rno); err == nil {
			_ = sse.MarshalAndPatchSignals(map[string]any{"crud": map[string]any{"confirm": false}})
		}
	default:
		err = c.Reject(fmt.Errorf("unknown operation %q", chi.URLParam(r, "op")))
	}
	common.Finish(sse, s, h.logger, err)
}

// Fetch loads a record into the update or delete form.
func (h *Handlers) Fetch(w http.ResponseWriter, r *http.Request) {
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

	op, _ := app.ParseCRUDOp(chi.URLParam(r, "op"))
	if op != app.CRUDUpdate && op != app.CRUDDelete {
		common.Finish(sse, s, h.logger, s.Controller.Reject(fmt.Errorf("cannot load a record for %q", chi.URLParam(r, "op"))))
		return
	}
	st, err := s.Controller.FetchStudent(r.Context(), op, sig.CRUD.RNO)
	if err == nil {
		_ = common.PatchStudentForm(sse, *st)
	}
	common.Finish(sse, s, h.logger, err)
}

// SetupRoutes registers the crud feature routes.
func SetupRoutes(router chi.Router, sessions *session.Manager, logger *slog.Logger) error {
	handlers := NewHandlers(sessions, logger)

	router.Route("/crud/{op}", func(r chi.Router) {
		r.Post("/", handlers.Submit)
		r.Post("/fetch", handlers.Fetch)
	})

	return nil
}
