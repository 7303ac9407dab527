package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/edumetric-labs/edumetric/internal/drilldown"
	"github.com/edumetric-labs/edumetric/internal/latest"
	"github.com/edumetric-labs/edumetric/internal/render"
	"github.com/edumetric-labs/edumetric/internal/viewstate"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

var searchFailure = failure{fallback: "Student not found.", network: "Failed to search student due to network error."}

var predictFailure = failure{
	app:     func(msg string) string { return "Analysis failed: " + withDefault(msg, "Unknown error") },
	network: "Failed to analyse student due to network error.",
}

// SearchStudent looks a student up by register number and analyses them.
func (c *Controller) SearchStudent(ctx context.Context, rno string) (*core.PredictResult, error) {
	rno = strings.TrimSpace(rno)
	if rno == "" {
		return nil, c.invalid(&core.ValidationError{Field: "rno", Message: "is required"})
	}

	tok, h := c.begin(slotStudent, "Searching student...")
	defer h.Release()

	s, err := c.api.SearchStudent(ctx, rno)
	if err != nil {
		return nil, c.failed(slotStudent, tok, err, searchFailure)
	}
	if !c.tokens.IsCurrent(slotStudent, tok) {
		return nil, ErrStale
	}
	return c.predict(ctx, tok, *s)
}

// AnalyseStudent validates a hand-entered record and runs the predictor.
func (c *Controller) AnalyseStudent(ctx context.Context, s core.Student) (*core.PredictResult, error) {
	if err := s.Validate(); err != nil {
		return nil, c.invalid(err)
	}
	tok := c.tokens.Issue(slotStudent)
	return c.predict(ctx, tok, s)
}

func (c *Controller) predict(ctx context.Context, tok latest.Token, s core.Student) (*core.PredictResult, error) {
	h := c.busy.Acquire("Analysing student...")
	defer h.Release()

	res, err := c.api.Predict(ctx, s)
	if err != nil {
		return nil, c.failed(slotStudent, tok, err, predictFailure)
	}
	if res.Student.RNO == "" {
		res.Student = s
	}
	err = c.settle(slotStudent, tok, func(d *data) {
		d.student = res
		d.alert = nil
		_ = c.views.CloseModal(viewstate.ModalAlert)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ViewStudent opens a student from a table or the drill-down modal: the
// modal closes, the student is loaded and analysed, and the student mode
// becomes active.
func (c *Controller) ViewStudent(ctx context.Context, rno string) (*core.PredictResult, error) {
	c.drill.Close()
	res, err := c.SearchStudent(ctx, rno)
	if err != nil {
		return nil, err
	}
	if err := c.views.ActivateMode(viewstate.ModeStudent); err != nil {
		return nil, err
	}
	return res, nil
}

// ExportStudentCSV writes the analysed student as CSV and returns the
// download name.
func (c *Controller) ExportStudentCSV(w io.Writer) (string, error) {
	c.mu.Lock()
	res := c.data.student
	c.mu.Unlock()
	if res == nil {
		c.raise(Notice{Kind: NoticeError, Message: "Analyse a student before exporting."})
		return "", ErrNoStudent
	}
	if err := render.WriteStudentCSV(w, *res); err != nil {
		return "", fmt.Errorf("failed to write student csv: %w", err)
	}
	return render.StudentCSVName(res.Student.RNO.String()), nil
}

// OpenDrilldown runs a chart drill-down. Invalid arguments raise a notice;
// fetch failures are shown inside the modal.
func (c *Controller) OpenDrilldown(ctx context.Context, kind, value, scope, scopeValue string) (drilldown.State, error) {
	st, err := c.drill.Open(ctx, kind, value, scope, scopeValue)
	return st, c.drilldownErr(err)
}

// DrilldownFromChart maps a chart click to a drill-down. The chart id
// picks the label kind; the clicked label is lower-cased.
func (c *Controller) DrilldownFromChart(ctx context.Context, chartID, label, scope, scopeValue string) (drilldown.State, error) {
	kind, ok := render.KindForChart(chartID)
	if !ok {
		kind = core.FilterPerformance
		label = "high"
	}
	return c.OpenDrilldown(ctx, kind.Wire(), strings.ToLower(label), scope, scopeValue)
}

// RetryDrilldown re-issues the failed drill-down.
func (c *Controller) RetryDrilldown(ctx context.Context) (drilldown.State, error) {
	st, err := c.drill.Retry(ctx)
	if errors.Is(err, drilldown.ErrNothingToRetry) {
		return st, err
	}
	return st, c.drilldownErr(err)
}

// CloseDrilldown hides the modal and discards any in-flight result.
func (c *Controller) CloseDrilldown() {
	c.drill.Close()
}

func (c *Controller) drilldownErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, drilldown.ErrStale):
		return ErrStale
	default:
		return c.invalid(err)
	}
}
