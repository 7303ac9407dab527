// Package drilldown implements the chart drill-down workflow: a click on a
// chart segment becomes a filtered student query whose result is shown in
// a modal.
//
// The workflow is a small state machine:
//
//	idle -> loading -> success | error
//	success | error -> idle        (Close)
//	any -> loading                 (Open replaces the current request)
//
// Each Open issues a new sequence token. A response is applied only if its
// token is still current, so a slow earlier request can never overwrite a
// later one.
package drilldown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/edumetric-labs/edumetric/internal/apiclient"
	"github.com/edumetric-labs/edumetric/internal/viewstate"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// User-facing failure texts.
const (
	NetworkErrorMessage = "Network error occurred. Please check your connection and try again."
	UnknownErrorMessage = "Unknown error"
)

var (
	// ErrStale is returned when a response arrived after it was superseded.
	ErrStale = errors.New("drilldown result superseded by a newer request")
	// ErrNothingToRetry is returned by Retry outside the error state.
	ErrNothingToRetry = errors.New("no failed drill-down to retry")
)

// Status is the workflow phase.
type Status int

// Workflow phases.
const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is a snapshot of the workflow. Request is zero while idle.
type State struct {
	Status       Status
	Seq          uint64
	Request      core.FilterRequest
	Result       []core.StudentSummary
	Count        int
	FilterInfo   core.FilterInfo
	ErrorMessage string
	ErrorKind    apiclient.Kind
}

// ModalVisible reports whether the drill-down modal should be shown.
func (s State) ModalVisible() bool {
	return s.Status != StatusIdle
}

// Fetcher runs the drill-down query. *apiclient.Client implements it.
type Fetcher interface {
	Drilldown(ctx context.Context, req core.FilterRequest) (*core.DrilldownResult, error)
}

// Modals shows and hides the drill-down modal. *viewstate.Registry
// implements it. Implementations must not call back into the Workflow
// synchronously.
type Modals interface {
	OpenModal(id viewstate.ModalID) error
	CloseModal(id viewstate.ModalID) error
}

// Options configures a Workflow.
type Options struct {
	Fetcher  Fetcher
	Modals   Modals
	Logger   *slog.Logger
	OnChange func(State)
}

// Workflow owns the single drill-down state.
type Workflow struct {
	fetch    Fetcher
	modals   Modals
	logger   *slog.Logger
	onChange func(State)

	mu     sync.Mutex
	state  State
	seq    uint64
	cancel context.CancelFunc
}

// New creates an idle workflow.
func New(opts Options) *Workflow {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Workflow{
		fetch:    opts.Fetcher,
		modals:   opts.Modals,
		logger:   logger,
		onChange: opts.OnChange,
	}
}

// State returns the current snapshot.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Open validates the arguments and runs a drill-down. Invalid arguments
// return a *core.ValidationError and leave the state untouched. Server and
// transport failures are reported through the returned State, not as an
// error. ErrStale means a newer request or a Close won the race.
func (w *Workflow) Open(ctx context.Context, kind, value, scope, scopeValue string) (State, error) {
	req, err := core.NewFilterRequest(kind, value, scope, scopeValue)
	if err != nil {
		return w.State(), err
	}
	return w.Start(ctx, req)
}

// Start runs a drill-down for an already validated request.
func (w *Workflow) Start(ctx context.Context, req core.FilterRequest) (State, error) {
	if req.IsZero() {
		return w.State(), &core.ValidationError{Field: "request", Message: "is empty"}
	}
	ctx, seq := w.begin(ctx, req)
	w.logger.Debug("drilldown started", "seq", seq, "request", req.String())

	res, err := w.fetch.Drilldown(ctx, req)
	return w.resolve(seq, res, err)
}

// Retry re-issues the request that last failed.
func (w *Workflow) Retry(ctx context.Context) (State, error) {
	st := w.State()
	if st.Status != StatusError || st.Request.IsZero() {
		return st, ErrNothingToRetry
	}
	return w.Start(ctx, st.Request)
}

// Close returns to idle and hides the modal. Any in-flight response will
// be discarded. Calling Close when already idle is a no-op.
func (w *Workflow) Close() {
	w.mu.Lock()
	wasOpen := w.state.Status != StatusIdle
	w.seq++
	w.state = State{Status: StatusIdle, Seq: w.seq}
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.closeModalLocked()
	st := w.state
	w.mu.Unlock()

	if wasOpen {
		w.logger.Debug("drilldown closed", "seq", st.Seq)
		w.notify(st)
	}
}

// begin moves to loading with a fresh token, shows the modal shell and
// cancels whatever request was in flight.
func (w *Workflow) begin(parent context.Context, req core.FilterRequest) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.cancel = cancel
	w.seq++
	seq := w.seq
	w.state = State{Status: StatusLoading, Seq: seq, Request: req}
	if w.modals != nil {
		if err := w.modals.OpenModal(viewstate.ModalDrilldown); err != nil {
			w.logger.Warn("failed to open drilldown modal", "error", err)
		}
	}
	st := w.state
	w.mu.Unlock()

	w.notify(st)
	return ctx, seq
}

// resolve applies a response if seq is still current.
func (w *Workflow) resolve(seq uint64, res *core.DrilldownResult, err error) (State, error) {
	w.mu.Lock()
	if w.state.Seq != seq || w.state.Status != StatusLoading {
		current := w.state
		w.mu.Unlock()
		w.logger.Debug("discarding stale drilldown result", "seq", seq, "current", current.Seq)
		return current, ErrStale
	}
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}

	next := State{Seq: seq, Request: w.state.Request}
	switch {
	case err != nil:
		next.Status = StatusError
		next.ErrorKind = apiclient.KindOf(err)
		next.ErrorMessage = failureMessage(err)
	case res == nil:
		next.Status = StatusError
		next.ErrorKind = apiclient.KindDecoding
		next.ErrorMessage = NetworkErrorMessage
	default:
		next.Status = StatusSuccess
		next.Result = res.Students
		next.Count = len(res.Students)
		next.FilterInfo = res.FilterInfo
	}
	w.state = next
	w.mu.Unlock()

	if next.Status == StatusError {
		w.logger.Debug("drilldown failed", "seq", seq, "kind", next.ErrorKind.String(), "error", err)
	} else {
		w.logger.Debug("drilldown resolved", "seq", seq, "students", next.Count)
	}
	w.notify(next)
	return next, nil
}

func (w *Workflow) closeModalLocked() {
	if w.modals == nil {
		return
	}
	if err := w.modals.CloseModal(viewstate.ModalDrilldown); err != nil {
		w.logger.Warn("failed to close drilldown modal", "error", err)
	}
}

func (w *Workflow) notify(st State) {
	if w.onChange != nil {
		w.onChange(st)
	}
}

// failureMessage maps a fetch error to the text shown in the modal. The
// server's own message is shown for application errors; every other
// failure gets the generic network text.
func failureMessage(err error) string {
	if msg, ok := apiclient.ServerMessage(err); ok {
		if msg == "" {
			return UnknownErrorMessage
		}
		return msg
	}
	return NetworkErrorMessage
}

// Describe renders a one-line summary of a state for logs and the REPL.
func Describe(st State) string {
	switch st.Status {
	case StatusLoading:
		return fmt.Sprintf("loading %s", st.Request)
	case StatusSuccess:
		return fmt.Sprintf("%d students for %s", st.Count, st.Request)
	case StatusError:
		return fmt.Sprintf("error for %s: %s", st.Request, st.ErrorMessage)
	default:
		return "idle"
	}
}
