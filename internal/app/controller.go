// Package app holds the per-session application state and every user
// operation the front-ends expose. A Controller is shared by one browser
// session, one TUI or one REPL; all of its methods are safe for concurrent
// use.
//
// Each asynchronous operation takes a token from a per-slot tracker when
// issued and publishes its result only if the token is still current, so
// a slow response can never overwrite a newer one.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/edumetric-labs/edumetric/internal/alertrules"
	"github.com/edumetric-labs/edumetric/internal/apiclient"
	"github.com/edumetric-labs/edumetric/internal/drilldown"
	"github.com/edumetric-labs/edumetric/internal/latest"
	"github.com/edumetric-labs/edumetric/internal/loading"
	"github.com/edumetric-labs/edumetric/internal/viewstate"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// ErrStale is returned when a result was discarded because a newer
// operation of the same kind was issued.
var ErrStale = errors.New("result superseded by a newer request")

// Token slots.
const (
	slotStats      = "stats"
	slotStudent    = "student"
	slotDepartment = "department"
	slotYear       = "year"
	slotCollege    = "college"
	slotBatch      = "batch"
	slotCRUD       = "crud"
	slotUpload     = "upload"
	slotPreview    = "preview"
	slotAlert      = "alert"
)

// API is the backend the controller talks to. *apiclient.Client
// implements it.
type API interface {
	drilldown.Fetcher
	Stats(ctx context.Context) (*core.Stats, error)
	SearchStudent(ctx context.Context, rno string) (*core.Student, error)
	Predict(ctx context.Context, s core.Student) (*core.PredictResult, error)
	CreateStudent(ctx context.Context, s core.Student) (string, error)
	ReadStudents(ctx context.Context, rno, name string) (*core.ReadResult, error)
	UpdateStudent(ctx context.Context, s core.Student) (*core.Student, error)
	DeleteStudent(ctx context.Context, rno string) (*core.Student, error)
	AnalyzeDepartment(ctx context.Context, dept, year string) (*core.GroupAnalysis, error)
	AnalyzeYear(ctx context.Context, year string) (*core.GroupAnalysis, error)
	AnalyzeCollege(ctx context.Context) (*core.GroupAnalysis, error)
	AnalyzeBatch(ctx context.Context, batchYear string) (*core.BatchAnalysis, error)
	AnalyticsPreview(ctx context.Context) (*core.AnalyticsPreview, error)
	SendAlert(ctx context.Context, req core.AlertRequest) (string, error)
	BatchUpload(ctx context.Context, filename string, r io.Reader, mode core.UploadMode) (*core.UploadResult, error)
}

// Options configures a Controller.
type Options struct {
	API API
	// Alerts decides alert levels. Nil means the built-in rules.
	Alerts *alertrules.Engine
	// MentorEmail overrides the student's own mentor address for alerts.
	MentorEmail string
	Logger      *slog.Logger
	// OnChange runs after any visible change. It may run while internal
	// locks are held, so it must not call back into the Controller; a
	// non-blocking ping is the intended use.
	OnChange func()
}

// Controller is the application state of one front-end session.
type Controller struct {
	api         API
	alerts      *alertrules.Engine
	mentorEmail string
	logger      *slog.Logger
	onChange    func()

	views  *viewstate.Registry
	busy   *loading.Indicator
	drill  *drilldown.Workflow
	tokens *latest.Tracker

	mu   sync.Mutex
	data data
}

// data is everything the controller publishes besides the view registry,
// the indicator and the drill-down workflow.
type data struct {
	notice  *Notice
	stats   *core.Stats
	student *core.PredictResult
	alert   *alertrules.Assessment
	groups  map[core.Scope]*Group
	batch   *BatchView
	crud    CRUDView
	upload  *UploadView
	preview *core.AnalyticsPreview
}

// New creates a controller showing the student mode.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	alerts := opts.Alerts
	if alerts == nil {
		alerts = alertrules.NewBuiltin()
	}

	c := &Controller{
		api:         opts.API,
		alerts:      alerts,
		mentorEmail: opts.MentorEmail,
		logger:      logger,
		onChange:    opts.OnChange,
		views:       viewstate.New(viewstate.ModeStudent),
		busy:        loading.New(),
		tokens:      latest.New(),
		data:        data{groups: make(map[core.Scope]*Group)},
	}
	c.views.OnChange(func(viewstate.Snapshot) { c.changed() })
	c.busy.OnChange(func(loading.Status) { c.changed() })
	c.drill = drilldown.New(drilldown.Options{
		Fetcher:  opts.API,
		Modals:   c.views,
		Logger:   logger.With("component", "drilldown"),
		OnChange: func(drilldown.State) { c.changed() },
	})
	return c
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

// begin issues a token for slot and shows the busy indicator.
func (c *Controller) begin(slot, message string) (latest.Token, *loading.Handle) {
	return c.tokens.Issue(slot), c.busy.Acquire(message)
}

// settle publishes apply if tok is still current.
func (c *Controller) settle(slot string, tok latest.Token, apply func(d *data)) error {
	ok := c.tokens.Commit(slot, tok, func() {
		c.mu.Lock()
		apply(&c.data)
		c.mu.Unlock()
	})
	if !ok {
		c.logger.Debug("discarding stale result", "slot", slot, "token", tok)
		return ErrStale
	}
	c.changed()
	return nil
}

// failed raises a notice for err unless tok has been superseded.
func (c *Controller) failed(slot string, tok latest.Token, err error, t failure) error {
	if !c.tokens.IsCurrent(slot, tok) {
		c.logger.Debug("discarding stale failure", "slot", slot, "error", err)
		return ErrStale
	}
	c.raise(t.notice(err))
	c.logger.Warn("operation failed", "slot", slot, "kind", apiclient.KindOf(err).String(), "error", err)
	return err
}

// Snapshot returns a consistent copy of everything a front-end renders.
//
// The notice and alert modals only change while c.mu is held, so View agrees
// with Notice and Alert. The drill-down modal is owned by the workflow:
// Drilldown.ModalVisible is authoritative for it, and View may lag by one
// change.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Loading:   c.busy.Status(),
		Drilldown: c.drill.State(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	s.View = c.views.Snapshot()
	d := c.data
	if d.notice != nil {
		n := *d.notice
		s.Notice = &n
	}
	s.Stats = d.stats
	s.Student = d.student
	if d.alert != nil {
		a := *d.alert
		s.Alert = &a
	}
	s.Groups = make(map[core.Scope]Group, len(d.groups))
	for k, g := range d.groups {
		s.Groups[k] = *g
	}
	if d.batch != nil {
		b := *d.batch
		s.Batch = &b
	}
	s.CRUD = d.crud
	if d.upload != nil {
		u := *d.upload
		s.Upload = &u
	}
	s.Preview = d.preview
	return s
}

// ActivateMode switches the top-level section.
func (c *Controller) ActivateMode(mode string) error {
	id, err := viewstate.ParseMode(mode)
	if err != nil {
		c.raise(Notice{Kind: NoticeError, Message: err.Error()})
		return err
	}
	return c.views.ActivateMode(id)
}

// LoadStats fetches the dashboard header numbers.
func (c *Controller) LoadStats(ctx context.Context) (*core.Stats, error) {
	tok, h := c.begin(slotStats, "Loading dashboard...")
	defer h.Release()

	st, err := c.api.Stats(ctx)
	if err != nil {
		return nil, c.failed(slotStats, tok, err, failure{network: "Failed to load dashboard statistics."})
	}
	return st, c.settle(slotStats, tok, func(d *data) { d.stats = st })
}
