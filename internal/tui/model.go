// Package tui is the terminal dashboard. It drives the same app.Controller
// as the web front-end; every operation runs as a tea.Cmd and the view is
// rebuilt from the controller snapshot, so a superseded result is never
// drawn.
package tui

import (
	"context"
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/edumetric-labs/edumetric/internal/alertrules"
	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/drilldown"
	"github.com/edumetric-labs/edumetric/internal/render"
	"github.com/edumetric-labs/edumetric/internal/viewstate"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// Options configures the dashboard.
type Options struct {
	API         app.API
	Alerts      *alertrules.Engine
	MentorEmail string
	// UploadMode is used when an upload names no mode.
	UploadMode core.UploadMode
	// ExportDir receives exported CSV files. Empty means the working
	// directory.
	ExportDir string
	Logger    *slog.Logger
}

// Model is the bubbletea model.
type Model struct {
	ctx        context.Context
	ctrl       *app.Controller
	changes    chan struct{}
	logger     *slog.Logger
	uploadMode core.UploadMode
	exportDir  string

	snap     app.Snapshot
	input    textinput.Model
	table    table.Model
	tableKey tableKey
	spinner  spinner.Model
	width    int
	height   int
	status   string
}

// New creates the model and its controller.
func New(ctx context.Context, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	mode := opts.UploadMode
	if mode == "" {
		mode = core.UploadNormalize
	}
	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	changes := make(chan struct{}, 1)
	ctrl := app.New(app.Options{
		API:         opts.API,
		Alerts:      opts.Alerts,
		MentorEmail: opts.MentorEmail,
		Logger:      logger,
		OnChange: func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		},
	})

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200
	ti.Width = 60

	cols := render.DrilldownColumns[:len(render.DrilldownColumns)-1]
	columns := make([]table.Column, len(cols))
	for i, c := range cols {
		columns[i] = table.Column{Title: c, Width: columnWidth(i)}
	}
	tbl := table.New(table.WithColumns(columns), table.WithFocused(true), table.WithHeight(10))
	tbl.SetStyles(tableStyles())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	m := Model{
		ctx:        ctx,
		ctrl:       ctrl,
		changes:    changes,
		logger:     logger,
		uploadMode: mode,
		exportDir:  exportDir,
		input:      ti,
		table:      tbl,
		spinner:    sp,
	}
	m.refresh()
	return m
}

func columnWidth(i int) int {
	switch i {
	case 1:
		return 22
	case 0, 2:
		return 12
	case 3:
		return 5
	default:
		return 12
	}
}

// Controller returns the controller the dashboard drives.
func (m Model) Controller() *app.Controller { return m.ctrl }

// Init starts the spinner, the change listener and the stats load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForChange(m.ctx, m.changes),
		runAction(m.ctx, m.ctrl, action{op: "stats", fn: func(ctx context.Context, c *app.Controller) error {
			_, err := c.LoadStats(ctx)
			return err
		}}),
	)
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-6, 20)
		m.table.SetHeight(max(msg.Height-16, 5))
		return m, nil

	case changedMsg:
		m.refresh()
		return m, waitForChange(m.ctx, m.changes)

	case opDoneMsg:
		m.refresh()
		m.status = statusText(msg)
		if msg.err != nil && !isStale(msg.err) {
			m.logger.Debug("action failed", "op", msg.op, "error", msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}

	if m.input.Focused() {
		switch key {
		case "enter":
			line := m.input.Value()
			m.input.SetValue("")
			m.input.Blur()
			return m.submit(line)
		case "esc":
			m.input.Blur()
			return nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}

	drill := m.snap.Drilldown
	switch key {
	case "q":
		return tea.Quit
	case "esc":
		m.back()
		return nil
	case "tab":
		m.shiftMode(1)
		return nil
	case "shift+tab":
		m.shiftMode(-1)
		return nil
	case "1", "2", "3", "4", "5", "6", "7":
		modes := viewstate.Modes()
		m.activate(modes[int(key[0]-'1')])
		return nil
	case "/", ":":
		return m.input.Focus()
	case "r":
		if drill.Status == drilldown.StatusError {
			return m.run(action{op: "retry", fn: func(ctx context.Context, c *app.Controller) error {
				_, err := c.RetryDrilldown(ctx)
				return err
			}})
		}
		return m.run(action{op: "stats", fn: func(ctx context.Context, c *app.Controller) error {
			_, err := c.LoadStats(ctx)
			return err
		}})
	case "a":
		if m.snap.Student != nil && m.snap.Alert == nil {
			if _, err := m.ctrl.OpenAlert(); err != nil {
				m.logger.Debug("open alert", "error", err)
			}
			m.refresh()
		}
		return nil
	case "s":
		if m.snap.Alert != nil {
			return m.run(action{op: "alert", fn: func(ctx context.Context, c *app.Controller) error {
				_, err := c.SendAlert(ctx)
				return err
			}})
		}
		return nil
	case "e":
		if m.snap.Student != nil {
			return m.run(exportStudent(m.exportDir))
		}
		return nil
	case "enter":
		if drill.Status == drilldown.StatusSuccess && len(drill.Result) > 0 {
			row := m.table.SelectedRow()
			if len(row) > 0 {
				rno := row[0]
				return m.run(action{op: "view", fn: func(ctx context.Context, c *app.Controller) error {
					_, err := c.ViewStudent(ctx, rno)
					return err
				}})
			}
		}
		return m.input.Focus()
	}

	if drill.ModalVisible() {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	}
	return nil
}

// submit parses an input line. Parse errors become a notice.
func (m *Model) submit(line string) tea.Cmd {
	a, err := parseCommand(m.snap.View.Mode, line, m.uploadMode)
	if err != nil {
		_ = m.ctrl.Reject(err)
		m.refresh()
		return nil
	}
	return m.run(a)
}

func (m *Model) run(a action) tea.Cmd {
	m.status = ""
	return runAction(m.ctx, m.ctrl, a)
}

// back closes the topmost overlay: notice, alert, then drill-down.
func (m *Model) back() {
	switch {
	case m.snap.Notice != nil:
		m.ctrl.DismissNotice()
	case m.snap.Alert != nil:
		m.ctrl.CloseAlert()
	case m.snap.Drilldown.ModalVisible():
		m.ctrl.CloseDrilldown()
	}
	m.refresh()
}

func (m *Model) shiftMode(delta int) {
	modes := viewstate.Modes()
	cur := 0
	for i, id := range modes {
		if id == m.snap.View.Mode {
			cur = i
		}
	}
	next := (cur + delta + len(modes)) % len(modes)
	m.activate(modes[next])
}

func (m *Model) activate(id viewstate.ModeID) {
	if err := m.ctrl.ActivateMode(string(id)); err != nil {
		m.logger.Debug("activate mode", "mode", id, "error", err)
	}
	m.refresh()
}

// tableKey identifies the drill-down state the table rows were built from.
type tableKey struct {
	seq    uint64
	status drilldown.Status
}

// refresh re-reads the controller and syncs the drill-down table.
func (m *Model) refresh() {
	m.snap = m.ctrl.Snapshot()
	m.input.Placeholder = modeHelp(m.snap.View.Mode)
	st := m.snap.Drilldown
	key := tableKey{seq: st.Seq, status: st.Status}
	if key == m.tableKey {
		return
	}
	m.tableKey = key
	v := render.Drilldown(st)
	rows := make([]table.Row, 0, len(v.Rows))
	for _, r := range v.Rows {
		rows = append(rows, table.Row(r.Cells()))
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

func statusText(msg opDoneMsg) string {
	switch {
	case msg.err == nil:
		return msg.op + " done"
	case isStale(msg.err):
		return ""
	default:
		return msg.op + " failed"
	}
}

func isStale(err error) bool {
	return errors.Is(err, app.ErrStale) || errors.Is(err, drilldown.ErrStale)
}
