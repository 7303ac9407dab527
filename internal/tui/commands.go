package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/studentfile"
	"github.com/edumetric-labs/edumetric/internal/viewstate"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// errUsage marks input that did not match any command of the active mode.
var errUsage = errors.New("usage")

// action is one parsed command line.
type action struct {
	op string
	fn func(ctx context.Context, c *app.Controller) error
}

// changedMsg is sent when the controller published a change.
type changedMsg struct{}

// opDoneMsg is sent when an action finished.
type opDoneMsg struct {
	op  string
	err error
}

func waitForChange(ctx context.Context, ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			return changedMsg{}
		}
	}
}

func runAction(ctx context.Context, c *app.Controller, a action) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: a.op, err: a.fn(ctx, c)}
	}
}

func usage(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}

// parseCommand turns an input line into an action. Commands that are
// valid in every mode are tried first; anything else is the argument of
// the active mode's main operation.
func parseCommand(mode viewstate.ModeID, line string, uploadMode core.UploadMode) (action, error) {
	f := strings.Fields(line)
	if len(f) == 0 {
		if mode == viewstate.ModeCollege {
			return analyseCollege(), nil
		}
		return action{}, usage("%s", modeHelp(mode))
	}

	switch f[0] {
	case "drill":
		if len(f) != 5 {
			return action{}, usage("drill <kind> <value> <scope> <scope-value>")
		}
		return action{op: "drilldown", fn: func(ctx context.Context, c *app.Controller) error {
			_, err := c.OpenDrilldown(ctx, f[1], f[2], f[3], f[4])
			return err
		}}, nil
	case "mode":
		if len(f) != 2 {
			return action{}, usage("mode <name>")
		}
		return action{op: "mode", fn: func(_ context.Context, c *app.Controller) error {
			return c.ActivateMode(f[1])
		}}, nil
	case "stats":
		return action{op: "stats", fn: func(ctx context.Context, c *app.Controller) error {
			_, err := c.LoadStats(ctx)
			return err
		}}, nil
	case "view":
		if len(f) != 2 {
			return action{}, usage("view <rno>")
		}
		return action{op: "view", fn: func(ctx context.Context, c *app.Controller) error {
			_, err := c.ViewStudent(ctx, f[1])
			return err
		}}, nil
	}

	switch mode {
	case viewstate.ModeStudent:
		if isStudentFile(f[0]) {
			return action{op: "predict", fn: func(ctx context.Context, c *app.Controller) error {
				s, err := studentfile.Load(f[0])
				if err != nil {
					return c.Reject(err)
				}
				_, err = c.AnalyseStudent(ctx, s)
				return err
			}}, nil
		}
		return action{op: "search", fn: func(ctx context.Context, c *app.Controller) error {
			_, err := c.SearchStudent(ctx, f[0])
			return err
		}}, nil

	case viewstate.ModeDepartment:
		year := ""
		if len(f) > 1 {
			year = f[1]
		}
		return action{op: "department", fn: func(ctx context.Context, c *app.Controller) error {
			_, err := c.AnalyseDepartment(ctx, f[0], year)
			return err
		}}, nil

	case viewstate.ModeYear:
		return action{op: "year", fn: func(ctx context.Context, c *app.Controller) error {
			_, err := c.AnalyseYear(ctx, f[0])
			return err
		}}, nil

	case viewstate.ModeCollege:
		return analyseCollege(), nil

	case viewstate.ModeBatch:
		return action{op: "batch", fn: func(ctx context.Context, c *app.Controller) error {
			_, err := c.AnalyseBatch(ctx, f[0])
			return err
		}}, nil

	case viewstate.ModeCRUD:
		return parseCRUD(f)

	case viewstate.ModeUpload:
		if f[0] == "preview" {
			return action{op: "preview", fn: func(ctx context.Context, c *app.Controller) error {
				_, err := c.LoadPreview(ctx)
				return err
			}}, nil
		}
		m := uploadMode
		if len(f) > 1 {
			parsed, ok := core.ParseUploadMode(f[1])
			if !ok {
				return action{}, usage("upload mode must be normalize or analytics")
			}
			m = parsed
		}
		return action{op: "upload", fn: func(ctx context.Context, c *app.Controller) error {
			return upload(ctx, c, f[0], m)
		}}, nil
	}

	return action{}, usage("unknown command %q", f[0])
}

func analyseCollege() action {
	return action{op: "college", fn: func(ctx context.Context, c *app.Controller) error {
		_, err := c.AnalyseCollege(ctx)
		return err
	}}
}

func parseCRUD(f []string) (action, error) {
	op, ok := app.ParseCRUDOp(f[0])
	if !ok || len(f) < 2 {
		return action{}, usage("%s", modeHelp(viewstate.ModeCRUD))
	}
	arg := f[1]
	switch op {
	case app.CRUDCreate, app.CRUDUpdate:
		return action{op: string(op), fn: func(ctx context.Context, c *app.Controller) error {
			s, err := studentfile.Load(arg)
			if err != nil {
				return c.Reject(err)
			}
			if op == app.CRUDCreate {
				_, err = c.CreateStudent(ctx, s)
			} else {
				_, err = c.UpdateStudent(ctx, s)
			}
			return err
		}}, nil
	case app.CRUDRead:
		rno, name := arg, strings.Join(f[2:], " ")
		if strings.HasPrefix(arg, "name=") {
			rno, name = "", strings.TrimPrefix(strings.Join(f[1:], " "), "name=")
		}
		return action{op: "read", fn: func(ctx context.Context, c *app.Controller) error {
			_, err := c.ReadStudents(ctx, rno, name)
			return err
		}}, nil
	default:
		return action{op: "delete", fn: func(ctx context.Context, c *app.Controller) error {
			_, err := c.DeleteStudent(ctx, arg)
			return err
		}}, nil
	}
}

func isStudentFile(arg string) bool {
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func upload(ctx context.Context, c *app.Controller, path string, mode core.UploadMode) error {
	f, err := os.Open(path) //nolint:gosec // path is typed by the user
	if err != nil {
		return c.Reject(err)
	}
	defer func() { _ = f.Close() }()
	_, err = c.UploadBatch(ctx, filepath.Base(path), f, mode)
	return err
}

// exportStudent writes the analysed student's CSV into dir.
func exportStudent(dir string) action {
	return action{op: "export", fn: func(_ context.Context, c *app.Controller) error {
		var buf bytes.Buffer
		name, err := c.ExportStudentCSV(&buf)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0600); err != nil {
			return c.Reject(err)
		}
		return nil
	}}
}

func modeHelp(mode viewstate.ModeID) string {
	switch mode {
	case viewstate.ModeStudent:
		return "<rno> or <student.yaml>"
	case viewstate.ModeDepartment:
		return "<dept> [year]"
	case viewstate.ModeYear:
		return "<year>"
	case viewstate.ModeCollege:
		return "enter to analyse the college"
	case viewstate.ModeBatch:
		return "<batch-year>"
	case viewstate.ModeCRUD:
		return "create <file> | read <rno> [name] | read name=<name> | update <file> | delete <rno>"
	case viewstate.ModeUpload:
		return "<file.csv|file.xlsx> [normalize|analytics] | preview"
	default:
		return ""
	}
}
