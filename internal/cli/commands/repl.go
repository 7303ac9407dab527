package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/cli/output"
	"github.com/edumetric-labs/edumetric/internal/drilldown"
	"github.com/edumetric-labs/edumetric/internal/viewstate"
)

const replPrompt = "edumetric> "

// lineReader is the part of *readline.Instance the REPL uses.
type lineReader interface {
	Readline() (string, error)
	Close() error
}

// newLineReader is replaced in tests.
var newLineReader = func(cfg *readline.Config) (lineReader, error) {
	return readline.NewEx(cfg)
}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Explore drill-downs interactively",
		Long: `Start an interactive session that keeps one dashboard open, so chart
drill-downs can be opened, retried and followed into student reports.

Type help for commands, quit to exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv(cmd)
			c, err := e.newController(nil)
			if err != nil {
				return err
			}

			rl, err := newLineReader(&readline.Config{
				Prompt:          replPrompt,
				HistoryFile:     replHistoryFile(),
				AutoComplete:    newREPLCompleter(),
				InterruptPrompt: "^C",
				EOFPrompt:       "quit",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize REPL: %w", err)
			}
			defer func() { _ = rl.Close() }()

			e.r.Println("EduMetric REPL (" + e.cfg.API.BaseURL + ")")
			e.r.Println("Type help for commands, quit to exit")
			e.r.Println()

			s := &replSession{c: c, r: e.r}
			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}
				if s.exec(cmd.Context(), line) {
					return nil
				}
			}
		},
	}
}

func replHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	dir := filepath.Join(home, ".edumetric")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "repl_history")
}

func newREPLCompleter() *readline.PrefixCompleter {
	labels := []string{"high", "medium", "low", "poor"}

	var kinds []readline.PrefixCompleterInterface
	for _, k := range kindNames() {
		var values []readline.PrefixCompleterInterface
		for _, v := range labels {
			var scopes []readline.PrefixCompleterInterface
			for _, sc := range scopeNames() {
				scopes = append(scopes, readline.PcItem(sc))
			}
			values = append(values, readline.PcItem(v, scopes...))
		}
		kinds = append(kinds, readline.PcItem(k, values...))
	}

	var modes []readline.PrefixCompleterInterface
	for _, m := range viewstate.Modes() {
		modes = append(modes, readline.PcItem(string(m)))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("drill", kinds...),
		readline.PcItem("mode", modes...),
		readline.PcItem("retry"),
		readline.PcItem("close"),
		readline.PcItem("status"),
		readline.PcItem("view"),
		readline.PcItem("search"),
		readline.PcItem("alert"),
		readline.PcItem("send"),
		readline.PcItem("stats"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

const replHelp = `
Commands:
  drill <kind> <value> <scope> <scope-value>
                  Open a drill-down (e.g. drill risk high batch 2024)
  retry           Re-run the drill-down that failed
  close           Close the drill-down
  status          Show the drill-down state
  view <rno>      Close the drill-down and open a student report
  search <rno>    Open a student report
  alert           Show the mentor alert for the current student
  send            Send the mentor alert
  mode [name]     Show or switch the dashboard mode
  stats           Show the dashboard header counts
  help            Show this help message
  quit / exit     Leave the REPL
`

// replSession runs REPL lines against one controller.
type replSession struct {
	c *app.Controller
	r *output.Renderer
}

// exec runs one line and reports whether the session should end.
func (s *replSession) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := strings.ToLower(strings.TrimPrefix(fields[0], ".")), fields[1:]

	var err error
	switch name {
	case "quit", "exit":
		return true
	case "help":
		s.r.Printf("%s\n", replHelp)
	case "drill":
		if len(args) != 4 {
			s.r.Warning("Usage: drill <kind> <value> <scope> <scope-value>")
			return false
		}
		err = s.showDrilldown(s.c.OpenDrilldown(ctx, args[0], args[1], args[2], args[3]))
	case "retry":
		err = s.showDrilldown(s.c.RetryDrilldown(ctx))
	case "close":
		s.c.CloseDrilldown()
		s.r.Muted("Drill-down closed")
	case "status":
		s.r.Println(drilldown.Describe(s.c.Snapshot().Drilldown))
	case "mode":
		if len(args) != 1 {
			s.r.Println("Mode: " + string(s.c.Snapshot().View.Mode))
			return false
		}
		if err = s.c.ActivateMode(args[0]); err == nil {
			s.r.Muted("Mode: " + args[0])
		}
	case "view", "search":
		if len(args) != 1 {
			s.r.Warning("Usage: " + name + " <rno>")
			return false
		}
		err = s.showStudent(ctx, name, args[0])
	case "alert":
		a, aerr := s.c.OpenAlert()
		if err = aerr; err == nil {
			err = s.r.Alert(*a, s.c.MentorEmail())
		}
	case "send":
		if _, err = s.c.SendAlert(ctx); err == nil {
			succeeded(s.c, s.r)
		}
	case "stats":
		st, lerr := s.c.LoadStats(ctx)
		if err = lerr; err == nil {
			err = s.r.Stats(*st)
		}
	default:
		s.r.Warning(fmt.Sprintf("Unknown command: %s (type help for commands)", name))
		return false
	}

	if err != nil && !isStale(err) {
		s.r.Error(failed(s.c, err).Error())
		s.c.DismissNotice()
	}
	return false
}

func (s *replSession) showDrilldown(st drilldown.State, err error) error {
	if err != nil {
		return err
	}
	return s.r.Drilldown(st)
}

func (s *replSession) showStudent(ctx context.Context, how, rno string) error {
	search := s.c.SearchStudent
	if how == "view" {
		search = s.c.ViewStudent
	}
	res, err := search(ctx, rno)
	if err != nil {
		return err
	}
	return s.r.Student(*res)
}
