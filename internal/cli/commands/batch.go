package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/batchwatch"
	"github.com/edumetric-labs/edumetric/internal/cli/output"
	"github.com/edumetric-labs/edumetric/internal/render"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// NewBatchCommand creates the batch command group.
func NewBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Upload student spreadsheets",
	}
	cmd.AddCommand(newBatchUploadCommand())
	cmd.AddCommand(newBatchPreviewCommand())
	cmd.AddCommand(newBatchWatchCommand())
	return cmd
}

func uploadMode(e env, flag string) (core.UploadMode, error) {
	s := e.cfg.Batch.Mode
	if flag != "" {
		s = flag
	}
	m, ok := core.ParseUploadMode(s)
	if !ok {
		return "", fmt.Errorf("invalid upload mode %q: must be normalize or analytics", s)
	}
	return m, nil
}

func modeFlagCompletion(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{string(core.UploadNormalize), string(core.UploadAnalytics)}, cobra.ShellCompDirectiveNoFileComp
}

func newBatchUploadCommand() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a .csv or .xlsx spreadsheet",
		Long: `Upload a spreadsheet of students.

  normalize  adds new students and updates existing ones, then runs predictions
  analytics  scores the rows without storing them`,
		Example: `  edumetric batch upload students.xlsx --mode analytics`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			m, err := uploadMode(e, mode)
			if err != nil {
				return err
			}
			rows, err := batchwatch.Preflight(args[0])
			if err != nil {
				return err
			}
			e.logger.Debug("preflight", "file", args[0], "rows", rows)

			c, err := e.newController(nil)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			res, err := c.UploadBatch(cmd.Context(), filepath.Base(args[0]), f, m)
			if err != nil {
				return failed(c, err)
			}
			if e.r.EffectiveMode() == output.ModeJSON {
				return e.r.JSON(res)
			}
			e.r.Muted(fmt.Sprintf("%d rows sent", rows))
			succeeded(c, e.r)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "normalize or analytics (default: batch.mode)")
	_ = cmd.RegisterFlagCompletionFunc("mode", modeFlagCompletion)
	return cmd
}

func newBatchPreviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Show the analytics dashboard of the last upload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv(cmd)
			c, err := e.newController(nil)
			if err != nil {
				return err
			}
			p, err := c.LoadPreview(cmd.Context())
			if err != nil {
				return failed(c, err)
			}
			if e.r.EffectiveMode() == output.ModeJSON {
				return e.r.JSON(p)
			}
			e.r.Header("Analytics Preview")
			e.r.KeyValues([][2]string{
				{"Students", fmt.Sprint(p.Stats.TotalStudents)},
				{"High Risk", fmt.Sprint(p.Stats.HighRisk)},
				{"High Dropout", fmt.Sprint(p.Stats.HighDropout)},
			})
			e.r.Println()
			e.r.Table(render.GroupTable(p.Students, true))
			return nil
		},
	}
}

func newBatchWatchCommand() *cobra.Command {
	var dir, mode string
	var existing bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Upload spreadsheets dropped into a folder",
		Long: `Watch a folder and upload every .csv or .xlsx file written into it.
Each file is uploaded once per change, after it has been quiet briefly.`,
		Example: `  edumetric batch watch --dir inbox --mode normalize`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv(cmd)
			m, err := uploadMode(e, mode)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = e.cfg.Batch.WatchDir
			}
			c, err := e.newController(nil)
			if err != nil {
				return err
			}

			w, err := batchwatch.New(batchwatch.Options{
				Dir:      dir,
				Mode:     m,
				Uploader: c,
				Logger:   e.logger.With("component", "batchwatch"),
				Existing: existing,
				OnResult: func(res batchwatch.Result) { reportUpload(c, e.r, res) },
			})
			if err != nil {
				return err
			}
			e.r.Println(fmt.Sprintf("Watching %s (%s). Press Ctrl+C to stop", dir, m))
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Folder to watch (default: batch.watch_dir)")
	cmd.Flags().StringVar(&mode, "mode", "", "normalize or analytics (default: batch.mode)")
	cmd.Flags().BoolVar(&existing, "existing", false, "Also upload spreadsheets already in the folder")
	_ = cmd.RegisterFlagCompletionFunc("mode", modeFlagCompletion)
	return cmd
}

func reportUpload(c *app.Controller, r *output.Renderer, res batchwatch.Result) {
	if res.Err != nil {
		r.Error(fmt.Sprintf("%s: %v", res.File, failed(c, res.Err)))
		c.DismissNotice()
		return
	}
	r.StatusLine(res.File, "success", fmt.Sprintf("%d rows", res.Rows))
	c.DismissNotice()
}
