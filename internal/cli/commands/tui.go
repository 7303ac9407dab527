package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/edumetric-labs/edumetric/internal/tui"
	"github.com/edumetric-labs/edumetric/pkg/core"
)

// NewTUICommand creates the tui command.
func NewTUICommand() *cobra.Command {
	var logFile, exportDir string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal dashboard",
		Long: `Open the dashboard in the terminal. Logs go to a file because stderr
would corrupt the screen.

Keys: tab cycles modes, / opens the command line, enter opens the selected
student, esc closes dialogs, q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv(cmd)

			level := slog.LevelInfo
			if e.cfg.Verbose {
				level = slog.LevelDebug
			}
			logger, closer, err := tui.OpenLog(logFile, level)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			api, err := newAPI(e.cfg, logger)
			if err != nil {
				return err
			}
			alerts, err := loadAlerts(e.cfg, logger)
			if err != nil {
				return err
			}
			mode, _ := core.ParseUploadMode(e.cfg.Batch.Mode)

			return tui.Run(cmd.Context(), tui.Options{
				API:         api,
				Alerts:      alerts,
				MentorEmail: e.cfg.Alert.MentorEmail,
				UploadMode:  mode,
				ExportDir:   exportDir,
				Logger:      logger,
			})
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Log file (default: ~/"+tui.DefaultLogPath+")")
	cmd.Flags().StringVar(&exportDir, "export-dir", "", "Folder for exported CSV files (default: current directory)")
	return cmd
}
