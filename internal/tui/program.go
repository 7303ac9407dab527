package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultLogPath is where the dashboard logs, relative to the home
// directory. Writing to stderr would corrupt the screen.
const DefaultLogPath = ".edumetric/tui.log"

// OpenLog opens (or creates) the log file and returns a JSON logger on it.
// An empty path means DefaultLogPath under the home directory.
func OpenLog(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to find home directory: %w", err)
		}
		path = filepath.Join(home, DefaultLogPath)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // path is from config or home
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(handler), f, nil
}

// Run starts the dashboard on the terminal and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, opts Options, teaOpts ...tea.ProgramOption) error {
	m := New(ctx, opts)
	teaOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, teaOpts...)
	p := tea.NewProgram(m, teaOpts...)

	m.logger.Info("dashboard started")
	_, err := p.Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	m.logger.Info("dashboard stopped")
	return nil
}
