// Package commands implements the edumetric subcommands. Each command
// reads its config, logger and renderer from the command context, which
// the root command fills in before any command runs.
package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/edumetric-labs/edumetric/internal/alertrules"
	"github.com/edumetric-labs/edumetric/internal/apiclient"
	"github.com/edumetric-labs/edumetric/internal/app"
	"github.com/edumetric-labs/edumetric/internal/cli/config"
	"github.com/edumetric-labs/edumetric/internal/cli/output"
)

// env is what every command works with.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	r      *output.Renderer
}

func getEnv(cmd *cobra.Command) env {
	ctx := cmd.Context()
	return env{
		cfg:    config.GetConfig(ctx),
		logger: config.GetLogger(ctx),
		r:      output.GetRenderer(ctx),
	}
}

// newAPI builds the backend client from config.
func newAPI(cfg *config.Config, logger *slog.Logger) (*apiclient.Client, error) {
	client, err := apiclient.New(apiclient.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  logger.With("component", "apiclient"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}
	return client, nil
}

// loadAlerts compiles the configured alert rules script, if any.
func loadAlerts(cfg *config.Config, logger *slog.Logger) (*alertrules.Engine, error) {
	return alertrules.Load(cfg.Alert.RulesFile, logger.With("component", "alertrules"))
}

// newController wires a controller to the backend.
func (e env) newController(onChange func()) (*app.Controller, error) {
	api, err := newAPI(e.cfg, e.logger)
	if err != nil {
		return nil, err
	}
	alerts, err := loadAlerts(e.cfg, e.logger)
	if err != nil {
		return nil, err
	}
	return app.New(app.Options{
		API:         api,
		Alerts:      alerts,
		MentorEmail: e.cfg.Alert.MentorEmail,
		Logger:      e.logger,
		OnChange:    onChange,
	}), nil
}

// noticeError carries the user-facing notice text of a failed operation.
type noticeError struct {
	msg string
	err error
}

func (e *noticeError) Error() string { return e.msg }
func (e *noticeError) Unwrap() error { return e.err }

// failed replaces err with the notice the controller raised for it, so the
// CLI prints the same text the dashboards show.
func failed(c *app.Controller, err error) error {
	if err == nil {
		return nil
	}
	if n := c.Snapshot().Notice; n != nil && n.Kind == app.NoticeError {
		return &noticeError{msg: n.Message, err: err}
	}
	return err
}

// succeeded prints the success notice of the last operation, if any.
func succeeded(c *app.Controller, r *output.Renderer) {
	n := c.Snapshot().Notice
	if n == nil || n.Kind != app.NoticeSuccess || r.EffectiveMode() == output.ModeJSON {
		return
	}
	r.Success(n.Message)
	c.DismissNotice()
}

// isStale reports whether err only means a newer request won.
func isStale(err error) bool {
	return errors.Is(err, app.ErrStale)
}
