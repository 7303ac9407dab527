package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"

	"github.com/edumetric-labs/edumetric/internal/ui"
	"github.com/edumetric-labs/edumetric/internal/ui/resources"
)

// UIOptions holds options for the ui command.
type UIOptions struct {
	Port      int
	NoBrowser bool
	Dev       bool
	StaticDir string
}

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	opts := &UIOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the EduMetric web dashboard",
		Long: `Start a local web server with the interactive dashboard.

The dashboard provides:
- Student search, analysis and mentor alerts
- Department, year, college and batch analytics with drill-down charts
- Student record management
- Batch spreadsheet upload and analytics preview

Set ui.username and ui.password_hash in edumetric.yaml to require a login.`,
		Example: `  # Start on the default port
  edumetric ui

  # Start on a custom port without opening a browser
  edumetric ui --port 3000 --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: ui.port)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Serve live-reload endpoints and watch static assets")
	cmd.Flags().StringVar(&opts.StaticDir, "static-dir", resources.StaticDirectoryPath, "Static asset directory watched in --dev mode")

	return cmd
}

func runUI(cmd *cobra.Command, opts *UIOptions) error {
	e := getEnv(cmd)
	uiCfg := e.cfg.UI

	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	autoOpen := uiCfg.AutoOpen && !opts.NoBrowser

	secret := uiCfg.SessionSecret
	if secret == "" {
		var err error
		if secret, err = generateSessionSecret(); err != nil {
			return err
		}
		e.logger.Debug("generated session secret; sessions end when the server stops")
	}

	api, err := newAPI(e.cfg, e.logger)
	if err != nil {
		return err
	}
	alerts, err := loadAlerts(e.cfg, e.logger)
	if err != nil {
		return err
	}

	server := ui.NewServer(ui.Config{
		API:           api,
		Alerts:        alerts,
		MentorEmail:   e.cfg.Alert.MentorEmail,
		Port:          port,
		SessionSecret: secret,
		Username:      uiCfg.Username,
		PasswordHash:  uiCfg.PasswordHash,
		Logger:        e.logger,
		Dev:           opts.Dev,
		StaticDir:     opts.StaticDir,
	})

	url := fmt.Sprintf("http://localhost:%d", port)
	if autoOpen {
		go openBrowser(url)
	}

	e.r.Println("Starting EduMetric dashboard on " + url)
	e.r.Muted("API: " + e.cfg.API.BaseURL)
	e.r.Println("Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}

// generateSessionSecret returns a random cookie signing key.
func generateSessionSecret() (string, error) {
	b := securecookie.GenerateRandomKey(32)
	if b == nil {
		return "", errors.New("failed to generate session secret")
	}
	return hex.EncodeToString(b), nil
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
