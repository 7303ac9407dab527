// Package ui provides the EduMetric web dashboard.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/edumetric-labs/edumetric/internal/alertrules"
	"github.com/edumetric-labs/edumetric/internal/app"
	authFeature "github.com/edumetric-labs/edumetric/internal/ui/features/auth"
	"github.com/edumetric-labs/edumetric/internal/ui/router"
	"github.com/edumetric-labs/edumetric/internal/ui/session"
)

// Server is the main UI server.
type Server struct {
	sessions  *session.Manager
	creds     authFeature.Credentials
	port      int
	dev       bool
	staticDir string
	logger    *slog.Logger
}

// Config holds configuration for the UI server.
type Config struct {
	API           app.API
	Alerts        *alertrules.Engine
	MentorEmail   string
	Port          int
	SessionSecret string
	Username      string
	PasswordHash  string
	Logger        *slog.Logger
	// Dev serves live-reload endpoints and reloads open pages when a file
	// under StaticDir changes.
	Dev       bool
	StaticDir string
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	factory := func(onChange func()) *app.Controller {
		return app.New(app.Options{
			API:         cfg.API,
			Alerts:      cfg.Alerts,
			MentorEmail: cfg.MentorEmail,
			Logger:      logger,
			OnChange:    onChange,
		})
	}

	return &Server{
		sessions:  session.NewManager(session.NewCookieStore(cfg.SessionSecret), factory, logger),
		creds:     authFeature.Credentials{Username: cfg.Username, PasswordHash: cfg.PasswordHash},
		port:      cfg.Port,
		dev:       cfg.Dev,
		staticDir: cfg.StaticDir,
		logger:    logger,
	}
}

// Handler builds the HTTP handler. In dev mode the returned function
// reloads every open page.
func (s *Server) Handler() (http.Handler, func(), error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	reload, err := router.SetupRoutes(r, router.Deps{
		Sessions:    s.sessions,
		Credentials: s.creds,
		Logger:      s.logger,
		IsDev:       s.dev,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, reload, nil
}

const sessionSweepInterval = time.Hour

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port), "login", s.creds.Enabled())

	handler, reload, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start file watcher in dev mode
	if s.dev && s.staticDir != "" {
		eg.Go(func() error {
			return s.watchFiles(egctx, reload)
		})
	}

	eg.Go(func() error {
		return s.sessions.Run(egctx, sessionSweepInterval)
	})

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// IsDev returns true if running in development mode.
func (s *Server) IsDev() bool {
	return s.dev
}

// Sessions returns the server's session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// watchFiles reloads open pages when a static asset changes.
func (s *Server) watchFiles(ctx context.Context, reload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, s.staticDir); err != nil {
		s.logger.Error("failed to watch static directory", "error", err)
		// Don't fail - continue without watching
	}

	// Debounce timer
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			ext := filepath.Ext(event.Name)
			if ext != ".css" && ext != ".js" {
				continue
			}

			// Debounce
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("static asset changed, reloading pages", "file", event.Name)
				reload()
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
