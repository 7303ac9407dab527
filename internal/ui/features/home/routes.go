// Package home provides the dashboard page and its live update stream.
package home

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/edumetric-labs/edumetric/internal/ui/session"
)

// SetupRoutes configures routes for the home feature.
func SetupRoutes(router chi.Router, sessions *session.Manager, logger *slog.Logger, isDev bool) error {
	handlers := NewHandlers(sessions, logger, isDev)

	router.Get("/", handlers.HomePage)
	router.Get("/updates", handlers.HomePageUpdates)
	router.Post("/mode/{mode}", handlers.SetMode)
	router.Post("/notice/dismiss", handlers.DismissNotice)

	return nil
}
