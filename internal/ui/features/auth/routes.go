package auth

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/edumetric-labs/edumetric/internal/ui/session"
)

// SetupRoutes configures routes for the auth feature.
func SetupRoutes(router chi.Router, sessions *session.Manager, creds Credentials, logger *slog.Logger) error {
	handlers := NewHandlers(sessions, creds, logger)

	router.Get("/login", handlers.LoginPage)
	router.Post("/login", handlers.Login)
	router.Get("/logout", handlers.Logout)

	return nil
}
