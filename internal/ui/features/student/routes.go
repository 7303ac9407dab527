// Package student provides single-student analysis, export and mentor
// alerts.
package student

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/edumetric-labs/edumetric/internal/ui/session"
)

// SetupRoutes registers the student feature routes.
func SetupRoutes(router chi.Router, sessions *session.Manager, logger *slog.Logger) error {
	handlers := NewHandlers(sessions, logger)

	router.Post("/student/search", handlers.Search)
	router.Post("/student/analyse", handlers.Analyse)
	router.Get("/student/export.csv", handlers.ExportCSV)
	router.Post("/students/{rno}/view", handlers.View)

	router.Route("/alert", func(r chi.Router) {
		r.Post("/", handlers.OpenAlert)
		r.Post("/send", handlers.SendAlert)
		r.Post("/close", handlers.CloseAlert)
	})

	return nil
}
