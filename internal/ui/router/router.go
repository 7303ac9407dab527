// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	authFeature "github.com/edumetric-labs/edumetric/internal/ui/features/auth"
	batchFeature "github.com/edumetric-labs/edumetric/internal/ui/features/batch"
	crudFeature "github.com/edumetric-labs/edumetric/internal/ui/features/crud"
	drilldownFeature "github.com/edumetric-labs/edumetric/internal/ui/features/drilldown"
	groupsFeature "github.com/edumetric-labs/edumetric/internal/ui/features/groups"
	homeFeature "github.com/edumetric-labs/edumetric/internal/ui/features/home"
	studentFeature "github.com/edumetric-labs/edumetric/internal/ui/features/student"
	"github.com/edumetric-labs/edumetric/internal/ui/resources"
	"github.com/edumetric-labs/edumetric/internal/ui/session"
)

// Deps is everything the feature routes need.
type Deps struct {
	Sessions    *session.Manager
	Credentials authFeature.Credentials
	Logger      *slog.Logger
	IsDev       bool
}

// SetupRoutes configures all routes for the UI server. In dev mode it
// returns a function that reloads every open page.
func SetupRoutes(router chi.Router, deps Deps) (func(), error) {
	reload := func() {}

	// Hot reload endpoint for dev mode
	if deps.IsDev {
		reload = setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	if err := authFeature.SetupRoutes(router, deps.Sessions, deps.Credentials, deps.Logger); err != nil {
		return nil, err
	}

	// Feature routes, behind the login gate
	var err error
	router.Group(func(r chi.Router) {
		r.Use(authFeature.RequireLogin(deps.Sessions, deps.Credentials))

		setups := []func(chi.Router) error{
			func(r chi.Router) error { return homeFeature.SetupRoutes(r, deps.Sessions, deps.Logger, deps.IsDev) },
			func(r chi.Router) error { return studentFeature.SetupRoutes(r, deps.Sessions, deps.Logger) },
			func(r chi.Router) error { return drilldownFeature.SetupRoutes(r, deps.Sessions, deps.Logger) },
			func(r chi.Router) error { return groupsFeature.SetupRoutes(r, deps.Sessions, deps.Logger) },
			func(r chi.Router) error { return crudFeature.SetupRoutes(r, deps.Sessions, deps.Logger) },
			func(r chi.Router) error { return batchFeature.SetupRoutes(r, deps.Sessions, deps.Logger) },
		}
		for _, setup := range setups {
			if err = setup(r); err != nil {
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}

	return reload, nil
}

// setupReload serves the dev reload stream. Every open page reloads when
// /hotreload is hit or the returned trigger is called.
func setupReload(router chi.Router) func() {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	trigger := func() {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
	}

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		trigger()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return trigger
}
