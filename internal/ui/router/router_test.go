package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumetric-labs/edumetric/internal/ui/features"
)

func TestSetupRoutes_RegistersFeatures(t *testing.T) {
	f := features.SetupTestFixture(t)
	r := chi.NewRouter()

	reload, err := SetupRoutes(r, Deps{Sessions: f.Sessions})
	require.NoError(t, err)
	require.NotNil(t, reload)

	routes := map[string]bool{}
	require.NoError(t, chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes[method+" "+route] = true
		return nil
	}))

	for _, want := range []string{
		"GET /",
		"GET /updates",
		"POST /mode/{mode}",
		"GET /login",
		"POST /drilldown/",
		"POST /student/search",
		"POST /groups/{scope}",
		"POST /batch/upload",
		"GET /student/export.csv",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
	assert.False(t, routes["GET /hotreload"], "reload routes are dev only")
}

func TestSetupRoutes_HotReload(t *testing.T) {
	f := features.SetupTestFixture(t)
	r := chi.NewRouter()

	reload, err := SetupRoutes(r, Deps{Sessions: f.Sessions, IsDev: true})
	require.NoError(t, err)
	reload()
	reload() // a pending reload is not duplicated

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hotreload", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
