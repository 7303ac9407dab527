package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/edumetric-labs/edumetric/internal/ui/features"
)

func testCreds(t *testing.T) Credentials {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return Credentials{Username: "hod", PasswordHash: string(hash)}
}

func setupRouter(t *testing.T, creds Credentials) (*chi.Mux, *features.TestFixture) {
	t.Helper()
	f := features.SetupTestFixture(t)
	r := chi.NewRouter()
	r.Use(RequireLogin(f.Sessions, creds))
	require.NoError(t, SetupRoutes(r, f.Sessions, creds, nil))
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("dashboard")) })
	r.Post("/mode/{mode}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/static/*", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	return r, f
}

func loginRequest(username, password string) *http.Request {
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestCredentials_Check(t *testing.T) {
	creds := testCreds(t)

	tests := []struct {
		name     string
		creds    Credentials
		user     string
		password string
		want     bool
	}{
		{"valid", creds, "hod", "s3cret", true},
		{"wrong password", creds, "hod", "nope", false},
		{"wrong user", creds, "admin", "s3cret", false},
		{"disabled gate", Credentials{}, "anyone", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.creds.Check(tt.user, tt.password))
		})
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.True(t, Credentials{Username: "u", PasswordHash: hash}.Check("u", "pw"))
}

func TestLogin_Success(t *testing.T) {
	r, _ := setupRouter(t, testCreds(t))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, loginRequest("hod", "s3cret"))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, next)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dashboard", rec.Body.String())
}

func TestLogin_Failure(t *testing.T) {
	r, _ := setupRouter(t, testCreds(t))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, loginRequest("hod", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), InvalidCredentials)
}

func TestRequireLogin_Anonymous(t *testing.T) {
	r, _ := setupRouter(t, testCreds(t))

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
	}{
		{"page redirects", http.MethodGet, "/", http.StatusSeeOther},
		{"action rejected", http.MethodPost, "/mode/batch", http.StatusUnauthorized},
		{"static is public", http.MethodGet, "/static/app.css", http.StatusOK},
		{"login page is public", http.MethodGet, "/login", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRequireLogin_Disabled(t *testing.T) {
	r, _ := setupRouter(t, Credentials{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code, "login page redirects home when the gate is off")
}

func TestLogout(t *testing.T) {
	r, _ := setupRouter(t, testCreds(t))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, loginRequest("hod", "s3cret"))
	cookies := rec.Result().Cookies()

	out := httptest.NewRequest(http.MethodGet, "/logout", nil)
	for _, c := range cookies {
		out.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, out)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, next)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}
