// Package auth provides the optional login gate of the dashboard.
package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/edumetric-labs/edumetric/internal/ui/components"
	"github.com/edumetric-labs/edumetric/internal/ui/session"
)

// InvalidCredentials is shown when a login attempt fails.
const InvalidCredentials = "Invalid username or password"

// Credentials is the single dashboard account. An empty PasswordHash
// disables the gate.
type Credentials struct {
	Username     string
	PasswordHash string
}

// Enabled reports whether logins are required.
func (c Credentials) Enabled() bool {
	return c.PasswordHash != ""
}

// Check verifies a username and password.
func (c Credentials) Check(username, password string) bool {
	if !c.Enabled() {
		return true
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
	return userOK && passOK
}

// HashPassword returns the bcrypt hash stored in the config file.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Handlers provides HTTP handlers for the auth feature.
type Handlers struct {
	sessions *session.Manager
	creds    Credentials
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sessions *session.Manager, creds Credentials, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{sessions: sessions, creds: creds, logger: logger}
}

// LoginPage renders the sign-in form.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if !h.creds.Enabled() || h.sessions.Authenticated(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "")
}

// Login checks the submitted credentials.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, InvalidCredentials)
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	if !h.creds.Check(username, r.PostFormValue("password")) {
		h.logger.Info("login failed", "user", username)
		h.render(w, r, http.StatusUnauthorized, InvalidCredentials)
		return
	}
	if err := h.sessions.SetAuthenticated(w, r, username, true); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.logger.Info("login succeeded", "user", username)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout clears the session's login.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SetAuthenticated(w, r, "", false); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := components.LoginPage(errMsg).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render login page", "error", err)
	}
}
