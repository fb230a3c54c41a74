package auth

import (
	"net/http"
	"time"

	"github.com/joslsmit/ratm-app/internal/logger"
)

// DevUser is the identity every request gets under mock auth
var DevUser = User{
	ID:       "dev",
	Email:    "dev@draftkit.local",
	Name:     "Dev User",
	Username: "devuser",
	Groups:   []string{"users", "admins"},
}

// MockAuth provides a mock authentication for local development.
// Requests without a session act as DevUser.
type MockAuth struct {
	sessions *sessionStore
}

// NewMockAuth creates a new mock authentication handler
func NewMockAuth() *MockAuth {
	logger.Info("Using MOCK auth, all requests run as the dev user")
	return &MockAuth{sessions: newSessionStore()}
}

// LoginHandler for mock auth - auto-creates a session
func (m *MockAuth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	user := DevUser
	session := m.sessions.create(&user, nil, 24*time.Hour)
	setSessionCookie(w, session, false)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// CallbackHandler is not needed for mock auth
func (m *MockAuth) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LogoutHandler for mock auth
func (m *MockAuth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	m.sessions.delete(r)
	clearCookie(w, sessionCookie)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Middleware for mock auth
func (m *MockAuth) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), m.user(r))))
	}
}

// RequireAPI attaches the session user, or the dev user
func (m *MockAuth) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), m.user(r))))
	})
}

// MeHandler returns the current user
func (m *MockAuth) MeHandler(w http.ResponseWriter, r *http.Request) {
	writeUser(w, m.user(r))
}

// UserForSession returns the user of a session created by LoginHandler
func (m *MockAuth) UserForSession(id string) (*User, bool) {
	session, ok := m.sessions.get(id)
	if !ok {
		return nil, false
	}
	return session.User, true
}

func (m *MockAuth) user(r *http.Request) *User {
	if session, ok := m.sessions.lookup(r); ok {
		return session.User
	}
	user := DevUser
	return &user
}
