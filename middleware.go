package whispr

import (
	"context"
	"net/http"
)

type userContextKey string

const loggedInUserKey userContextKey = "loggedInUser"

// Middleware loads the session-bound user into the request context and,
// for protected routes, enforces that one exists.
type Middleware struct {
	Sessions *SessionManager

	// Where unauthenticated requests to protected routes are sent.
	// Defaults to "/login".
	LoginURL string
}

func (m *Middleware) ensureDefaults() {
	if m.LoginURL == "" {
		m.LoginURL = "/login"
	}
}

// ExtractUser resolves the session user, if any, and makes it available to
// downstream handlers via UserFrom. It performs no redirects; use
// EnsureUser to also enforce that a user is logged in.
func (m *Middleware) ExtractUser(next http.Handler) http.Handler {
	m.ensureDefaults()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.Sessions.Resolve(r.Context())
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, setLoggedInUser(user, r))
	})
}

// EnsureUser is like ExtractUser but redirects to the login view when no
// user is bound to the session.
func (m *Middleware) EnsureUser(next http.Handler) http.Handler {
	m.ensureDefaults()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.Sessions.Resolve(r.Context())
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if user == nil {
			http.Redirect(w, r, m.LoginURL, http.StatusFound)
			return
		}
		next.ServeHTTP(w, setLoggedInUser(user, r))
	})
}

// UserFrom returns the user loaded by ExtractUser/EnsureUser, or nil.
func UserFrom(ctx context.Context) *User {
	user, _ := ctx.Value(loggedInUserKey).(*User)
	return user
}

// Set the logged in user as a request scoped variable so it is available
// to all handlers downstream.
func setLoggedInUser(user *User, r *http.Request) *http.Request {
	if user == nil {
		return r
	}
	return r.WithContext(context.WithValue(r.Context(), loggedInUserKey, user))
}
