package whispr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/panyam/whispr/oauth2"
)

// App glues the HTTP routes to the credential store, the authentication
// strategies and the session manager. Construct one per process (or per
// test) with New; there is no package-level state.
type App struct {
	Store    CredentialStore
	Sessions *SessionManager
	Google   *oauth2.GoogleOAuth2
	Logger   *slog.Logger

	local      LocalStrategy
	middleware Middleware
}

func New(store CredentialStore, sessions *SessionManager, google *oauth2.GoogleOAuth2, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		Store:      store,
		Sessions:   sessions,
		Google:     google,
		Logger:     logger,
		local:      LocalStrategy{Store: store},
		middleware: Middleware{Sessions: sessions, LoginURL: "/login"},
	}
}

// Handler returns the application's HTTP handler, wrapped in the session
// middleware.
func (a *App) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", a.onHome).Methods("GET")
	r.HandleFunc("/register", a.showRegister).Methods("GET")
	r.HandleFunc("/register", a.onRegister).Methods("POST")
	r.HandleFunc("/login", a.showLogin).Methods("GET")
	r.HandleFunc("/login", a.onLogin).Methods("POST")
	r.HandleFunc("/auth/google", a.Google.Begin).Methods("GET")
	r.HandleFunc("/auth/google/secrets", a.onGoogleCallback).Methods("GET")
	r.Handle("/secrets", a.middleware.EnsureUser(http.HandlerFunc(a.onSecrets))).Methods("GET")
	r.Handle("/submit", a.middleware.EnsureUser(http.HandlerFunc(a.showSubmit))).Methods("GET")
	r.Handle("/submit", a.middleware.EnsureUser(http.HandlerFunc(a.onSubmit))).Methods("POST")
	r.HandleFunc("/logout", a.onLogout)

	return a.Sessions.LoadAndSave(r)
}

func (a *App) onHome(w http.ResponseWriter, r *http.Request) {
	a.render(w, "home.html", nil)
}

func (a *App) showRegister(w http.ResponseWriter, r *http.Request) {
	a.render(w, "register.html", nil)
}

func (a *App) onRegister(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}

	user, err := a.Store.CreateLocal(username, password)
	if errors.Is(err, ErrDuplicateUsername) {
		a.Logger.Info("registration rejected", "username", username, "err", err)
		http.Redirect(w, r, "/register", http.StatusFound)
		return
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}

	if err := a.Sessions.Establish(r.Context(), user); err != nil {
		a.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/secrets", http.StatusFound)
}

func (a *App) showLogin(w http.ResponseWriter, r *http.Request) {
	a.render(w, "login.html", nil)
}

func (a *App) onLogin(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	// The session is always established from the store-returned record,
	// never from the raw form fields.
	user, err := a.local.Authenticate(username, password)
	if errors.Is(err, ErrInvalidCredentials) {
		// Same response for unknown user and wrong password.
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}

	if err := a.Sessions.Establish(r.Context(), user); err != nil {
		a.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/secrets", http.StatusFound)
}

func (a *App) onGoogleCallback(w http.ResponseWriter, r *http.Request) {
	profile, err := a.Google.Complete(w, r)
	if err != nil {
		a.Logger.Info("federated login failed", "err", fmt.Errorf("%w: %v", ErrFederatedExchange, err))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	user, err := a.Store.FindOrCreateByGoogleID(profile.Subject)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Sessions.Establish(r.Context(), user); err != nil {
		a.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *App) onSecrets(w http.ResponseWriter, r *http.Request) {
	users, err := a.Store.ListUsersWithSecret()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.render(w, "secrets.html", map[string]any{"UsersWithSecrets": users})
}

func (a *App) showSubmit(w http.ResponseWriter, r *http.Request) {
	a.render(w, "submit.html", nil)
}

func (a *App) onSubmit(w http.ResponseWriter, r *http.Request) {
	user := UserFrom(r.Context())
	secret := r.PostFormValue("secret")

	err := a.Store.SetSecret(user.ID, secret)
	if errors.Is(err, ErrNotFound) {
		// The record vanished under the session; force a fresh login.
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/secrets", http.StatusFound)
}

func (a *App) onLogout(w http.ResponseWriter, r *http.Request) {
	if err := a.Sessions.Terminate(r.Context()); err != nil {
		a.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// fail resolves unexpected errors (ErrStoreUnavailable included) to an
// explicit 500 with no error detail leaked to the client.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	a.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
