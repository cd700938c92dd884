// Package whispr implements a small web application where authenticated
// users anonymously share secrets on a single shared wall.
//
// Whispr separates the authentication lifecycle into four pieces: a
// CredentialStore that persists user records, a LocalStrategy that checks
// username/password pairs, a Google OAuth flow (in the oauth2 subpackage)
// for federated login, and a SessionManager that binds an authenticated
// identity to an opaque cookie token.
//
// # Basic Usage
//
// Open a store, build the session manager and the OAuth flow, and mount
// the application handler:
//
//	db, _ := gorm.Open(sqlite.Open("whispr.db"), &gorm.Config{TranslateError: true})
//	gormstore.AutoMigrate(db)
//	store := gormstore.NewCredentialStore(db)
//
//	sessions := whispr.NewSessionManager(store, 24*time.Hour)
//	google := oauth2.NewGoogleOAuth2(clientID, clientSecret, callbackURL)
//
//	app := whispr.New(store, sessions, google, slog.Default())
//	http.ListenAndServe(":3000", app.Handler())
//
// # Security
//
// Passwords are hashed using bcrypt with default cost; the plaintext is
// never stored. Sessions are managed server-side by scs; the cookie carries
// only an opaque token and the user record is re-read from the store on
// every authenticated request. The OAuth flow protects its callback with a
// random state value carried in a short-lived cookie.
//
// # Testing
//
// All handlers can be tested without a running identity provider: the
// oauth2.Exchanger interface seats the provider round trip so tests can
// substitute a fake, and the application handler is exercised with
// httptest servers.
package whispr
