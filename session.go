package whispr

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
)

// Name of the session variable where the logged in user's id is stored.
const sessionUserKey = "loggedInUserId"

// SessionManager issues an opaque session token to a successfully
// authenticated request and resolves that token back to a user on later
// requests. Only the user id is serialized into the session; the full
// record is re-read from the credential store on every Resolve so the
// latest secret is never stale.
type SessionManager struct {
	scs   *scs.SessionManager
	store CredentialStore
}

// NewSessionManager wraps an scs session manager around the store. A
// non-positive lifetime keeps the scs default (24 hours).
func NewSessionManager(store CredentialStore, lifetime time.Duration) *SessionManager {
	sm := scs.New()
	if lifetime > 0 {
		sm.Lifetime = lifetime
	}
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	return &SessionManager{scs: sm, store: store}
}

// Establish binds the user's identity to the request's session. The token
// is renewed first so a pre-login session id is never carried across the
// authentication boundary.
func (s *SessionManager) Establish(ctx context.Context, user *User) error {
	if err := s.scs.RenewToken(ctx); err != nil {
		return err
	}
	s.scs.Put(ctx, sessionUserKey, user.ID)
	return nil
}

// Resolve returns the user bound to the request's session, or nil when no
// identity is bound. A session referencing a vanished record resolves to
// nil rather than an error.
func (s *SessionManager) Resolve(ctx context.Context) (*User, error) {
	userID := s.scs.GetString(ctx, sessionUserKey)
	if userID == "" {
		return nil, nil
	}
	user, err := s.store.FindByID(userID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Terminate invalidates the session immediately; a subsequent Resolve on
// the same token returns nil.
func (s *SessionManager) Terminate(ctx context.Context) error {
	return s.scs.Destroy(ctx)
}

// LoadAndSave is the scs middleware that loads the session for each
// request and commits it on the way out. It must wrap every handler that
// touches the session.
func (s *SessionManager) LoadAndSave(next http.Handler) http.Handler {
	return s.scs.LoadAndSave(next)
}
