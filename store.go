package whispr

import "time"

// User is the sole persisted entity. A user holds either a local credential
// pair (Username + bcrypt PasswordHash), a federated identity (GoogleID),
// or both when a federated login later matches a local account.
type User struct {
	ID           string
	Username     string // empty for federated-only accounts
	PasswordHash string // bcrypt hash, salt embedded; empty for federated-only accounts
	GoogleID     string
	Secret       *string // nil until the user submits one; overwritten on each submission
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasSecret reports whether the user has submitted a secret.
func (u *User) HasSecret() bool {
	return u.Secret != nil && *u.Secret != ""
}

// CredentialStore persists user identity records. Implementations must be
// safe for concurrent use; in particular FindOrCreateByGoogleID must be
// atomic with respect to concurrent identical calls, which requires a
// uniqueness constraint enforced at the storage layer.
type CredentialStore interface {
	// FindByID retrieves a user by primary key. Returns ErrNotFound when
	// no record exists.
	FindByID(userID string) (*User, error)

	// FindByUsername retrieves a user by their unique username. Returns
	// ErrNotFound when no record exists.
	FindByUsername(username string) (*User, error)

	// FindOrCreateByGoogleID returns the user bound to the given federated
	// id, creating the record if absent. Two concurrent calls with the
	// same id must yield exactly one stored record.
	FindOrCreateByGoogleID(googleID string) (*User, error)

	// CreateLocal registers a new local account. Only a bcrypt hash of
	// rawPassword is stored. Returns ErrDuplicateUsername when the
	// username is taken.
	CreateLocal(username, rawPassword string) (*User, error)

	// VerifyLocal checks a username/password pair and returns the matching
	// user. Returns ErrInvalidCredentials for both an unknown username and
	// a password mismatch.
	VerifyLocal(username, rawPassword string) (*User, error)

	// SetSecret overwrites the user's secret. Returns ErrNotFound when the
	// user record is missing.
	SetSecret(userID, secret string) error

	// ListUsersWithSecret returns every user whose secret is set. Order is
	// unspecified.
	ListUsersWithSecret() ([]*User, error)
}
