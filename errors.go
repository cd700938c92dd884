package whispr

import "errors"

// Errors returned by the credential store and authentication strategies.
// The route layer matches these with errors.Is and converts every one of
// them into a redirect to a safe view; only ErrStoreUnavailable (and any
// unrecognized error) surfaces as a 500.
var (
	// ErrDuplicateUsername is returned by CreateLocal when the username is
	// already registered.
	ErrDuplicateUsername = errors.New("username already registered")

	// ErrInvalidCredentials is returned by VerifyLocal for both an unknown
	// username and a wrong password, so callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrFederatedExchange indicates the OAuth code/profile exchange failed
	// or the provider denied consent.
	ErrFederatedExchange = errors.New("federated exchange failed")

	// ErrNotFound indicates a user record was expected but missing.
	ErrNotFound = errors.New("user not found")

	// ErrStoreUnavailable wraps failures of the underlying persistence.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)
