package whispr

// LocalStrategy verifies a submitted username/password pair against the
// credential store. It is stateless aside from store reads.
type LocalStrategy struct {
	Store CredentialStore
}

// Authenticate returns the user matching the credentials, or
// ErrInvalidCredentials. Empty fields short-circuit without a store read.
func (s *LocalStrategy) Authenticate(username, password string) (*User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	return s.Store.VerifyLocal(username, password)
}
