package authcache

import (
	"errors"
	"fmt"
)

// AuthenticationError reports that an underlying authenticator failed for a
// reason other than the credentials being unknown. The original cause is
// preserved and available via errors.Unwrap, errors.Is and errors.As.
type AuthenticationError struct {
	Cause error
}

func (e *AuthenticationError) Error() string {
	if e.Cause == nil {
		return "authentication failed"
	}
	return fmt.Sprintf("authentication failed: %v", e.Cause)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// wrapAuthenticationError ensures an error crossing the cache boundary is an
// *AuthenticationError. An error that already carries one is passed through
// unchanged rather than wrapped a second time.
func wrapAuthenticationError(err error) error {
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return authErr
	}
	return &AuthenticationError{Cause: err}
}

// errInvalidCredentials is returned by the cache loader to prevent unknown
// credentials from being cached when negative caching is disabled. It is
// translated back to a plain not-found result before Authenticate returns,
// and never escapes this package.
var errInvalidCredentials = errors.New("authcache: invalid credentials")
