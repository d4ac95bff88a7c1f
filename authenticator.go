package authcache

import "context"

// Authenticator resolves a set of credentials to the principal they belong
// to. The credential type C is the cache key and must be comparable.
type Authenticator[C comparable, P any] interface {
	// Authenticate checks the given credentials. It returns the principal and
	// true when the credentials are valid, or the zero principal and false
	// when they are well formed but unknown. A non-nil error is returned only
	// when the check itself could not be performed (backend unavailable,
	// malformed input, internal fault): unknown credentials are a successful
	// outcome, not an error.
	Authenticate(ctx context.Context, credentials C) (P, bool, error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc[C comparable, P any] func(ctx context.Context, credentials C) (P, bool, error)

func (f AuthenticatorFunc[C, P]) Authenticate(ctx context.Context, credentials C) (P, bool, error) {
	return f(ctx, credentials)
}
