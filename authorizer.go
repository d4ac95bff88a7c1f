package authcache

import "context"

// Authorizer decides whether a principal holds a role. The principal type P
// must be comparable so decisions can be cached per principal and role.
type Authorizer[P comparable] interface {
	Authorize(ctx context.Context, principal P, role string) bool
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc[P comparable] func(ctx context.Context, principal P, role string) bool

func (f AuthorizerFunc[P]) Authorize(ctx context.Context, principal P, role string) bool {
	return f(ctx, principal, role)
}

// PermitAll returns an Authorizer granting every role to every principal.
func PermitAll[P comparable]() Authorizer[P] {
	return AuthorizerFunc[P](func(context.Context, P, string) bool {
		return true
	})
}
