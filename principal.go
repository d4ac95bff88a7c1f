package authcache

// Principal is an authenticated identity.
type Principal interface {
	Name() string
}

// NamedPrincipal is a minimal Principal carrying only a name. It is
// comparable, so it can be used directly as the principal type of a
// CachingAuthorizer.
type NamedPrincipal struct {
	name string
}

// NewNamedPrincipal creates a principal with the given name.
func NewNamedPrincipal(name string) NamedPrincipal {
	return NamedPrincipal{name: name}
}

func (p NamedPrincipal) Name() string {
	return p.name
}
