// Package authcache decorates credential authenticators and authorizers with
// a bounded in-memory cache, so that repeated checks of the same credentials
// avoid re-invoking a potentially expensive or rate-limited backend.
//
// The cache guarantees single-flight loading: for any key, at most one
// concurrent execution of the underlying authenticator is in flight, and all
// concurrent callers for that key share its outcome. Unknown credentials are
// not cached unless negative caching is explicitly enabled, and backend
// failures are never cached.
package authcache
