package authcache

import (
	"context"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/rs/zerolog/log"
)

// authorizationKey identifies one authorization decision.
type authorizationKey[P comparable] struct {
	principal P
	role      string
}

// CachingAuthorizer decorates an Authorizer with a bounded in-memory cache of
// authorization decisions, keyed by principal and role.
//
// Both granted and denied decisions are cached: authorization has no
// error outcome, so every load populates the cache. Invalidate the affected
// principal when role assignments change.
type CachingAuthorizer[P comparable] struct {
	cache      *otter.Cache[authorizationKey[P], bool]
	underlying Authorizer[P]
	loader     otter.LoaderFunc[authorizationKey[P], bool]
	counter    *statsCounter
	metrics    Metrics
}

// NewCachingAuthorizer builds a caching decorator around underlying with the
// supplied cache bounds. CacheConfig.CacheNegativeResults has no effect here:
// denied decisions are always cached.
func NewCachingAuthorizer[P comparable](
	underlying Authorizer[P],
	cfg CacheConfig,
	opts ...Option,
) (*CachingAuthorizer[P], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := applyOptions("authorizer", opts)

	a := &CachingAuthorizer[P]{
		underlying: underlying,
		counter:    &statsCounter{},
		metrics:    o.metrics,
	}
	a.loader = a.load

	a.cache = otter.Must(&otter.Options[authorizationKey[P], bool]{
		MaximumSize:      cfg.MaximumSize,
		InitialCapacity:  cfg.InitialCapacity,
		ExpiryCalculator: expiryCalculator[authorizationKey[P], bool](cfg),
		StatsRecorder:    combineRecorders(a.counter, o.recorders),
	})

	log.Info().
		Int("maximum_size", cfg.MaximumSize).
		Dur("expire_after_write", cfg.ExpireAfterWrite).
		Dur("expire_after_access", cfg.ExpireAfterAccess).
		Msg("caching authorizer configured")

	return a, nil
}

func (a *CachingAuthorizer[P]) load(ctx context.Context, key authorizationKey[P]) (bool, error) {
	a.metrics.MarkCacheMiss(ctx)
	return a.underlying.Authorize(ctx, key.principal, key.role), nil
}

// Authorize reports whether principal holds role, consulting the cache
// first. For a missed principal/role pair, the underlying authorizer runs
// once for all concurrent callers of that pair.
func (a *CachingAuthorizer[P]) Authorize(ctx context.Context, principal P, role string) bool {
	start := time.Now()
	authorized, err := a.cache.Get(ctx, authorizationKey[P]{principal: principal, role: role}, a.loader)
	a.metrics.ObserveGet(ctx, time.Since(start))

	if err != nil {
		// The loader never fails; this is a cancelled or expired context.
		// Deny rather than guess.
		log.Warn().Err(err).Msg("authorization lookup aborted")
		return false
	}

	return authorized
}

// Invalidate discards every cached decision for the given principal.
func (a *CachingAuthorizer[P]) Invalidate(principal P) {
	a.InvalidateMatching(func(p P, _ string) bool { return p == principal })
}

// InvalidateKeys discards every cached decision for each of the given
// principals.
func (a *CachingAuthorizer[P]) InvalidateKeys(principals ...P) {
	set := make(map[P]struct{}, len(principals))
	for _, p := range principals {
		set[p] = struct{}{}
	}
	a.InvalidateMatching(func(p P, _ string) bool {
		_, ok := set[p]
		return ok
	})
}

// InvalidateMatching discards every cached decision whose principal and role
// satisfy the predicate. The key set is snapshotted before filtering, as for
// CachingAuthenticator.InvalidateMatching.
func (a *CachingAuthorizer[P]) InvalidateMatching(predicate func(principal P, role string) bool) {
	var matched []authorizationKey[P]
	for key := range a.cache.Keys() {
		if predicate(key.principal, key.role) {
			matched = append(matched, key)
		}
	}
	for _, key := range matched {
		a.cache.Invalidate(key)
	}
}

// InvalidateAll discards every cached decision.
func (a *CachingAuthorizer[P]) InvalidateAll() {
	a.cache.InvalidateAll()
}

// Size returns an estimate of the number of cached decisions.
func (a *CachingAuthorizer[P]) Size() int {
	return a.cache.EstimatedSize()
}

// Stats returns a snapshot of the cache's usage counters.
func (a *CachingAuthorizer[P]) Stats() CacheStats {
	return a.counter.snapshot()
}
