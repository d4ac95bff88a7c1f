package authcache

import (
	"context"
	"errors"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/maypok86/otter/v2/stats"
	"github.com/rs/zerolog/log"
)

// cachedPrincipal is the cache entry value: a principal plus whether the
// credentials resolved to one. Entries with found=false exist only when
// negative caching is enabled.
type cachedPrincipal[P any] struct {
	principal P
	found     bool
}

// CachingAuthenticator decorates an Authenticator with a bounded in-memory
// cache, so repeated authentication of the same credentials skips the
// underlying authenticator until the entry expires or is invalidated.
//
// Lookups are single-flight: for any credential key, at most one execution of
// the underlying authenticator is in flight at a time, and every concurrent
// caller for that key waits for and shares its outcome. Callers for distinct
// keys do not contend.
//
// Unknown credentials are cached only when CacheConfig.CacheNegativeResults
// is set; errors from the underlying authenticator are never cached, so a
// later call for the same credentials retries the backend.
type CachingAuthenticator[C comparable, P any] struct {
	cache      *otter.Cache[C, cachedPrincipal[P]]
	underlying Authenticator[C, P]
	loader     otter.LoaderFunc[C, cachedPrincipal[P]]
	counter    *statsCounter
	metrics    Metrics
}

// Option configures the optional collaborators of a caching decorator.
type Option func(*options)

type options struct {
	recorders []stats.Recorder
	metrics   Metrics
}

// WithStatsRecorder registers an additional statistics sink. Every cache
// event is forwarded to each registered recorder as well as to the internal
// counters behind Stats.
func WithStatsRecorder(r stats.Recorder) Option {
	return func(o *options) { o.recorders = append(o.recorders, r) }
}

// WithMetrics replaces the default OpenTelemetry miss meter and lookup timer.
func WithMetrics(m Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func applyOptions(cacheName string, opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = NewOTelMetrics(cacheName)
	}
	return o
}

// NewCachingAuthenticator builds a caching decorator around underlying with
// the supplied cache bounds.
func NewCachingAuthenticator[C comparable, P any](
	underlying Authenticator[C, P],
	cfg CacheConfig,
	opts ...Option,
) (*CachingAuthenticator[C, P], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := applyOptions("authenticator", opts)

	a := &CachingAuthenticator[C, P]{
		underlying: underlying,
		counter:    &statsCounter{},
		metrics:    o.metrics,
	}

	a.loader = a.load
	if !cfg.CacheNegativeResults {
		a.loader = a.loadSuppressingNegative
	}

	a.cache = otter.Must(&otter.Options[C, cachedPrincipal[P]]{
		MaximumSize:      cfg.MaximumSize,
		InitialCapacity:  cfg.InitialCapacity,
		ExpiryCalculator: expiryCalculator[C, cachedPrincipal[P]](cfg),
		StatsRecorder:    combineRecorders(a.counter, o.recorders),
	})

	log.Info().
		Int("maximum_size", cfg.MaximumSize).
		Dur("expire_after_write", cfg.ExpireAfterWrite).
		Dur("expire_after_access", cfg.ExpireAfterAccess).
		Bool("cache_negative_results", cfg.CacheNegativeResults).
		Msg("caching authenticator configured")

	return a, nil
}

// load executes the underlying authenticator for a missed key. Negative
// outcomes are cached alongside positive ones.
func (a *CachingAuthenticator[C, P]) load(ctx context.Context, credentials C) (cachedPrincipal[P], error) {
	a.metrics.MarkCacheMiss(ctx)

	principal, found, err := a.underlying.Authenticate(ctx, credentials)
	if err != nil {
		log.Warn().Err(err).Msg("underlying authenticator failed")
		return cachedPrincipal[P]{}, err
	}

	return cachedPrincipal[P]{principal: principal, found: found}, nil
}

// loadSuppressingNegative is the default loader: unknown credentials are
// signalled with errInvalidCredentials so the cache stores nothing for them.
func (a *CachingAuthenticator[C, P]) loadSuppressingNegative(ctx context.Context, credentials C) (cachedPrincipal[P], error) {
	entry, err := a.load(ctx, credentials)
	if err != nil {
		return entry, err
	}
	if !entry.found {
		return cachedPrincipal[P]{}, errInvalidCredentials
	}
	return entry, nil
}

// Authenticate resolves credentials to a principal, consulting the cache
// first. On a miss, the underlying authenticator runs once for all concurrent
// callers of the same credentials. A false result with a nil error means the
// credentials are unknown; a non-nil error is always an *AuthenticationError
// carrying the underlying cause.
func (a *CachingAuthenticator[C, P]) Authenticate(ctx context.Context, credentials C) (P, bool, error) {
	start := time.Now()
	entry, err := a.cache.Get(ctx, credentials, a.loader)
	a.metrics.ObserveGet(ctx, time.Since(start))

	if err != nil {
		var zero P
		if errors.Is(err, errInvalidCredentials) {
			return zero, false, nil
		}
		return zero, false, wrapAuthenticationError(err)
	}

	return entry.principal, entry.found, nil
}

// Invalidate discards the cached result for the given credentials, if any.
// An in-flight load for the same key is unaffected and may repopulate the
// entry when it completes.
func (a *CachingAuthenticator[C, P]) Invalidate(credentials C) {
	a.cache.Invalidate(credentials)
}

// InvalidateKeys discards the cached results for each of the given
// credentials.
func (a *CachingAuthenticator[C, P]) InvalidateKeys(credentials ...C) {
	for _, c := range credentials {
		a.cache.Invalidate(c)
	}
}

// InvalidateMatching discards every cached result whose credentials satisfy
// the predicate. The key set is snapshotted before filtering: keys inserted
// while the scan runs may be missed, but every key present at snapshot time
// and matching the predicate is removed.
func (a *CachingAuthenticator[C, P]) InvalidateMatching(predicate func(credentials C) bool) {
	var matched []C
	for key := range a.cache.Keys() {
		if predicate(key) {
			matched = append(matched, key)
		}
	}
	for _, key := range matched {
		a.cache.Invalidate(key)
	}
}

// InvalidateAll discards every cached result.
func (a *CachingAuthenticator[C, P]) InvalidateAll() {
	a.cache.InvalidateAll()
}

// Size returns an estimate of the number of cached entries. The underlying
// cache maintains its bookkeeping asynchronously, so the value is
// approximate, not exact.
func (a *CachingAuthenticator[C, P]) Size() int {
	return a.cache.EstimatedSize()
}

// Stats returns a snapshot of the cache's usage counters.
func (a *CachingAuthenticator[C, P]) Stats() CacheStats {
	return a.counter.snapshot()
}
