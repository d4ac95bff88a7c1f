package authcache

import (
	"sync/atomic"
	"time"

	"github.com/maypok86/otter/v2/stats"
)

// CacheStats is a read-only snapshot of a cache's usage counters. Counters
// accumulate for the lifetime of the cache and are never reset.
type CacheStats struct {
	// Hits is the number of lookups that returned a cached value.
	Hits uint64
	// Misses is the number of lookups that did not find a cached value.
	Misses uint64
	// LoadSuccesses is the number of loads that produced a cacheable result.
	LoadSuccesses uint64
	// LoadFailures is the number of loads that failed, including loads whose
	// negative result was suppressed from the cache.
	LoadFailures uint64
	// TotalLoadTime is the cumulative time spent executing loads.
	TotalLoadTime time.Duration
	// Evictions is the number of entries removed by the eviction policy.
	Evictions uint64
}

// Requests is the total number of lookups, hit or miss.
func (s CacheStats) Requests() uint64 {
	return s.Hits + s.Misses
}

// HitRatio is the fraction of lookups that were hits, or 0 when no lookups
// have been recorded.
func (s CacheStats) HitRatio() float64 {
	requests := s.Requests()
	if requests == 0 {
		return 0
	}
	return float64(s.Hits) / float64(requests)
}

// statsCounter accumulates cache statistics with lock-free atomic counters.
// It implements stats.Recorder and is installed as the cache's stats
// recorder, so it is updated by the cache itself on every lookup and load.
type statsCounter struct {
	hits          atomic.Uint64
	misses        atomic.Uint64
	loadSuccesses atomic.Uint64
	loadFailures  atomic.Uint64
	totalLoadTime atomic.Int64
	evictions     atomic.Uint64
}

var _ stats.Recorder = (*statsCounter)(nil)

func (c *statsCounter) RecordHits(count int) {
	c.hits.Add(uint64(count))
}

func (c *statsCounter) RecordMisses(count int) {
	c.misses.Add(uint64(count))
}

func (c *statsCounter) RecordLoadSuccess(loadTime time.Duration) {
	c.loadSuccesses.Add(1)
	c.totalLoadTime.Add(int64(loadTime))
}

func (c *statsCounter) RecordLoadFailure(loadTime time.Duration) {
	c.loadFailures.Add(1)
	c.totalLoadTime.Add(int64(loadTime))
}

func (c *statsCounter) RecordEviction(weight uint32) {
	c.evictions.Add(1)
}

func (c *statsCounter) snapshot() CacheStats {
	return CacheStats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		LoadSuccesses: c.loadSuccesses.Load(),
		LoadFailures:  c.loadFailures.Load(),
		TotalLoadTime: time.Duration(c.totalLoadTime.Load()),
		Evictions:     c.evictions.Load(),
	}
}

// teeRecorder forwards every statistics event to each of its sinks.
type teeRecorder struct {
	recorders []stats.Recorder
}

var _ stats.Recorder = (*teeRecorder)(nil)

func (t *teeRecorder) RecordHits(count int) {
	for _, r := range t.recorders {
		r.RecordHits(count)
	}
}

func (t *teeRecorder) RecordMisses(count int) {
	for _, r := range t.recorders {
		r.RecordMisses(count)
	}
}

func (t *teeRecorder) RecordLoadSuccess(loadTime time.Duration) {
	for _, r := range t.recorders {
		r.RecordLoadSuccess(loadTime)
	}
}

func (t *teeRecorder) RecordLoadFailure(loadTime time.Duration) {
	for _, r := range t.recorders {
		r.RecordLoadFailure(loadTime)
	}
}

func (t *teeRecorder) RecordEviction(weight uint32) {
	for _, r := range t.recorders {
		r.RecordEviction(weight)
	}
}

// combineRecorders builds the recorder installed into the cache: the internal
// counter always records, with any additional sinks teed in after it.
func combineRecorders(counter *statsCounter, extra []stats.Recorder) stats.Recorder {
	if len(extra) == 0 {
		return counter
	}
	recorders := make([]stats.Recorder, 0, len(extra)+1)
	recorders = append(recorders, counter)
	recorders = append(recorders, extra...)
	return &teeRecorder{recorders: recorders}
}
