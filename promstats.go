package authcache

import (
	"time"

	"github.com/maypok86/otter/v2/stats"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder publishes cache statistics as Prometheus counters. It
// implements both stats.Recorder and prometheus.Collector: pass it to a
// decorator via WithStatsRecorder and register it with a
// prometheus.Registerer.
type PrometheusRecorder struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	loadSuccesses prometheus.Counter
	loadFailures  prometheus.Counter
	loadSeconds   prometheus.Counter
	evictions     prometheus.Counter
}

var (
	_ stats.Recorder       = (*PrometheusRecorder)(nil)
	_ prometheus.Collector = (*PrometheusRecorder)(nil)
)

// NewPrometheusRecorder creates a recorder whose counters are named
// <namespace>_auth_cache_*.
func NewPrometheusRecorder(namespace string) *PrometheusRecorder {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}

	return &PrometheusRecorder{
		hits:          counter("auth_cache_hits_total", "Total number of authentication cache hits"),
		misses:        counter("auth_cache_misses_total", "Total number of authentication cache misses"),
		loadSuccesses: counter("auth_cache_load_successes_total", "Total number of successful cache loads"),
		loadFailures:  counter("auth_cache_load_failures_total", "Total number of failed cache loads"),
		loadSeconds:   counter("auth_cache_load_seconds_total", "Total time spent loading cache entries"),
		evictions:     counter("auth_cache_evictions_total", "Total number of cache evictions"),
	}
}

func (r *PrometheusRecorder) RecordHits(count int) {
	r.hits.Add(float64(count))
}

func (r *PrometheusRecorder) RecordMisses(count int) {
	r.misses.Add(float64(count))
}

func (r *PrometheusRecorder) RecordLoadSuccess(loadTime time.Duration) {
	r.loadSuccesses.Inc()
	r.loadSeconds.Add(loadTime.Seconds())
}

func (r *PrometheusRecorder) RecordLoadFailure(loadTime time.Duration) {
	r.loadFailures.Inc()
	r.loadSeconds.Add(loadTime.Seconds())
}

func (r *PrometheusRecorder) RecordEviction(weight uint32) {
	r.evictions.Inc()
}

func (r *PrometheusRecorder) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range r.counters() {
		c.Describe(ch)
	}
}

func (r *PrometheusRecorder) Collect(ch chan<- prometheus.Metric) {
	for _, c := range r.counters() {
		c.Collect(ch)
	}
}

func (r *PrometheusRecorder) counters() []prometheus.Counter {
	return []prometheus.Counter{
		r.hits, r.misses, r.loadSuccesses, r.loadFailures, r.loadSeconds, r.evictions,
	}
}
