package authcache

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	metricsOnce sync.Once
	cacheMisses metric.Int64Counter
	getDuration metric.Float64Histogram
)

func initMetrics() {
	metricsOnce.Do(func() {
		meter := otel.Meter("github.com/dermot-hardy/authcache")

		var err error
		cacheMisses, err = meter.Int64Counter(
			"auth.cache.misses",
			metric.WithDescription("Executions of the underlying authenticator or authorizer"),
		)
		if err != nil {
			otel.Handle(err)
		}

		getDuration, err = meter.Float64Histogram(
			"auth.cache.get.duration",
			metric.WithDescription("Cache lookup duration, hit or miss"),
			metric.WithUnit("s"),
		)
		if err != nil {
			otel.Handle(err)
		}
	})
}

// Metrics receives a caching decorator's instrumentation events: one cache
// miss per execution of the underlying loader, and the latency of every
// lookup whether it hits or misses.
type Metrics interface {
	MarkCacheMiss(ctx context.Context)
	ObserveGet(ctx context.Context, elapsed time.Duration)
}

// OTelMetrics records decorator metrics through the global OpenTelemetry
// meter provider. Without a configured provider it is effectively a no-op.
type OTelMetrics struct {
	cacheName string
}

// NewOTelMetrics creates a recorder tagging its metrics with the given cache
// name.
func NewOTelMetrics(cacheName string) *OTelMetrics {
	initMetrics()
	return &OTelMetrics{cacheName: cacheName}
}

func (m *OTelMetrics) MarkCacheMiss(ctx context.Context) {
	if cacheMisses == nil {
		return
	}
	cacheMisses.Add(ctx, 1,
		metric.WithAttributes(attribute.String("cache.name", m.cacheName)),
	)
}

func (m *OTelMetrics) ObserveGet(ctx context.Context, elapsed time.Duration) {
	if getDuration == nil {
		return
	}
	getDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("cache.name", m.cacheName)),
	)
}

// NoopMetrics discards every event.
type NoopMetrics struct{}

func (NoopMetrics) MarkCacheMiss(context.Context)             {}
func (NoopMetrics) ObserveGet(context.Context, time.Duration) {}
