package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Cache event labels recorded by RecordCacheEvent.
const (
	CacheEventHit        = "hit"
	CacheEventMiss       = "miss"
	CacheEventEviction   = "eviction"
	CacheEventExpiration = "expiration"
	CacheEventBump       = "bump"
)

// BusinessMetrics defines the interface for recording key service metrics.
type BusinessMetrics interface {
	// RecordOperation records a key service operation with its status.
	// Operation examples: "init_db", "open_db", "encrypt", "decrypt"
	// Status examples: "success", "error"
	RecordOperation(ctx context.Context, operation, status string)

	// RecordDuration records the duration of a key service operation with its status.
	// Duration is recorded in seconds as a histogram for percentile calculations.
	RecordDuration(ctx context.Context, operation string, duration time.Duration, status string)

	// RecordCacheEvent records a key cache event (hit, miss, eviction,
	// expiration, bump).
	RecordCacheEvent(ctx context.Context, event string)

	// RecordCacheSize records the current number of cached entries.
	RecordCacheSize(ctx context.Context, size int64)
}

// businessMetrics implements BusinessMetrics using OpenTelemetry metrics.
type businessMetrics struct {
	operationCounter  metric.Int64Counter
	durationHisto     metric.Float64Histogram
	cacheEventCounter metric.Int64Counter
	cacheSizeGauge    metric.Int64Gauge
}

// NewBusinessMetrics creates a new BusinessMetrics implementation using the provided meter provider.
// The namespace parameter is used as a prefix for all metric names (e.g., "aegis").
// Returns error if meters cannot be initialized.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operationCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of key service operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of key service operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	cacheEventCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_cache_events_total", namespace),
		metric.WithDescription("Total number of key cache events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache event counter: %w", err)
	}

	cacheSizeGauge, err := meter.Int64Gauge(
		fmt.Sprintf("%s_cache_entries", namespace),
		metric.WithDescription("Current number of entries in the key cache"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache size gauge: %w", err)
	}

	return &businessMetrics{
		operationCounter:  operationCounter,
		durationHisto:     durationHisto,
		cacheEventCounter: cacheEventCounter,
		cacheSizeGauge:    cacheSizeGauge,
	}, nil
}

// RecordOperation increments the operation counter with operation and status labels.
func (b *businessMetrics) RecordOperation(ctx context.Context, operation, status string) {
	b.operationCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordDuration records the operation duration in seconds with operation and status labels.
func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	operation string,
	duration time.Duration,
	status string,
) {
	b.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordCacheEvent increments the cache event counter with the event label.
func (b *businessMetrics) RecordCacheEvent(ctx context.Context, event string) {
	b.cacheEventCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("event", event)),
	)
}

// RecordCacheSize records the current cache size.
func (b *businessMetrics) RecordCacheSize(ctx context.Context, size int64) {
	b.cacheSizeGauge.Record(ctx, size)
}
