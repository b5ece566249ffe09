package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Status labels shared by the recorders.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// BusinessMetrics records use case calls. Domains are "auth", "user", "product" and
// "cart"; operations are the use case method names in snake case.
type BusinessMetrics interface {
	RecordOperation(ctx context.Context, domain, operation, status string)
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)
}

// CacheMetrics records cache-aside activity per keyspace ("user", "cart", "product",
// "products"). Results are hit, miss, error and decode_error for reads and
// success or error for writes and invalidations.
type CacheMetrics interface {
	RecordCache(ctx context.Context, keyspace, operation, result string)
}

// EventMetrics records the event bus. stage is "publish" or "consume", destination
// the exchange or queue, and outcome one of success, error, ack or reject.
type EventMetrics interface {
	RecordEvent(ctx context.Context, stage, destination, outcome string)
	RecordHandling(ctx context.Context, queue string, duration time.Duration, outcome string)
}

// Recorder is the full set of storefront recorders.
type Recorder interface {
	BusinessMetrics
	CacheMetrics
	EventMetrics
}

type otelRecorder struct {
	operations    metric.Int64Counter
	operationTime metric.Float64Histogram
	cacheOps      metric.Int64Counter
	events        metric.Int64Counter
	handlingTime  metric.Float64Histogram
}

// NewBusinessMetrics creates a Recorder on meterProvider. Instrument names are
// prefixed with namespace, e.g. storefront_cache_operations_total.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (Recorder, error) {
	meter := meterProvider.Meter(namespace)
	r := &otelRecorder{}
	var err error

	if r.operations, err = meter.Int64Counter(
		namespace+"_operations_total",
		metric.WithDescription("Use case calls by domain, operation and status"),
		metric.WithUnit("{operation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	if r.operationTime, err = meter.Float64Histogram(
		namespace+"_operation_duration_seconds",
		metric.WithDescription("Use case call duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	if r.cacheOps, err = meter.Int64Counter(
		namespace+"_cache_operations_total",
		metric.WithDescription("Cache reads, writes and invalidations by keyspace and result"),
		metric.WithUnit("{operation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cache counter: %w", err)
	}

	if r.events, err = meter.Int64Counter(
		namespace+"_events_total",
		metric.WithDescription("Published and consumed domain events by destination and outcome"),
		metric.WithUnit("{event}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create event counter: %w", err)
	}

	if r.handlingTime, err = meter.Float64Histogram(
		namespace+"_event_handling_duration_seconds",
		metric.WithDescription("Time spent handling one delivery in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create event handling histogram: %w", err)
	}

	return r, nil
}

func (r *otelRecorder) RecordOperation(ctx context.Context, domain, operation, status string) {
	r.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

func (r *otelRecorder) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	r.operationTime.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

func (r *otelRecorder) RecordCache(ctx context.Context, keyspace, operation, result string) {
	r.cacheOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("keyspace", keyspace),
		attribute.String("operation", operation),
		attribute.String("result", result),
	))
}

func (r *otelRecorder) RecordEvent(ctx context.Context, stage, destination, outcome string) {
	r.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("destination", destination),
		attribute.String("outcome", outcome),
	))
}

func (r *otelRecorder) RecordHandling(ctx context.Context, queue string, duration time.Duration, outcome string) {
	r.handlingTime.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("queue", queue),
		attribute.String("outcome", outcome),
	))
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a Recorder that discards everything.
func NewNoOpBusinessMetrics() *NoOpBusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (*NoOpBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (*NoOpBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}

func (*NoOpBusinessMetrics) RecordCache(context.Context, string, string, string) {}

func (*NoOpBusinessMetrics) RecordEvent(context.Context, string, string, string) {}

func (*NoOpBusinessMetrics) RecordHandling(context.Context, string, time.Duration, string) {}
