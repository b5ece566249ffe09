package events

import (
	"context"
	"log/slog"

	"github.com/allisson/storefront/internal/metrics"
)

const (
	stagePublish = "publish"
	stageConsume = "consume"
)

// Publisher encodes domain events and hands them to the broker.
//
// Publishing is fire-and-forget for callers: a failed publish is logged as a lost
// event and reported through the return value, but never returned as an error,
// so a broker outage cannot fail a mutation that was already durably written.
// There is no local retry queue; on broker failure delivery is at-most-once.
type Publisher struct {
	broker  Broker
	logger  *slog.Logger
	metrics metrics.EventMetrics
}

// NewPublisher creates a Publisher. eventMetrics may be nil.
func NewPublisher(broker Broker, logger *slog.Logger, eventMetrics metrics.EventMetrics) *Publisher {
	if eventMetrics == nil {
		eventMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &Publisher{broker: broker, logger: logger, metrics: eventMetrics}
}

// Publish reports whether the broker accepted the event.
func (p *Publisher) Publish(ctx context.Context, exchange, routingKey string, event Event) bool {
	body, err := Encode(event)
	if err != nil {
		p.logger.Error("event lost: encode failed",
			slog.String("exchange", exchange),
			slog.String("routing_key", routingKey),
			slog.Any("error", err),
		)
		p.metrics.RecordEvent(ctx, stagePublish, exchange, metrics.StatusError)
		return false
	}

	if err := p.broker.Publish(ctx, exchange, routingKey, body); err != nil {
		p.logger.Error("event lost: publish failed",
			slog.String("exchange", exchange),
			slog.String("routing_key", routingKey),
			slog.String("event_type", string(event.EventType())),
			slog.Any("error", err),
		)
		p.metrics.RecordEvent(ctx, stagePublish, exchange, metrics.StatusError)
		return false
	}

	p.logger.Info("event published",
		slog.String("exchange", exchange),
		slog.String("routing_key", routingKey),
		slog.String("event_type", string(event.EventType())),
	)
	p.metrics.RecordEvent(ctx, stagePublish, exchange, metrics.StatusSuccess)
	return true
}
