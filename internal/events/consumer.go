package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/storefront/internal/metrics"
)

// Handler performs the side effect for one decoded event. Returning an error
// rejects the delivery.
type Handler func(ctx context.Context, event Event) error

// DeadLetterRecorder keeps a copy of rejected deliveries for inspection.
type DeadLetterRecorder interface {
	Record(ctx context.Context, queue, routingKey string, payload []byte, cause error) error
}

const (
	outcomeAck    = "ack"
	outcomeReject = "reject"
)

// Consumer drains queues and dispatches each delivery to a Handler.
//
// A delivery is acknowledged once its handler succeeds. Undecodable payloads and
// handler failures are rejected without requeue, so the broker drops them and the
// side effect for that message is skipped for good. When a DeadLetterRecorder is
// configured a copy is kept before the rejection.
type Consumer struct {
	broker   Broker
	logger   *slog.Logger
	recorder DeadLetterRecorder
	metrics  metrics.EventMetrics
}

// NewConsumer creates a Consumer. recorder and eventMetrics may be nil.
func NewConsumer(
	broker Broker,
	logger *slog.Logger,
	recorder DeadLetterRecorder,
	eventMetrics metrics.EventMetrics,
) *Consumer {
	if eventMetrics == nil {
		eventMetrics = metrics.NewNoOpBusinessMetrics()
	}
	return &Consumer{broker: broker, logger: logger, recorder: recorder, metrics: eventMetrics}
}

// Subscribe consumes queue until ctx is cancelled, returning nil, or until the
// delivery stream ends while ctx is still live, returning ErrConnectionLost.
// Deliveries are handled one at a time in queue order.
func (c *Consumer) Subscribe(ctx context.Context, queue string, handler Handler) error {
	deliveries, err := c.broker.Consume(ctx, queue)
	if err != nil {
		return err
	}

	c.logger.Info("consuming queue", slog.String("queue", queue))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.Error("delivery stream closed", slog.String("queue", queue))
				return ErrConnectionLost
			}
			c.handle(ctx, queue, d, handler)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, queue string, d Delivery, handler Handler) {
	start := time.Now()
	outcome := c.process(ctx, queue, d, handler)
	c.metrics.RecordEvent(ctx, stageConsume, queue, outcome)
	c.metrics.RecordHandling(ctx, queue, time.Since(start), outcome)
}

// process settles one delivery and returns "ack", "reject" or "error" when the
// settlement itself failed.
func (c *Consumer) process(ctx context.Context, queue string, d Delivery, handler Handler) string {
	event, err := Decode(d.Body())
	if err != nil {
		return c.reject(ctx, queue, d, err, "decode failed")
	}

	if err := handler(ctx, event); err != nil {
		return c.reject(ctx, queue, d, err, "handler failed")
	}

	if err := d.Ack(); err != nil {
		c.logger.Error("failed to acknowledge delivery",
			slog.String("queue", queue),
			slog.Any("error", err),
		)
		return metrics.StatusError
	}
	return outcomeAck
}

func (c *Consumer) reject(ctx context.Context, queue string, d Delivery, cause error, reason string) string {
	c.logger.Error("message rejected without requeue: "+reason,
		slog.String("queue", queue),
		slog.String("routing_key", d.RoutingKey()),
		slog.Any("error", cause),
	)

	if c.recorder != nil {
		if err := c.recorder.Record(ctx, queue, d.RoutingKey(), d.Body(), cause); err != nil {
			c.logger.Error("failed to record dead letter", slog.String("queue", queue), slog.Any("error", err))
		}
	}

	if err := d.Nack(false); err != nil {
		c.logger.Error("failed to reject delivery", slog.String("queue", queue), slog.Any("error", err))
		return metrics.StatusError
	}
	return outcomeReject
}
