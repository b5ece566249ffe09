package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpChannel is the subset of *amqp.Channel used by AMQPBroker.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Confirm(noWait bool) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// amqpConnection is the subset of *amqp.Connection used by AMQPBroker.
type amqpConnection interface {
	Channel() (amqpChannel, error)
	NotifyClose(receiver chan *amqp.Error) chan *amqp.Error
	IsClosed() bool
	Close() error
}

type dialedConnection struct {
	*amqp.Connection
}

func (c dialedConnection) Channel() (amqpChannel, error) {
	return c.Connection.Channel()
}

// AMQPConfig holds the AMQPBroker settings.
type AMQPConfig struct {
	URL            string
	Heartbeat      time.Duration
	PublishTimeout time.Duration
	Prefetch       int
}

// AMQPBroker is a Broker over a single long-lived RabbitMQ connection. Publishes
// share one confirm-mode channel guarded by a mutex; each consumer gets its own channel.
type AMQPBroker struct {
	conn   amqpConnection
	cfg    AMQPConfig
	logger *slog.Logger

	mu        sync.Mutex
	pubCh     amqpChannel
	confirms  chan amqp.Confirmation
	published uint64

	closeCh chan error
}

// DialAMQP connects to RabbitMQ.
func DialAMQP(cfg AMQPConfig, logger *slog.Logger) (*AMQPBroker, error) {
	conn, err := amqp.DialConfig(cfg.URL, amqp.Config{
		Heartbeat: cfg.Heartbeat,
		Locale:    "en_US",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	return newAMQPBroker(dialedConnection{conn}, cfg, logger), nil
}

func newAMQPBroker(conn amqpConnection, cfg AMQPConfig, logger *slog.Logger) *AMQPBroker {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	b := &AMQPBroker{
		conn:    conn,
		cfg:     cfg,
		logger:  logger,
		closeCh: make(chan error, 1),
	}

	lost := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		defer close(b.closeCh)
		amqpErr, ok := <-lost
		if !ok || amqpErr == nil {
			return
		}
		b.logger.Error("rabbitmq connection lost",
			slog.Int("code", amqpErr.Code),
			slog.String("reason", amqpErr.Reason),
		)
		b.closeCh <- fmt.Errorf("%w: %s", ErrConnectionLost, amqpErr.Error())
	}()
	return b
}

// DeclareTopology declares durable topic exchanges, durable queues and their bindings.
// RabbitMQ treats redeclaration with identical arguments as a no-op.
func (b *AMQPBroker) DeclareTopology(ctx context.Context, topology Topology) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() {
		_ = ch.Close()
	}()

	for _, name := range topology.Exchanges {
		if err := ch.ExchangeDeclare(name, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", name, err)
		}
	}
	for _, name := range topology.Queues {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", name, err)
		}
	}
	for _, binding := range topology.Bindings {
		if err := ch.QueueBind(binding.Queue, binding.Pattern, binding.Exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s to %s: %w", binding.Queue, binding.Exchange, err)
		}
	}
	return nil
}

// publishChannel returns the confirm-mode publishing channel, opening it on first use
// or after a previous failure. Callers must hold b.mu.
func (b *AMQPBroker) publishChannel() (amqpChannel, error) {
	if b.pubCh != nil {
		return b.pubCh, nil
	}
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to put channel in confirm mode: %w", err)
	}
	b.pubCh = ch
	b.confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	b.published = 0
	return ch, nil
}

func (b *AMQPBroker) resetPublishChannel() {
	if b.pubCh != nil {
		_ = b.pubCh.Close()
	}
	b.pubCh = nil
	b.confirms = nil
}

// Publish sends a persistent JSON message and waits for the broker confirmation.
func (b *AMQPBroker) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	if b.conn.IsClosed() {
		return ErrConnectionLost
	}
	if b.cfg.PublishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.PublishTimeout)
		defer cancel()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ch, err := b.publishChannel()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		b.resetPublishChannel()
		return fmt.Errorf("failed to publish message: %w", err)
	}
	b.published++

	// Confirmations arrive in delivery tag order.
	for {
		select {
		case confirm, ok := <-b.confirms:
			if !ok {
				b.resetPublishChannel()
				return errors.New("confirmation channel closed")
			}
			if confirm.DeliveryTag < b.published {
				continue
			}
			if !confirm.Ack {
				return errors.New("broker rejected message")
			}
			return nil
		case <-ctx.Done():
			b.resetPublishChannel()
			return fmt.Errorf("publish confirmation timed out: %w", ctx.Err())
		}
	}
}

// Consume opens a dedicated channel with the configured prefetch and manual acknowledgement.
func (b *AMQPBroker) Consume(ctx context.Context, queue string) (<-chan Delivery, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.Qos(b.cfg.Prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to register consumer on %s: %w", queue, err)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		defer func() {
			_ = ch.Close()
		}()
		for {
			select {
			case d, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- amqpDelivery{d}:
				case <-ctx.Done():
					_ = d.Nack(false, true)
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// NotifyClose yields ErrConnectionLost when the connection drops.
func (b *AMQPBroker) NotifyClose() <-chan error {
	return b.closeCh
}

// IsConnected reports whether the connection is open.
func (b *AMQPBroker) IsConnected() bool {
	return !b.conn.IsClosed()
}

// Close releases the publishing channel and the connection.
func (b *AMQPBroker) Close() error {
	b.mu.Lock()
	b.resetPublishChannel()
	b.mu.Unlock()

	if b.conn.IsClosed() {
		return nil
	}
	if err := b.conn.Close(); err != nil {
		return fmt.Errorf("failed to close rabbitmq connection: %w", err)
	}
	return nil
}

type amqpDelivery struct {
	d amqp.Delivery
}

func (a amqpDelivery) Body() []byte       { return a.d.Body }
func (a amqpDelivery) RoutingKey() string { return a.d.RoutingKey }
func (a amqpDelivery) Ack() error         { return a.d.Ack(false) }

func (a amqpDelivery) Nack(requeue bool) error {
	return a.d.Nack(false, requeue)
}
