package events

import (
	"context"
	"errors"
)

var (
	// ErrConnectionLost is surfaced when the broker connection drops while consuming.
	ErrConnectionLost = errors.New("broker connection lost")

	// ErrBrokerClosed is returned by operations on a broker that was closed.
	ErrBrokerClosed = errors.New("broker closed")
)

// Delivery is a single message handed to a consumer.
type Delivery interface {
	Body() []byte
	RoutingKey() string
	Ack() error
	// Nack rejects the message; with requeue false the broker drops it.
	Nack(requeue bool) error
}

// Broker is the topic-routed transport behind the event bus. Implementations are
// long lived and safe for concurrent use.
type Broker interface {
	DeclareTopology(ctx context.Context, topology Topology) error
	// Publish returns nil once the broker has accepted a persistent message.
	Publish(ctx context.Context, exchange, routingKey string, body []byte) error
	// Consume starts delivering messages from queue with manual acknowledgement.
	// The channel is closed when ctx ends or the connection is lost.
	Consume(ctx context.Context, queue string) (<-chan Delivery, error)
	// NotifyClose yields the error that ended the connection. It is closed without a
	// value on a graceful Close.
	NotifyClose() <-chan error
	IsConnected() bool
	Close() error
}
