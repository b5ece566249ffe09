package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type memoryMessage struct {
	routingKey string
	body       []byte
}

type memoryQueue struct {
	mu       sync.Mutex
	messages []memoryMessage
	signal   chan struct{}
	acked    int
	rejected int
}

func newMemoryQueue() *memoryQueue {
	return &memoryQueue{signal: make(chan struct{}, 1)}
}

func (q *memoryQueue) push(msg memoryMessage, front bool) {
	q.mu.Lock()
	if front {
		q.messages = append([]memoryMessage{msg}, q.messages...)
	} else {
		q.messages = append(q.messages, msg)
	}
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *memoryQueue) pop() (memoryMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.messages) == 0 {
		return memoryMessage{}, false
	}
	msg := q.messages[0]
	q.messages = q.messages[1:]
	return msg, true
}

// MemoryBroker is an in-process Broker with AMQP topic semantics. Messages routed
// to no queue are dropped, as an AMQP exchange does for non-mandatory publishes.
// It backs BROKER_DRIVER=memory for single-process deployments and tests.
type MemoryBroker struct {
	mu        sync.Mutex
	exchanges map[string]bool
	queues    map[string]*memoryQueue
	bindings  []Binding
	done      chan struct{}
	closeCh   chan error
	closed    bool
}

// NewMemoryBroker creates an empty broker; declare a topology before publishing.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		exchanges: make(map[string]bool),
		queues:    make(map[string]*memoryQueue),
		done:      make(chan struct{}),
		closeCh:   make(chan error, 1),
	}
}

// DeclareTopology registers exchanges, queues and bindings. Redeclaring is a no-op.
func (b *MemoryBroker) DeclareTopology(ctx context.Context, topology Topology) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBrokerClosed
	}

	for _, name := range topology.Exchanges {
		b.exchanges[name] = true
	}
	for _, name := range topology.Queues {
		if _, ok := b.queues[name]; !ok {
			b.queues[name] = newMemoryQueue()
		}
	}
	for _, binding := range topology.Bindings {
		if !b.exchanges[binding.Exchange] {
			return fmt.Errorf("failed to bind queue %s: exchange %s not declared", binding.Queue, binding.Exchange)
		}
		if _, ok := b.queues[binding.Queue]; !ok {
			return fmt.Errorf("failed to bind queue %s: queue not declared", binding.Queue)
		}
		if !b.hasBinding(binding) {
			b.bindings = append(b.bindings, binding)
		}
	}
	return nil
}

func (b *MemoryBroker) hasBinding(binding Binding) bool {
	for _, existing := range b.bindings {
		if existing == binding {
			return true
		}
	}
	return false
}

// Publish routes body to every queue bound to exchange with a matching pattern.
func (b *MemoryBroker) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBrokerClosed
	}
	if !b.exchanges[exchange] {
		b.mu.Unlock()
		return fmt.Errorf("failed to publish: exchange %s not declared", exchange)
	}
	var targets []*memoryQueue
	seen := make(map[string]bool)
	for _, binding := range b.bindings {
		if binding.Exchange == exchange && !seen[binding.Queue] && MatchTopic(binding.Pattern, routingKey) {
			seen[binding.Queue] = true
			targets = append(targets, b.queues[binding.Queue])
		}
	}
	b.mu.Unlock()

	payload := append([]byte(nil), body...)
	for _, q := range targets {
		q.push(memoryMessage{routingKey: routingKey, body: payload}, false)
	}
	return nil
}

// Consume delivers the queue's messages one at a time; the next message is only
// handed out after the previous one was acknowledged or rejected.
func (b *MemoryBroker) Consume(ctx context.Context, queue string) (<-chan Delivery, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBrokerClosed
	}
	q, ok := b.queues[queue]
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("failed to consume: queue %s not declared", queue)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			msg, ok := q.pop()
			if !ok {
				select {
				case <-q.signal:
					continue
				case <-ctx.Done():
					return
				case <-b.done:
					return
				}
			}

			settled := make(chan struct{})
			d := &memoryDelivery{queue: q, msg: msg, settled: settled}
			select {
			case out <- d:
			case <-ctx.Done():
				q.push(msg, true)
				return
			case <-b.done:
				return
			}

			select {
			case <-settled:
			case <-ctx.Done():
				return
			case <-b.done:
				return
			}
		}
	}()
	return out, nil
}

// NotifyClose yields the error passed to Disconnect.
func (b *MemoryBroker) NotifyClose() <-chan error {
	return b.closeCh
}

// IsConnected reports whether the broker is still open.
func (b *MemoryBroker) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed
}

// Disconnect closes the broker as if the connection had dropped with reason.
func (b *MemoryBroker) Disconnect(reason error) {
	b.shutdown(reason)
}

// Close shuts the broker down gracefully.
func (b *MemoryBroker) Close() error {
	b.shutdown(nil)
	return nil
}

func (b *MemoryBroker) shutdown(reason error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
	if reason != nil {
		b.closeCh <- reason
	}
	close(b.closeCh)
}

// Pending returns the number of messages waiting in queue.
func (b *MemoryBroker) Pending(queue string) int {
	b.mu.Lock()
	q, ok := b.queues[queue]
	b.mu.Unlock()
	if !ok {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

// Settled returns how many deliveries from queue were acknowledged and rejected.
func (b *MemoryBroker) Settled(queue string) (acked, rejected int) {
	b.mu.Lock()
	q, ok := b.queues[queue]
	b.mu.Unlock()
	if !ok {
		return 0, 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.acked, q.rejected
}

var errAlreadySettled = errors.New("delivery already settled")

type memoryDelivery struct {
	queue   *memoryQueue
	msg     memoryMessage
	settled chan struct{}
	once    sync.Once
}

func (d *memoryDelivery) Body() []byte       { return d.msg.body }
func (d *memoryDelivery) RoutingKey() string { return d.msg.routingKey }

func (d *memoryDelivery) Ack() error {
	return d.settle(func() {
		d.queue.mu.Lock()
		d.queue.acked++
		d.queue.mu.Unlock()
	})
}

func (d *memoryDelivery) Nack(requeue bool) error {
	if requeue {
		return d.settle(func() { d.queue.push(d.msg, true) })
	}
	return d.settle(func() {
		d.queue.mu.Lock()
		d.queue.rejected++
		d.queue.mu.Unlock()
	})
}

func (d *memoryDelivery) settle(apply func()) error {
	first := false
	d.once.Do(func() {
		first = true
		apply()
		close(d.settled)
	})
	if !first {
		return errAlreadySettled
	}
	return nil
}
