package events

import (
	"strings"
)

// Exchanges, one per domain.
const (
	ExchangeIdentity = "identity.events"
	ExchangeCart     = "cart.events"
	ExchangeCatalog  = "catalog.events"
)

// Queues, one per consumer group.
const (
	QueueNotificationsUser    = "notifications.user"
	QueueNotificationsCart    = "notifications.cart"
	QueueNotificationsProduct = "notifications.product"
)

// Routing keys.
const (
	RoutingKeyUserRegistered = "user.registered"
	RoutingKeyCartClear      = "cart.clear"
)

// CartRoutingKey returns "cart.add", "cart.remove" or "cart.update".
func CartRoutingKey(action CartAction) string {
	return "cart." + strings.ToLower(string(action))
}

// ProductRoutingKey returns "product.created", "product.updated" or "product.deleted".
func ProductRoutingKey(action ProductAction) string {
	return "product." + strings.ToLower(string(action)) + "d"
}

// Binding attaches a queue to an exchange for the routing keys matching Pattern.
type Binding struct {
	Exchange string
	Queue    string
	Pattern  string
}

// Topology is the static set of exchanges, queues and bindings. Declaring it is
// idempotent and is done on every (re)connection.
type Topology struct {
	Exchanges []string
	Queues    []string
	Bindings  []Binding
}

// DefaultTopology returns the exchanges, queues and bindings used by the services.
func DefaultTopology() Topology {
	return Topology{
		Exchanges: []string{ExchangeIdentity, ExchangeCart, ExchangeCatalog},
		Queues:    []string{QueueNotificationsUser, QueueNotificationsCart, QueueNotificationsProduct},
		Bindings: []Binding{
			{Exchange: ExchangeIdentity, Queue: QueueNotificationsUser, Pattern: "user.*"},
			{Exchange: ExchangeCart, Queue: QueueNotificationsCart, Pattern: "cart.*"},
			{Exchange: ExchangeCatalog, Queue: QueueNotificationsProduct, Pattern: "product.*"},
		},
	}
}

// MatchTopic reports whether a routing key matches a topic binding pattern.
// Words are dot separated; "*" matches exactly one word and "#" zero or more.
func MatchTopic(pattern, routingKey string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(routingKey, "."))
}

func matchWords(pattern, key []string) bool {
	if len(pattern) == 0 {
		return len(key) == 0
	}
	switch pattern[0] {
	case "#":
		for i := 0; i <= len(key); i++ {
			if matchWords(pattern[1:], key[i:]) {
				return true
			}
		}
		return false
	case "*":
		return len(key) > 0 && matchWords(pattern[1:], key[1:])
	default:
		return len(key) > 0 && pattern[0] == key[0] && matchWords(pattern[1:], key[1:])
	}
}
