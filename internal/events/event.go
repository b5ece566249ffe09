// Package events defines the domain events exchanged between services and the
// transport used to publish and consume them.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type is the discriminant carried in every event payload.
type Type string

// Event types.
const (
	TypeUserRegistered Type = "USER_REGISTERED"
	TypeCartUpdated    Type = "CART_UPDATED"
	TypeProductUpdated Type = "PRODUCT_UPDATED"
)

// CartAction describes what happened to a cart line.
type CartAction string

// Cart actions.
const (
	CartActionAdd    CartAction = "ADD"
	CartActionRemove CartAction = "REMOVE"
	CartActionUpdate CartAction = "UPDATE"
)

// ProductAction describes what happened to a product.
type ProductAction string

// Product actions.
const (
	ProductActionCreate ProductAction = "CREATE"
	ProductActionUpdate ProductAction = "UPDATE"
	ProductActionDelete ProductAction = "DELETE"
)

var (
	// ErrUnknownEventType is returned when a payload carries a type outside the known set.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrMalformedEvent is returned when a payload cannot be decoded into its variant.
	ErrMalformedEvent = errors.New("malformed event")
)

// Event is the closed set of domain events. Only the variants declared in this
// package implement it.
type Event interface {
	EventType() Type
	isEvent()
}

// UserRegistered is published after a new identity is durably created.
type UserRegistered struct {
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

// CartUpdated is published after a cart line changes.
type CartUpdated struct {
	UserID    uuid.UUID  `json:"userId"`
	ProductID uuid.UUID  `json:"productId"`
	Quantity  int        `json:"quantity"`
	Action    CartAction `json:"action"`
	Timestamp time.Time  `json:"timestamp"`
}

// ProductUpdated is published after a product is created, changed or deleted.
type ProductUpdated struct {
	ProductID uuid.UUID     `json:"productId"`
	Action    ProductAction `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
}

func (UserRegistered) EventType() Type { return TypeUserRegistered }
func (CartUpdated) EventType() Type    { return TypeCartUpdated }
func (ProductUpdated) EventType() Type { return TypeProductUpdated }

func (UserRegistered) isEvent() {}
func (CartUpdated) isEvent()    {}
func (ProductUpdated) isEvent() {}

// Encode serializes an event with its "type" discriminant.
func Encode(event Event) ([]byte, error) {
	switch e := event.(type) {
	case UserRegistered:
		return json.Marshal(struct {
			Type Type `json:"type"`
			UserRegistered
		}{e.EventType(), e})
	case CartUpdated:
		return json.Marshal(struct {
			Type Type `json:"type"`
			CartUpdated
		}{e.EventType(), e})
	case ProductUpdated:
		return json.Marshal(struct {
			Type Type `json:"type"`
			ProductUpdated
		}{e.EventType(), e})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEventType, event)
	}
}

// Decode parses a payload by matching on its discriminant. Unknown discriminants
// are reported as ErrUnknownEventType; anything else that does not fit the
// variant is ErrMalformedEvent.
func Decode(payload []byte) (Event, error) {
	var head struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	switch head.Type {
	case TypeUserRegistered:
		var e UserRegistered
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		if e.UserID == uuid.Nil || e.Email == "" {
			return nil, fmt.Errorf("%w: user event without user id or email", ErrMalformedEvent)
		}
		return e, nil
	case TypeCartUpdated:
		var e CartUpdated
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		switch e.Action {
		case CartActionAdd, CartActionRemove, CartActionUpdate:
		default:
			return nil, fmt.Errorf("%w: cart action %q", ErrMalformedEvent, e.Action)
		}
		if e.UserID == uuid.Nil || e.ProductID == uuid.Nil {
			return nil, fmt.Errorf("%w: cart event without user or product id", ErrMalformedEvent)
		}
		return e, nil
	case TypeProductUpdated:
		var e ProductUpdated
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		switch e.Action {
		case ProductActionCreate, ProductActionUpdate, ProductActionDelete:
		default:
			return nil, fmt.Errorf("%w: product action %q", ErrMalformedEvent, e.Action)
		}
		if e.ProductID == uuid.Nil {
			return nil, fmt.Errorf("%w: product event without product id", ErrMalformedEvent)
		}
		return e, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, head.Type)
	}
}
