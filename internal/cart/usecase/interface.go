// Package usecase implements the cart coordinator: durable writes, cart cache
// invalidation, then cart events.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/storefront/internal/cart/domain"
	"github.com/allisson/storefront/internal/events"
	productDomain "github.com/allisson/storefront/internal/product/domain"
)

// AddItemInput adds Quantity units of a product to the cart.
type AddItemInput struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// CartRepository defines cart item persistence operations.
type CartRepository interface {
	AddQuantity(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error)
	GetItem(ctx context.Context, userID, productID uuid.UUID) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, item *domain.CartItem) error
	DeleteItem(ctx context.Context, userID, productID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ProductReader is the read-only view of the catalog the cart needs.
type ProductReader interface {
	Get(ctx context.Context, id uuid.UUID) (*productDomain.Product, error)
}

// EventPublisher publishes domain events and reports whether the broker accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, event events.Event) bool
}

// UseCase defines the cart operations. Every operation acts on the cart of userID.
type UseCase interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	Add(ctx context.Context, userID uuid.UUID, input AddItemInput) (*domain.CartItem, error)
	Update(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}
