// Package usecase implements the catalog coordinator: durable writes, cache refresh
// and invalidation, then product events.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/storefront/internal/events"
	"github.com/allisson/storefront/internal/product/domain"
)

// CreateInput contains the fields of a new product.
type CreateInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
}

// UpdateInput is a partial update; nil fields keep their current value.
type UpdateInput struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

// ProductRepository defines product persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query domain.ListQuery) ([]*domain.Product, int64, error)
}

// EventPublisher publishes domain events and reports whether the broker accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, event events.Event) bool
}

// UseCase defines the catalog operations.
type UseCase interface {
	List(ctx context.Context, query domain.ListQuery) (*domain.ProductPage, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListByCategory(ctx context.Context, category string, query domain.ListQuery) (*domain.ProductPage, error)
	Create(ctx context.Context, input CreateInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
