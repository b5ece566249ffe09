package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/storefront/internal/cart/domain"
	"github.com/allisson/storefront/internal/metrics"
)

// cartUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type cartUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewCartUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewCartUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &cartUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *cartUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "cart", operation, status)
	c.metrics.RecordDuration(ctx, "cart", operation, time.Since(start), status)
}

// Get records metrics for cart reads.
func (c *cartUseCaseWithMetrics) Get(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	start := time.Now()
	cart, err := c.next.Get(ctx, userID)
	c.record(ctx, "cart_get", start, err)
	return cart, err
}

// Add records metrics for adding cart items.
func (c *cartUseCaseWithMetrics) Add(
	ctx context.Context,
	userID uuid.UUID,
	input AddItemInput,
) (*domain.CartItem, error) {
	start := time.Now()
	item, err := c.next.Add(ctx, userID, input)
	c.record(ctx, "cart_add", start, err)
	return item, err
}

// Update records metrics for quantity changes.
func (c *cartUseCaseWithMetrics) Update(
	ctx context.Context,
	userID, productID uuid.UUID,
	quantity int,
) (*domain.CartItem, error) {
	start := time.Now()
	item, err := c.next.Update(ctx, userID, productID, quantity)
	c.record(ctx, "cart_update", start, err)
	return item, err
}

// Remove records metrics for removing cart items.
func (c *cartUseCaseWithMetrics) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	start := time.Now()
	err := c.next.Remove(ctx, userID, productID)
	c.record(ctx, "cart_remove", start, err)
	return err
}

// Clear records metrics for clearing carts.
func (c *cartUseCaseWithMetrics) Clear(ctx context.Context, userID uuid.UUID) error {
	start := time.Now()
	err := c.next.Clear(ctx, userID)
	c.record(ctx, "cart_clear", start, err)
	return err
}
