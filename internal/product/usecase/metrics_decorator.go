package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/storefront/internal/metrics"
	"github.com/allisson/storefront/internal/product/domain"
)

// productUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type productUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewProductUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewProductUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &productUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (p *productUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "product", operation, status)
	p.metrics.RecordDuration(ctx, "product", operation, time.Since(start), status)
}

// List records metrics for catalog listings.
func (p *productUseCaseWithMetrics) List(ctx context.Context, query domain.ListQuery) (*domain.ProductPage, error) {
	start := time.Now()
	page, err := p.next.List(ctx, query)
	p.record(ctx, "product_list", start, err)
	return page, err
}

// Get records metrics for product reads.
func (p *productUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	start := time.Now()
	product, err := p.next.Get(ctx, id)
	p.record(ctx, "product_get", start, err)
	return product, err
}

// ListByCategory records metrics for category listings.
func (p *productUseCaseWithMetrics) ListByCategory(
	ctx context.Context,
	category string,
	query domain.ListQuery,
) (*domain.ProductPage, error) {
	start := time.Now()
	page, err := p.next.ListByCategory(ctx, category, query)
	p.record(ctx, "product_list_by_category", start, err)
	return page, err
}

// Create records metrics for product creation.
func (p *productUseCaseWithMetrics) Create(ctx context.Context, input CreateInput) (*domain.Product, error) {
	start := time.Now()
	product, err := p.next.Create(ctx, input)
	p.record(ctx, "product_create", start, err)
	return product, err
}

// Update records metrics for product updates.
func (p *productUseCaseWithMetrics) Update(
	ctx context.Context,
	id uuid.UUID,
	input UpdateInput,
) (*domain.Product, error) {
	start := time.Now()
	product, err := p.next.Update(ctx, id, input)
	p.record(ctx, "product_update", start, err)
	return product, err
}

// Delete records metrics for product deletion.
func (p *productUseCaseWithMetrics) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := p.next.Delete(ctx, id)
	p.record(ctx, "product_delete", start, err)
	return err
}
