package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/storefront/internal/cache"
	apperrors "github.com/allisson/storefront/internal/errors"
	"github.com/allisson/storefront/internal/events"
	"github.com/allisson/storefront/internal/product/domain"
	appValidation "github.com/allisson/storefront/internal/validation"
)

// CacheConfig holds the lifetimes of cached products and listings.
type CacheConfig struct {
	ProductTTL time.Duration
	ListTTL    time.Duration
}

// ProductUseCase coordinates the product store, the catalog cache and the catalog events.
type ProductUseCase struct {
	productRepo ProductRepository
	cache       *cache.Cache
	publisher   EventPublisher
	cacheConfig CacheConfig
	logger      *slog.Logger
	now         func() time.Time
}

// NewProductUseCase creates a new ProductUseCase.
func NewProductUseCase(
	productRepo ProductRepository,
	catalogCache *cache.Cache,
	publisher EventPublisher,
	cacheConfig CacheConfig,
	logger *slog.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		cache:       catalogCache,
		publisher:   publisher,
		cacheConfig: cacheConfig,
		logger:      logger,
		now:         time.Now,
	}
}

func validateListQuery(query domain.ListQuery) error {
	err := validation.ValidateStruct(&query,
		validation.Field(&query.Page, validation.Min(1)),
		validation.Field(&query.Limit, validation.Min(1), validation.Max(domain.MaxLimit)),
		validation.Field(&query.SortBy, validation.By(func(interface{}) error {
			if _, ok := query.SortColumn(); !ok {
				return validation.NewError("validation_sort_by", "unsupported sort field")
			}
			return nil
		})),
		validation.Field(&query.SortOrder, appValidation.SortOrder),
	)
	return appValidation.WrapValidationError(err)
}

func validateCreateInput(input CreateInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name, validation.Required, appValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&input.Description, validation.Required, appValidation.NotBlank),
		validation.Field(&input.Price, appValidation.PositiveAmount),
		validation.Field(&input.Stock, validation.Min(0)),
		validation.Field(&input.Category, validation.Required, appValidation.NotBlank, validation.Length(1, 100)),
	)
	return appValidation.WrapValidationError(err)
}

func validateUpdateInput(input UpdateInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name, validation.NilOrNotEmpty, appValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&input.Description, validation.NilOrNotEmpty, appValidation.NotBlank),
		validation.Field(&input.Price, appValidation.PositiveAmount),
		validation.Field(&input.Stock, validation.Min(0)),
		validation.Field(&input.Category, validation.NilOrNotEmpty, appValidation.NotBlank, validation.Length(1, 100)),
	)
	return appValidation.WrapValidationError(err)
}

func (uc *ProductUseCase) page(ctx context.Context, query domain.ListQuery) (*domain.ProductPage, error) {
	products, total, err := uc.productRepo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	return &domain.ProductPage{
		Data:       products,
		Pagination: domain.NewPagination(query.Page, query.Limit, total),
	}, nil
}

// List returns a page of the catalog, cached per distinct query.
func (uc *ProductUseCase) List(ctx context.Context, query domain.ListQuery) (*domain.ProductPage, error) {
	query = query.Normalize()
	query.Category = ""
	if err := validateListQuery(query); err != nil {
		return nil, err
	}

	key, err := cache.ProductListKey(query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build listing cache key")
	}

	return cache.GetOrLoad(ctx, uc.cache, key, uc.cacheConfig.ListTTL,
		func(ctx context.Context) (*domain.ProductPage, error) {
			return uc.page(ctx, query)
		},
	)
}

// ListByCategory returns a page of one category. Category listings are read from
// the database on every call.
func (uc *ProductUseCase) ListByCategory(
	ctx context.Context,
	category string,
	query domain.ListQuery,
) (*domain.ProductPage, error) {
	query = query.Normalize()
	query.Category = strings.TrimSpace(category)
	if query.Category == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "category is required")
	}
	if err := validateListQuery(query); err != nil {
		return nil, err
	}
	return uc.page(ctx, query)
}

// Get returns a product, served from the cache when possible.
func (uc *ProductUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return cache.GetOrLoad(ctx, uc.cache, cache.ProductKey(id), uc.cacheConfig.ProductTTL,
		func(ctx context.Context) (*domain.Product, error) {
			return uc.productRepo.GetByID(ctx, id)
		},
	)
}

// Create writes a product, drops every cached listing, caches the new product and
// publishes CREATE.
func (uc *ProductUseCase) Create(ctx context.Context, input CreateInput) (*domain.Product, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	product := &domain.Product{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    strings.TrimSpace(input.Category),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	uc.cache.InvalidateByPrefix(ctx, cache.ProductListPrefix)
	uc.cache.Set(ctx, cache.ProductKey(product.ID), product, uc.cacheConfig.ProductTTL)
	uc.publish(ctx, product.ID, events.ProductActionCreate, now)

	uc.logger.Info("product created", slog.String("product_id", product.ID.String()))
	return product, nil
}

// Update applies a partial update to an existing product, refreshes its cache
// entry, drops every cached listing and cart and publishes UPDATE. Cached carts
// embed product snapshots, so a price change must not be served from them.
func (uc *ProductUseCase) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*domain.Product, error) {
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	now := uc.now().UTC()
	product.UpdatedAt = now

	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	uc.cache.Set(ctx, cache.ProductKey(id), product, uc.cacheConfig.ProductTTL)
	uc.cache.InvalidateByPrefix(ctx, cache.ProductListPrefix)
	uc.cache.InvalidateByPrefix(ctx, cache.CartPrefix)
	uc.publish(ctx, id, events.ProductActionUpdate, now)

	uc.logger.Info("product updated", slog.String("product_id", id.String()))
	return product, nil
}

// Delete removes an existing product, evicts it, every cached listing and every
// cached cart, and publishes DELETE.
func (uc *ProductUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := uc.productRepo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := uc.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	uc.cache.Invalidate(ctx, cache.ProductKey(id))
	uc.cache.InvalidateByPrefix(ctx, cache.ProductListPrefix)
	uc.cache.InvalidateByPrefix(ctx, cache.CartPrefix)
	uc.publish(ctx, id, events.ProductActionDelete, uc.now().UTC())

	uc.logger.Info("product deleted", slog.String("product_id", id.String()))
	return nil
}

func (uc *ProductUseCase) publish(ctx context.Context, id uuid.UUID, action events.ProductAction, at time.Time) {
	uc.publisher.Publish(ctx, events.ExchangeCatalog, events.ProductRoutingKey(action), events.ProductUpdated{
		ProductID: id,
		Action:    action,
		Timestamp: at,
	})
}
