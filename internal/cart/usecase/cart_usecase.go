package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/storefront/internal/cache"
	"github.com/allisson/storefront/internal/cart/domain"
	"github.com/allisson/storefront/internal/database"
	apperrors "github.com/allisson/storefront/internal/errors"
	"github.com/allisson/storefront/internal/events"
	appValidation "github.com/allisson/storefront/internal/validation"
)

// enrichConcurrency bounds the product lookups of one cart read.
const enrichConcurrency = 8

// CartUseCase coordinates the cart store, the cart cache and the cart events.
type CartUseCase struct {
	txManager database.TxManager
	cartRepo  CartRepository
	products  ProductReader
	cache     *cache.Cache
	publisher EventPublisher
	cartTTL   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewCartUseCase creates a new CartUseCase.
func NewCartUseCase(
	txManager database.TxManager,
	cartRepo CartRepository,
	products ProductReader,
	cartCache *cache.Cache,
	publisher EventPublisher,
	cartTTL time.Duration,
	logger *slog.Logger,
) *CartUseCase {
	return &CartUseCase{
		txManager: txManager,
		cartRepo:  cartRepo,
		products:  products,
		cache:     cartCache,
		publisher: publisher,
		cartTTL:   cartTTL,
		logger:    logger,
		now:       time.Now,
	}
}

func validateQuantity(quantity int) error {
	err := validation.Validate(quantity, validation.Min(1).Error("quantity must be positive"))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	return nil
}

func validateAddItemInput(input AddItemInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.ProductID, appValidation.RequiredID),
		validation.Field(&input.Quantity, validation.Required, validation.Min(1)),
	)
	return appValidation.WrapValidationError(err)
}

// Get returns the user's cart with every line enriched with its product. A line
// whose product no longer exists is kept with a nil product.
func (uc *CartUseCase) Get(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	return cache.GetOrLoad(ctx, uc.cache, cache.CartKey(userID), uc.cartTTL,
		func(ctx context.Context) (*domain.Cart, error) {
			return uc.load(ctx, userID)
		},
	)
}

func (uc *CartUseCase) load(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	items, err := uc.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]*domain.CartLine, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i, item := range items {
		g.Go(func() error {
			line := &domain.CartLine{CartItem: *item}
			product, err := uc.products.Get(gctx, item.ProductID)
			switch {
			case err == nil:
				line.Product = product
			case errors.Is(err, apperrors.ErrNotFound):
				uc.logger.Warn("product not found for cart item",
					slog.String("user_id", userID.String()),
					slog.String("product_id", item.ProductID.String()),
				)
			default:
				return err
			}
			lines[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return domain.NewCart(lines), nil
}

// Add verifies the product exists, adds the quantity to the user's line for it
// (creating the line when absent), evicts the cached cart and publishes ADD.
func (uc *CartUseCase) Add(ctx context.Context, userID uuid.UUID, input AddItemInput) (*domain.CartItem, error) {
	if err := validateAddItemInput(input); err != nil {
		return nil, err
	}

	if _, err := uc.products.Get(ctx, input.ProductID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}

	now := uc.now().UTC()
	item, err := uc.cartRepo.AddQuantity(ctx, &domain.CartItem{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    userID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx, cache.CartKey(userID))
	uc.publish(ctx, events.CartRoutingKey(events.CartActionAdd), userID, input.ProductID, input.Quantity,
		events.CartActionAdd, now)

	uc.logger.Info("cart item added",
		slog.String("user_id", userID.String()),
		slog.String("product_id", input.ProductID.String()),
		slog.Int("quantity", item.Quantity),
	)
	return item, nil
}

// Update sets the quantity of an existing line, evicts the cached cart and publishes UPDATE.
func (uc *CartUseCase) Update(
	ctx context.Context,
	userID, productID uuid.UUID,
	quantity int,
) (*domain.CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	item, err := uc.cartRepo.GetItem(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	item.Quantity = quantity
	item.UpdatedAt = now
	if err := uc.cartRepo.UpdateQuantity(ctx, item); err != nil {
		return nil, err
	}

	uc.cache.Invalidate(ctx, cache.CartKey(userID))
	uc.publish(ctx, events.CartRoutingKey(events.CartActionUpdate), userID, productID, quantity,
		events.CartActionUpdate, now)

	uc.logger.Info("cart item updated",
		slog.String("user_id", userID.String()),
		slog.String("product_id", productID.String()),
		slog.Int("quantity", quantity),
	)
	return item, nil
}

// Remove deletes an existing line, evicts the cached cart and publishes REMOVE.
func (uc *CartUseCase) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if err := uc.cartRepo.DeleteItem(ctx, userID, productID); err != nil {
		return err
	}

	uc.cache.Invalidate(ctx, cache.CartKey(userID))
	uc.publish(ctx, events.CartRoutingKey(events.CartActionRemove), userID, productID, 0,
		events.CartActionRemove, uc.now().UTC())

	uc.logger.Info("cart item removed",
		slog.String("user_id", userID.String()),
		slog.String("product_id", productID.String()),
	)
	return nil
}

// Clear deletes every line of the cart, evicts the cached cart and publishes one
// REMOVE per deleted line on the cart.clear routing key.
func (uc *CartUseCase) Clear(ctx context.Context, userID uuid.UUID) error {
	var removed []*domain.CartItem
	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		items, err := uc.cartRepo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if _, err := uc.cartRepo.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		removed = items
		return nil
	})
	if err != nil {
		return err
	}

	uc.cache.Invalidate(ctx, cache.CartKey(userID))
	now := uc.now().UTC()
	for _, item := range removed {
		uc.publish(ctx, events.RoutingKeyCartClear, userID, item.ProductID, 0, events.CartActionRemove, now)
	}

	uc.logger.Info("cart cleared", slog.String("user_id", userID.String()), slog.Int("items", len(removed)))
	return nil
}

func (uc *CartUseCase) publish(
	ctx context.Context,
	routingKey string,
	userID, productID uuid.UUID,
	quantity int,
	action events.CartAction,
	at time.Time,
) {
	uc.publisher.Publish(ctx, events.ExchangeCart, routingKey, events.CartUpdated{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		Action:    action,
		Timestamp: at,
	})
}
