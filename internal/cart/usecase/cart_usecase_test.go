package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/storefront/internal/cache"
	"github.com/allisson/storefront/internal/cart/domain"
	apperrors "github.com/allisson/storefront/internal/errors"
	"github.com/allisson/storefront/internal/events"
	productDomain "github.com/allisson/storefront/internal/product/domain"
	productUseCase "github.com/allisson/storefront/internal/product/usecase"
	"github.com/allisson/storefront/internal/testutil"
)

type itemKey struct {
	userID    uuid.UUID
	productID uuid.UUID
}

// memoryCartRepository is an in-memory CartRepository that counts list reads.
type memoryCartRepository struct {
	mu        sync.Mutex
	items     map[itemKey]domain.CartItem
	listCalls int
	deleteErr error
}

func newMemoryCartRepository() *memoryCartRepository {
	return &memoryCartRepository{items: make(map[itemKey]domain.CartItem)}
}

func (m *memoryCartRepository) AddQuantity(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := itemKey{item.UserID, item.ProductID}
	stored, ok := m.items[key]
	if ok {
		stored.Quantity += item.Quantity
		stored.UpdatedAt = item.UpdatedAt
	} else {
		stored = *item
	}
	m.items[key] = stored
	return &stored, nil
}

func (m *memoryCartRepository) GetItem(ctx context.Context, userID, productID uuid.UUID) (*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[itemKey{userID, productID}]
	if !ok {
		return nil, domain.ErrCartItemNotFound
	}
	return &item, nil
}

func (m *memoryCartRepository) UpdateQuantity(ctx context.Context, item *domain.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := itemKey{item.UserID, item.ProductID}
	if _, ok := m.items[key]; !ok {
		return domain.ErrCartItemNotFound
	}
	m.items[key] = *item
	return nil
}

func (m *memoryCartRepository) DeleteItem(ctx context.Context, userID, productID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := itemKey{userID, productID}
	if _, ok := m.items[key]; !ok {
		return domain.ErrCartItemNotFound
	}
	delete(m.items, key)
	return nil
}

func (m *memoryCartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	items := make([]*domain.CartItem, 0)
	for key, item := range m.items {
		if key.userID == userID {
			item := item
			items = append(items, &item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID.String() < items[j].ID.String() })
	return items, nil
}

func (m *memoryCartRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var count int64
	for key := range m.items {
		if key.userID == userID {
			delete(m.items, key)
			count++
		}
	}
	return count, nil
}

// fakeProductReader serves products from a map.
type fakeProductReader struct {
	mu       sync.Mutex
	products map[uuid.UUID]*productDomain.Product
	err      error
}

func (f *fakeProductReader) Get(ctx context.Context, id uuid.UUID) (*productDomain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, productDomain.ErrProductNotFound
	}
	return p, nil
}

// inlineTxManager runs the function without a real transaction.
type inlineTxManager struct{}

func (inlineTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type publishedEvent struct {
	exchange   string
	routingKey string
	event      events.CartUpdated
	cached     bool
}

// recordingPublisher captures events and whether the cart was cached when each was published.
type recordingPublisher struct {
	mu        sync.Mutex
	redis     *miniredis.Miniredis
	cartKey   string
	published []publishedEvent
}

func (r *recordingPublisher) Publish(ctx context.Context, exchange, routingKey string, event events.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, publishedEvent{
		exchange:   exchange,
		routingKey: routingKey,
		event:      event.(events.CartUpdated),
		cached:     r.redis.Exists(r.cartKey),
	})
	return true
}

type cartFixture struct {
	useCase   *CartUseCase
	repo      *memoryCartRepository
	products  *fakeProductReader
	publisher *recordingPublisher
	redis     *miniredis.Miniredis
	userID    uuid.UUID
	lamp      *productDomain.Product
	mug       *productDomain.Product
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	userID := uuid.Must(uuid.NewV7())
	lamp := &productDomain.Product{ID: uuid.Must(uuid.NewV7()), Name: "Desk Lamp", Price: 39.9}
	mug := &productDomain.Product{ID: uuid.Must(uuid.NewV7()), Name: "Mug", Price: 9.5}

	repo := newMemoryCartRepository()
	products := &fakeProductReader{products: map[uuid.UUID]*productDomain.Product{lamp.ID: lamp, mug.ID: mug}}
	c, mr := testutil.NewCache(t)
	publisher := &recordingPublisher{redis: mr, cartKey: cache.CartKey(userID)}

	uc := NewCartUseCase(inlineTxManager{}, repo, products, c, publisher, 5*time.Minute, testutil.DiscardLogger())
	uc.now = func() time.Time { return time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC) }
	return &cartFixture{
		useCase:   uc,
		repo:      repo,
		products:  products,
		publisher: publisher,
		redis:     mr,
		userID:    userID,
		lamp:      lamp,
		mug:       mug,
	}
}

func TestCartUseCase_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_EnrichedAndCached", func(t *testing.T) {
		f := newCartFixture(t)
		_, err := f.useCase.Add(ctx, f.userID, AddItemInput{ProductID: f.lamp.ID, Quantity: 2})
		require.NoError(t, err)
		_, err = f.useCase.Add(ctx, f.userID, AddItemInput{ProductID: f.mug.ID, Quantity: 1})
		require.NoError(t, err)

		cart, err := f.useCase.Get(ctx, f.userID)
		require.NoError(t, err)
		assert.Len(t, cart.Items, 2)
		assert.Equal(t, 3, cart.TotalItems)
		assert.Equal(t, 89.3, cart.TotalAmount)
		for _, line := range cart.Items {
			assert.NotNil(t, line.Product)
		}
		assert.True(t, f.redis.Exists(cache.CartKey(f.userID)))

		again, err := f.useCase.Get(ctx, f.userID)
		require.NoError(t, err)
		assert.Equal(t, cart.TotalAmount, again.TotalAmount)
		assert.Equal(t, 1, f.repo.listCalls)
	})

	t.Run("Success_EmptyCart", func(t *testing.T) {
		f := newCartFixture(t)

		cart, err := f.useCase.Get(ctx, f.userID)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
		assert.Zero(t, cart.TotalItems)
	})

	t.Run("Success_DeletedProductDegradesToNil", func(t *testing.T) {
		f := newCartFixture(t)
		_, err := f.useCase.Add(ctx, f.userID, AddItemInput{ProductID: f.lamp.ID, Quantity: 2})
		require.NoError(t, err)
		_, err = f.useCase.Add(ctx, f.userID, AddItemInput{ProductID: f.mug.ID, Quantity: 3})
		require.NoError(t, err)
		delete(f.products.products, f.lamp.ID)

		cart, err := f.useCase.Get(ctx, f.userID)
		require.NoError(t, err)
		require.Len(t, cart.Items, 2)
		assert.Equal(t, 5, cart.TotalItems)
		assert.Equal(t, 28.5, cart.TotalAmount)
		for _, line := range cart.Items {
			if line.ProductID == f.lamp.ID {
				assert.Nil(t, line.Product)
			} else {
				assert.Equal(t, f.mug.ID, line.Product.ID)
			}
		}
	})

	t.Run("Success_CacheUnreachableReadsStore", func(t *testing.T) {
		f := newCartFixture(t)
		_, err := f.useCase.Add(ctx, f.userID, AddItemInput{ProductID: f.lamp.ID, Quantity: 1})
		require.NoError(t, err)
		f.redis.Close()

		cart, err := f.useCase.Get(ctx, f.userID)
		require.NoError(t, err)
		assert.Equal(t, 1, cart.TotalItems)
	})

	t.Run("Error_ProductLookupFailureNotCached", func(t *testing.T) {
		f := newCartFixture(t)
		_, err := f.useCase.Add(ctx, f.userID, AddItemInput{ProductID: f.lamp.ID, Quantity: 1})
		require.NoError(t, err)
		f.products.err = apperrors.Wrap(apperrors.ErrUnavailable, "catalog down")

		_, err = f.useCase.Get(ctx, f.userID)
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
		assert.False(t, f.redis.Exists(cache.CartKey(f.userID)))
	})
}

func TestCartUseCase_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_InvalidatesThenPublishes", func(t *testing.T) {
		f := newCartFixture(t)
		_, err := f.useCase.Get(ctx, f.userID)
		require.NoError(t, err)
		require.True(t, f.redis.Exists(cache.CartKey(f.userID)))

		item, err := f.useCase.Add(ctx, f.userID, AddItemInput{ProductID: f.lamp.ID, Quantity: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, item.Quantity)

		require.Len(t, f.publisher.published, 1)
		published := f.publisher.published[0]
		assert.Equal(t, events.ExchangeCart, published.exchange)
		assert.Equal(t, "cart.add", published.routingKey)
		assert.False(t, published.cached)
		assert.Equal(t, events.CartUpdated{
			UserID:    f.userID,
			ProductID: f.lamp.ID,
			Quantity:  2,
			Action:    events.CartActionAdd,
			Timestamp: f.useCase.now().UTC(),
		}, published.event)

		cart, err := f.useCase.Get(ctx, f.userID)
		require.NoError(t, err)
		assert.Equal(t, 2, cart.TotalItems)
	})

	t.Run("Success_IncrementsExistingLine", func(t *testing.T) {
		f := newCartFixture(t)
		_, err := f.useCase.Add(ctx, f.userID, AddItemInput{ProductID: f.lamp.ID, Quantity: 2})
		require.NoError(t, err)

		item, err := f.useCase.Add(ctx, f.userID, AddItemInput{ProductID: f.lamp.ID, Quantity: 3})
		require.NoError(t, err)
		assert.Equal(t, 5, item.Quantity)
		assert.Equal(t, 3, f.publisher.published[1].event.Quantity)
	})

	t.Run("Error_UnknownProduct", func(t *testing.T) {
		f := newCartFixture(t)

		_, err := f.useCase.Add(ctx, f.userID, AddItemInput{ProductID: uuid.Must(uuid.NewV7()), Quantity: 1})
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Empty(t, f.publisher.published)
	})

	t.Run("Error_InvalidInput", func(t *testing.T) {
		f := newCartFixture(t)

		_, err := f.useCase.Add(ctx, f.userID, AddItemInput{ProductID: f.lamp.ID, Quantity: 0})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		_, err = f.useCase.Add(ctx, f.userID, AddItemInput{Quantity: 1})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_CatalogUnavailable", func(t *testing.T) {
		f := newCartFixture(t)
		f.products.err = errors.New("connection refused")

		_, err := f.useCase.Add(ctx, f.userID, AddItemInput{ProductID: f.lamp.ID, Quantity: 1})
		assert.EqualError(t, err, "connection refused")
	})
}

func TestCartUseCase_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newCartFixture(t)
		_, err := f.useCase.Add(ctx, f.userID, AddItemInput{ProductID: f.lamp.ID, Quantity: 2})
		require.NoError(t, err)
		_, err = f.useCase.Get(ctx, f.userID)
		require.NoError(t, err)

		item, err := f.useCase.Update(ctx, f.userID, f.lamp.ID, 7)
		require.NoError(t, err)
		assert.Equal(t, 7, item.Quantity)

		last := f.publisher.published[len(f.publisher.published)-1]
		assert.Equal(t, "cart.update", last.routingKey)
		assert.Equal(t, events.CartActionUpdate, last.event.Action)
		assert.Equal(t, 7, last.event.Quantity)
		assert.False(t, last.cached)
	})

	t.Run("Error_ItemNotFound", func(t *testing.T) {
		f := newCartFixture(t)

		_, err := f.useCase.Update(ctx, f.userID, f.lamp.ID, 1)
		assert.ErrorIs(t, err, domain.ErrCartItemNotFound)
		assert.Empty(t, f.publisher.published)
	})

	t.Run("Error_NonPositiveQuantity", func(t *testing.T) {
		f := newCartFixture(t)

		_, err := f.useCase.Update(ctx, f.userID, f.lamp.ID, 0)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestCartUseCase_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_PublishesZeroQuantity", func(t *testing.T) {
		f := newCartFixture(t)
		_, err := f.useCase.Add(ctx, f.userID, AddItemInput{ProductID: f.lamp.ID, Quantity: 2})
		require.NoError(t, err)

		require.NoError(t, f.useCase.Remove(ctx, f.userID, f.lamp.ID))

		last := f.publisher.published[len(f.publisher.published)-1]
		assert.Equal(t, "cart.remove", last.routingKey)
		assert.Equal(t, events.CartActionRemove, last.event.Action)
		assert.Zero(t, last.event.Quantity)

		cart, err := f.useCase.Get(ctx, f.userID)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	})

	t.Run("Error_ItemNotFound", func(t *testing.T) {
		f := newCartFixture(t)

		err := f.useCase.Remove(ctx, f.userID, f.lamp.ID)
		assert.ErrorIs(t, err, domain.ErrCartItemNotFound)
		assert.Empty(t, f.publisher.published)
	})
}

func TestCartUseCase_Clear(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_OneRemovePerLine", func(t *testing.T) {
		f := newCartFixture(t)
		_, err := f.useCase.Add(ctx, f.userID, AddItemInput{ProductID: f.lamp.ID, Quantity: 2})
		require.NoError(t, err)
		_, err = f.useCase.Add(ctx, f.userID, AddItemInput{ProductID: f.mug.ID, Quantity: 1})
		require.NoError(t, err)
		_, err = f.useCase.Get(ctx, f.userID)
		require.NoError(t, err)
		f.publisher.published = nil

		require.NoError(t, f.useCase.Clear(ctx, f.userID))

		require.Len(t, f.publisher.published, 2)
		cleared := map[uuid.UUID]bool{}
		for _, p := range f.publisher.published {
			assert.Equal(t, events.RoutingKeyCartClear, p.routingKey)
			assert.Equal(t, events.CartActionRemove, p.event.Action)
			assert.False(t, p.cached)
			cleared[p.event.ProductID] = true
		}
		assert.True(t, cleared[f.lamp.ID])
		assert.True(t, cleared[f.mug.ID])

		cart, err := f.useCase.Get(ctx, f.userID)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	})

	t.Run("Success_EmptyCartPublishesNothing", func(t *testing.T) {
		f := newCartFixture(t)

		require.NoError(t, f.useCase.Clear(ctx, f.userID))
		assert.Empty(t, f.publisher.published)
	})

	t.Run("Error_DeleteFailsKeepsCache", func(t *testing.T) {
		f := newCartFixture(t)
		_, err := f.useCase.Add(ctx, f.userID, AddItemInput{ProductID: f.lamp.ID, Quantity: 2})
		require.NoError(t, err)
		_, err = f.useCase.Get(ctx, f.userID)
		require.NoError(t, err)
		f.publisher.published = nil
		f.repo.deleteErr = errors.New("deadlock detected")

		err = f.useCase.Clear(ctx, f.userID)
		assert.EqualError(t, err, "deadlock detected")
		assert.Empty(t, f.publisher.published)
		assert.True(t, f.redis.Exists(cache.CartKey(f.userID)))
	})
}

// catalogRepository is a minimal product store backing a real product coordinator.
type catalogRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]productDomain.Product
}

func (r *catalogRepository) Create(ctx context.Context, product *productDomain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = *product
	return nil
}

func (r *catalogRepository) GetByID(ctx context.Context, id uuid.UUID) (*productDomain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, productDomain.ErrProductNotFound
	}
	return &p, nil
}

func (r *catalogRepository) Update(ctx context.Context, product *productDomain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return productDomain.ErrProductNotFound
	}
	r.products[product.ID] = *product
	return nil
}

func (r *catalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return productDomain.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *catalogRepository) List(
	ctx context.Context,
	query productDomain.ListQuery,
) ([]*productDomain.Product, int64, error) {
	return nil, 0, nil
}

func TestCartUseCase_ProductChanges(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*CartUseCase, *productUseCase.ProductUseCase, *miniredis.Miniredis) {
		t.Helper()
		c, mr := testutil.NewCache(t)
		_, publisher := testutil.NewEventBus(t)
		catalog := productUseCase.NewProductUseCase(
			&catalogRepository{products: make(map[uuid.UUID]productDomain.Product)},
			c,
			publisher,
			productUseCase.CacheConfig{ProductTTL: 10 * time.Minute, ListTTL: 5 * time.Minute},
			testutil.DiscardLogger(),
		)
		carts := NewCartUseCase(inlineTxManager{}, newMemoryCartRepository(), catalog, c, publisher,
			5*time.Minute, testutil.DiscardLogger())
		return carts, catalog, mr
	}

	t.Run("Success_DeletedProductNotServedFromCache", func(t *testing.T) {
		carts, catalog, mr := setup(t)
		userID := uuid.Must(uuid.NewV7())
		lamp, err := catalog.Create(ctx, productUseCase.CreateInput{
			Name: "Desk Lamp", Description: "LED desk lamp", Price: 39.9, Stock: 4, Category: "lighting",
		})
		require.NoError(t, err)
		mug, err := catalog.Create(ctx, productUseCase.CreateInput{
			Name: "Mug", Description: "Stoneware mug", Price: 9.5, Stock: 10, Category: "kitchen",
		})
		require.NoError(t, err)
		_, err = carts.Add(ctx, userID, AddItemInput{ProductID: lamp.ID, Quantity: 2})
		require.NoError(t, err)
		_, err = carts.Add(ctx, userID, AddItemInput{ProductID: mug.ID, Quantity: 1})
		require.NoError(t, err)

		before, err := carts.Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 89.3, before.TotalAmount)
		require.True(t, mr.Exists(cache.CartKey(userID)))

		require.NoError(t, catalog.Delete(ctx, lamp.ID))

		after, err := carts.Get(ctx, userID)
		require.NoError(t, err)
		require.Len(t, after.Items, 2)
		for _, line := range after.Items {
			if line.ProductID == lamp.ID {
				assert.Nil(t, line.Product)
			} else {
				assert.NotNil(t, line.Product)
			}
		}
		assert.Equal(t, 9.5, after.TotalAmount)
	})

	t.Run("Success_UpdatedPriceNotServedFromCache", func(t *testing.T) {
		carts, catalog, _ := setup(t)
		userID := uuid.Must(uuid.NewV7())
		lamp, err := catalog.Create(ctx, productUseCase.CreateInput{
			Name: "Desk Lamp", Description: "LED desk lamp", Price: 39.9, Stock: 4, Category: "lighting",
		})
		require.NoError(t, err)
		_, err = carts.Add(ctx, userID, AddItemInput{ProductID: lamp.ID, Quantity: 2})
		require.NoError(t, err)
		_, err = carts.Get(ctx, userID)
		require.NoError(t, err)

		price := 20.0
		_, err = catalog.Update(ctx, lamp.ID, productUseCase.UpdateInput{Price: &price})
		require.NoError(t, err)

		after, err := carts.Get(ctx, userID)
		require.NoError(t, err)
		require.Len(t, after.Items, 1)
		assert.Equal(t, 20.0, after.Items[0].Product.Price)
		assert.Equal(t, 40.0, after.TotalAmount)
	})
}
