package postgresql

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/storefront/internal/cart/domain"
	"github.com/allisson/storefront/internal/testutil"
)

func TestPostgreSQLCartRepository_Integration(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)

	ctx := context.Background()
	repo := NewPostgreSQLCartRepository(db)
	userID := testutil.CreateTestUser(t, db, "postgres", "cart@example.com")
	productID := testutil.CreateTestProduct(t, db, "postgres", "Mouse", "peripherals", 19.5)

	newItem := func(quantity int) *domain.CartItem {
		now := time.Now().UTC()
		return &domain.CartItem{
			ID:        uuid.Must(uuid.NewV7()),
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	t.Run("Success_AddIncrementsExistingLine", func(t *testing.T) {
		first, err := repo.AddQuantity(ctx, newItem(2))
		require.NoError(t, err)
		assert.Equal(t, 2, first.Quantity)

		second, err := repo.AddQuantity(ctx, newItem(3))
		require.NoError(t, err)
		assert.Equal(t, 5, second.Quantity)
		assert.Equal(t, first.ID, second.ID)

		assert.Equal(t, 1, testutil.CountRows(t, db, "cart_items"))
	})

	t.Run("Success_ClearRemovesAllLines", func(t *testing.T) {
		items, err := repo.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, items, 1)

		deleted, err := repo.DeleteByUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		_, err = repo.GetItem(ctx, userID, productID)
		assert.ErrorIs(t, err, domain.ErrCartItemNotFound)
	})
}
