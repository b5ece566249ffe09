package mysql

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/storefront/internal/cart/domain"
)

var columns = []string{"id", "user_id", "product_id", "quantity", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func binaryID(t *testing.T, id uuid.UUID) []byte {
	t.Helper()
	b, err := id.MarshalBinary()
	require.NoError(t, err)
	return b
}

func newItem(quantity int) *domain.CartItem {
	now := time.Date(2026, 5, 11, 14, 0, 0, 0, time.UTC)
	return &domain.CartItem{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    uuid.Must(uuid.NewV7()),
		ProductID: uuid.Must(uuid.NewV7()),
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func itemRow(t *testing.T, item *domain.CartItem) *sqlmock.Rows {
	return sqlmock.NewRows(columns).AddRow(
		binaryID(t, item.ID), binaryID(t, item.UserID), binaryID(t, item.ProductID),
		item.Quantity, item.CreatedAt, item.UpdatedAt,
	)
}

func TestMySQLCartRepository_AddQuantity(t *testing.T) {
	ctx := context.Background()
	item := newItem(2)

	t.Run("Success_ReadsBackStoredLine", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`INSERT INTO cart_items .* ON DUPLICATE KEY UPDATE quantity = quantity \+ VALUES\(quantity\)`).
			WithArgs(binaryID(t, item.ID), binaryID(t, item.UserID), binaryID(t, item.ProductID), 2,
				item.CreatedAt, item.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 2))
		stored := *item
		stored.Quantity = 6
		mock.ExpectQuery(`FROM cart_items WHERE user_id = \? AND product_id = \?`).
			WithArgs(binaryID(t, item.UserID), binaryID(t, item.ProductID)).
			WillReturnRows(itemRow(t, &stored))

		got, err := NewMySQLCartRepository(db).AddQuantity(ctx, item)
		require.NoError(t, err)
		assert.Equal(t, 6, got.Quantity)
		assert.Equal(t, item.ProductID, got.ProductID)
	})
}

func TestMySQLCartRepository_UpdateQuantity(t *testing.T) {
	ctx := context.Background()
	item := newItem(3)

	t.Run("Success_UnchangedRowConfirmedByLookup", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE cart_items`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`FROM cart_items`).WillReturnRows(itemRow(t, item))

		assert.NoError(t, NewMySQLCartRepository(db).UpdateQuantity(ctx, item))
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE cart_items`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`FROM cart_items`).WillReturnRows(sqlmock.NewRows(columns))

		err := NewMySQLCartRepository(db).UpdateQuantity(ctx, item)
		assert.ErrorIs(t, err, domain.ErrCartItemNotFound)
	})
}

func TestMySQLCartRepository_DeleteItem(t *testing.T) {
	ctx := context.Background()
	item := newItem(1)

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`DELETE FROM cart_items WHERE user_id = \? AND product_id = \?`).
			WithArgs(binaryID(t, item.UserID), binaryID(t, item.ProductID)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewMySQLCartRepository(db).DeleteItem(ctx, item.UserID, item.ProductID))
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`DELETE FROM cart_items`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewMySQLCartRepository(db).DeleteItem(ctx, item.UserID, item.ProductID)
		assert.ErrorIs(t, err, domain.ErrCartItemNotFound)
	})
}

func TestMySQLCartRepository_ListAndDeleteByUser(t *testing.T) {
	ctx := context.Background()
	item := newItem(4)

	t.Run("Success_List", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FROM cart_items WHERE user_id = \? ORDER BY created_at ASC`).
			WithArgs(binaryID(t, item.UserID)).
			WillReturnRows(itemRow(t, item))

		items, err := NewMySQLCartRepository(db).ListByUser(ctx, item.UserID)
		require.NoError(t, err)
		assert.Equal(t, []*domain.CartItem{item}, items)
	})

	t.Run("Success_DeleteByUser", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`DELETE FROM cart_items WHERE user_id = \?`).
			WithArgs(binaryID(t, item.UserID)).
			WillReturnResult(sqlmock.NewResult(0, 3))

		count, err := NewMySQLCartRepository(db).DeleteByUser(ctx, item.UserID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
