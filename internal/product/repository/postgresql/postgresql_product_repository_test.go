package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/storefront/internal/errors"
	"github.com/allisson/storefront/internal/product/domain"
)

var columns = []string{"id", "name", "description", "price", "stock", "category", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func sampleProduct() *domain.Product {
	now := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	return &domain.Product{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        "Trail Shoe",
		Description: "Lightweight trail running shoe",
		Price:       129.9,
		Stock:       12,
		Category:    "footwear",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestPostgreSQLProductRepository_Create(t *testing.T) {
	ctx := context.Background()
	p := sampleProduct()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`INSERT INTO products`).
			WithArgs(p.ID, p.Name, p.Description, p.Price, p.Stock, p.Category, p.CreatedAt, p.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgreSQLProductRepository(db).Create(ctx, p))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_Database", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`INSERT INTO products`).WillReturnError(errors.New("connection refused"))

		err := NewPostgreSQLProductRepository(db).Create(ctx, p)
		assert.ErrorContains(t, err, "failed to create product")
	})
}

func TestPostgreSQLProductRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	p := sampleProduct()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FROM products WHERE id = \$1`).
			WithArgs(p.ID).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(p.ID.String(), p.Name, p.Description, "129.90", p.Stock, p.Category, p.CreatedAt, p.UpdatedAt))

		got, err := NewPostgreSQLProductRepository(db).GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		assert.InDelta(t, 129.9, got.Price, 0.001)
		assert.Equal(t, 12, got.Stock)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FROM products WHERE id`).WillReturnRows(sqlmock.NewRows(columns))

		_, err := NewPostgreSQLProductRepository(db).GetByID(ctx, p.ID)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}

func TestPostgreSQLProductRepository_Update(t *testing.T) {
	ctx := context.Background()
	p := sampleProduct()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE products`).
			WithArgs(p.Name, p.Description, p.Price, p.Stock, p.Category, p.UpdatedAt, p.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgreSQLProductRepository(db).Update(ctx, p))
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`UPDATE products`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPostgreSQLProductRepository(db).Update(ctx, p)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}

func TestPostgreSQLProductRepository_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgreSQLProductRepository(db).Delete(ctx, id))
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(`DELETE FROM products`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPostgreSQLProductRepository(db).Delete(ctx, id)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}

func TestPostgreSQLProductRepository_List(t *testing.T) {
	ctx := context.Background()
	p := sampleProduct()

	t.Run("Success_DefaultQuery", func(t *testing.T) {
		db, mock := newMockDB(t)
		query := domain.ListQuery{}.Normalize()
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM products$`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`FROM products ORDER BY created_at DESC, id DESC LIMIT \$1 OFFSET \$2`).
			WithArgs(10, 0).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(p.ID.String(), p.Name, p.Description, p.Price, p.Stock, p.Category, p.CreatedAt, p.UpdatedAt))

		products, total, err := NewPostgreSQLProductRepository(db).List(ctx, query)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, products, 1)
		assert.Equal(t, p.Name, products[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_SearchAllFields", func(t *testing.T) {
		db, mock := newMockDB(t)
		query := domain.ListQuery{Page: 2, Limit: 5, Search: "shoe", SortBy: "price", SortOrder: "asc"}
		mock.ExpectQuery(`COUNT\(\*\) FROM products WHERE \(name ILIKE \$1 OR description ILIKE \$1 OR category ILIKE \$1\)`).
			WithArgs("%shoe%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`ORDER BY price ASC, id ASC LIMIT \$2 OFFSET \$3`).
			WithArgs("%shoe%", 5, 5).
			WillReturnRows(sqlmock.NewRows(columns))

		products, total, err := NewPostgreSQLProductRepository(db).List(ctx, query)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.Empty(t, products)
		assert.NotNil(t, products)
	})

	t.Run("Success_CategoryWithSearch", func(t *testing.T) {
		db, mock := newMockDB(t)
		query := domain.ListQuery{Search: "trail", Category: "footwear"}.Normalize()
		mock.ExpectQuery(`WHERE category = \$1 AND \(name ILIKE \$2 OR description ILIKE \$2\)`).
			WithArgs("footwear", "%trail%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`LIMIT \$3 OFFSET \$4`).
			WithArgs("footwear", "%trail%", 10, 0).
			WillReturnRows(sqlmock.NewRows(columns))

		_, _, err := NewPostgreSQLProductRepository(db).List(ctx, query)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_UnsupportedSortField", func(t *testing.T) {
		db, _ := newMockDB(t)
		query := domain.ListQuery{SortBy: "password"}.Normalize()

		_, _, err := NewPostgreSQLProductRepository(db).List(ctx, query)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})
}
