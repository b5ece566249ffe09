// Package postgresql provides cart persistence for PostgreSQL.
package postgresql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/storefront/internal/cart/domain"
	"github.com/allisson/storefront/internal/database"
	apperrors "github.com/allisson/storefront/internal/errors"
)

const cartItemColumns = "id, user_id, product_id, quantity, created_at, updated_at"

// PostgreSQLCartRepository handles cart item persistence for PostgreSQL.
type PostgreSQLCartRepository struct {
	db *sql.DB
}

// NewPostgreSQLCartRepository creates a new PostgreSQLCartRepository.
func NewPostgreSQLCartRepository(db *sql.DB) *PostgreSQLCartRepository {
	return &PostgreSQLCartRepository{db: db}
}

// AddQuantity inserts the line or, when the user already has one for the product,
// increments its quantity. The stored line is returned.
func (r *PostgreSQLCartRepository) AddQuantity(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO cart_items (id, user_id, product_id, quantity, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (user_id, product_id)
			  DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
			  RETURNING ` + cartItemColumns

	stored, err := scanCartItem(querier.QueryRowContext(
		ctx,
		query,
		item.ID,
		item.UserID,
		item.ProductID,
		item.Quantity,
		item.CreatedAt,
		item.UpdatedAt,
	))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to add cart item")
	}
	return stored, nil
}

// GetItem retrieves the user's line for a product.
func (r *PostgreSQLCartRepository) GetItem(
	ctx context.Context,
	userID, productID uuid.UUID,
) (*domain.CartItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE user_id = $1 AND product_id = $2`

	item, err := scanCartItem(querier.QueryRowContext(ctx, query, userID, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get cart item")
	}
	return item, nil
}

// UpdateQuantity sets the quantity of an existing line.
func (r *PostgreSQLCartRepository) UpdateQuantity(ctx context.Context, item *domain.CartItem) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE cart_items SET quantity = $1, updated_at = $2 WHERE user_id = $3 AND product_id = $4`

	result, err := querier.ExecContext(ctx, query, item.Quantity, item.UpdatedAt, item.UserID, item.ProductID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update cart item")
	}

	updated, err := database.Affected(result)
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if !updated {
		return domain.ErrCartItemNotFound
	}
	return nil
}

// DeleteItem removes the user's line for a product.
func (r *PostgreSQLCartRepository) DeleteItem(ctx context.Context, userID, productID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`,
		userID,
		productID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete cart item")
	}

	deleted, err := database.Affected(result)
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if !deleted {
		return domain.ErrCartItemNotFound
	}
	return nil
}

// ListByUser returns the user's lines, oldest first.
func (r *PostgreSQLCartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE user_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list cart items")
	}
	defer func() {
		_ = rows.Close()
	}()

	items := make([]*domain.CartItem, 0)
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan cart item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate cart items")
	}
	return items, nil
}

// DeleteByUser removes every line of the user's cart and returns how many were removed.
func (r *PostgreSQLCartRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to clear cart")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCartItem(row rowScanner) (*domain.CartItem, error) {
	var item domain.CartItem
	err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
