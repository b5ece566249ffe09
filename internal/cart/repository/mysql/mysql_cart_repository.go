// Package mysql provides cart persistence for MySQL.
package mysql

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

// MySQLCartRepository handles cart item persistence for MySQL. IDs are stored as BINARY(16).
type MySQLCartRepository struct {
	db *sql.DB
}

// NewMySQLCartRepository creates a new MySQLCartRepository.
func NewMySQLCartRepository(db *sql.DB) *MySQLCartRepository {
	return &MySQLCartRepository{db: db}
}

func marshalIDs(ids ...uuid.UUID) ([]any, error) {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		b, err := id.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// AddQuantity inserts the line or, when the user already has one for the product,
// increments its quantity. The stored line is read back afterwards.
func (r *MySQLCartRepository) AddQuantity(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	querier := database.GetTx(ctx, r.db)

	ids, err := marshalIDs(item.ID, item.UserID, item.ProductID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal cart item ids")
	}

	query := `INSERT INTO cart_items (id, user_id, product_id, quantity, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity), updated_at = VALUES(updated_at)`

	args := append(ids, item.Quantity, item.CreatedAt, item.UpdatedAt)
	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		return nil, apperrors.Wrap(err, "failed to add cart item")
	}
	return r.GetItem(ctx, item.UserID, item.ProductID)
}

// GetItem retrieves the user's line for a product.
func (r *MySQLCartRepository) GetItem(ctx context.Context, userID, productID uuid.UUID) (*domain.CartItem, error) {
	querier := database.GetTx(ctx, r.db)

	ids, err := marshalIDs(userID, productID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal cart item ids")
	}

	query := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE user_id = ? AND product_id = ?`

	item, err := scanCartItem(querier.QueryRowContext(ctx, query, ids...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get cart item")
	}
	return item, nil
}

// UpdateQuantity sets the quantity of an existing line. MySQL reports zero affected
// rows when nothing changed, so that case is confirmed with a lookup.
func (r *MySQLCartRepository) UpdateQuantity(ctx context.Context, item *domain.CartItem) error {
	querier := database.GetTx(ctx, r.db)

	ids, err := marshalIDs(item.UserID, item.ProductID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal cart item ids")
	}

	query := `UPDATE cart_items SET quantity = ?, updated_at = ? WHERE user_id = ? AND product_id = ?`

	args := append([]any{item.Quantity, item.UpdatedAt}, ids...)
	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Wrap(err, "failed to update cart item")
	}

	updated, err := database.Affected(result)
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if !updated {
		_, err := r.GetItem(ctx, item.UserID, item.ProductID)
		return err
	}
	return nil
}

// DeleteItem removes the user's line for a product.
func (r *MySQLCartRepository) DeleteItem(ctx context.Context, userID, productID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	ids, err := marshalIDs(userID, productID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal cart item ids")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`, ids...)
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
func (r *MySQLCartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	querier := database.GetTx(ctx, r.db)

	ids, err := marshalIDs(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE user_id = ? ORDER BY created_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, ids...)
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
func (r *MySQLCartRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	ids, err := marshalIDs(userID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal user id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, ids...)
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
	var id, userID, productID []byte
	if err := row.Scan(&id, &userID, &productID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	if err := item.ID.UnmarshalBinary(id); err != nil {
		return nil, err
	}
	if err := item.UserID.UnmarshalBinary(userID); err != nil {
		return nil, err
	}
	if err := item.ProductID.UnmarshalBinary(productID); err != nil {
		return nil, err
	}
	return &item, nil
}
