// Package mysql provides catalog persistence for MySQL.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/storefront/internal/database"
	apperrors "github.com/allisson/storefront/internal/errors"
	"github.com/allisson/storefront/internal/product/domain"
)

const productColumns = "id, name, description, price, stock, category, created_at, updated_at"

// MySQLProductRepository handles product persistence for MySQL. IDs are stored as BINARY(16).
type MySQLProductRepository struct {
	db *sql.DB
}

// NewMySQLProductRepository creates a new MySQLProductRepository.
func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

// Create inserts a new product.
func (r *MySQLProductRepository) Create(ctx context.Context, product *domain.Product) error {
	querier := database.GetTx(ctx, r.db)

	id, err := product.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal product id")
	}

	query := `INSERT INTO products (id, name, description, price, stock, category, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query,
		id, product.Name, product.Description, product.Price, product.Stock, product.Category,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create product")
	}
	return nil
}

// GetByID retrieves a product by ID.
func (r *MySQLProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal product id")
	}

	row := querier.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, idBytes)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get product by id")
	}
	return product, nil
}

// Update overwrites every mutable column of an existing product.
func (r *MySQLProductRepository) Update(ctx context.Context, product *domain.Product) error {
	querier := database.GetTx(ctx, r.db)

	id, err := product.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal product id")
	}

	query := `UPDATE products
			  SET name = ?, description = ?, price = ?, stock = ?, category = ?, updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(ctx, query,
		product.Name, product.Description, product.Price, product.Stock, product.Category,
		product.UpdatedAt, id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update product")
	}

	// MySQL reports matched rows only when values changed, so a no-op update of an
	// existing row is confirmed with a lookup.
	updated, err := database.Affected(result)
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if !updated {
		if _, err := r.GetByID(ctx, product.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a product.
func (r *MySQLProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal product id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete product")
	}

	deleted, err := database.Affected(result)
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if !deleted {
		return domain.ErrProductNotFound
	}
	return nil
}

// List returns one page of products and the total number of matching rows. When
// query.Category is set the search term only matches name and description.
func (r *MySQLProductRepository) List(ctx context.Context, query domain.ListQuery) ([]*domain.Product, int64, error) {
	querier := database.GetTx(ctx, r.db)

	column, ok := query.SortColumn()
	if !ok {
		return nil, 0, apperrors.Wrap(apperrors.ErrInvalidInput, "unsupported sort field")
	}
	direction := "DESC"
	if query.SortOrder == domain.SortAsc {
		direction = "ASC"
	}

	var conditions []string
	var args []any
	if query.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, query.Category)
	}
	if query.Search != "" {
		pattern := strings.ToLower(database.ContainsPattern(query.Search))
		if query.Category != "" {
			conditions = append(conditions, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
			args = append(args, pattern, pattern)
		} else {
			conditions = append(conditions,
				"(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?)")
			args = append(args, pattern, pattern, pattern)
		}
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to count products")
	}

	listQuery := `SELECT ` + productColumns + ` FROM products` + where +
		` ORDER BY ` + column + ` ` + direction + `, id ` + direction + ` LIMIT ? OFFSET ?`
	args = append(args, query.Limit, query.Offset())

	rows, err := querier.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to list products")
	}
	defer func() {
		_ = rows.Close()
	}()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, apperrors.Wrap(err, "failed to scan product")
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.Wrap(err, "failed to iterate products")
	}

	return products, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var id []byte
	err := row.Scan(&id, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := p.ID.UnmarshalBinary(id); err != nil {
		return nil, err
	}
	return &p, nil
}
