// Package postgresql provides catalog persistence for PostgreSQL.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/storefront/internal/database"
	apperrors "github.com/allisson/storefront/internal/errors"
	"github.com/allisson/storefront/internal/product/domain"
)

const productColumns = "id, name, description, price, stock, category, created_at, updated_at"

// PostgreSQLProductRepository handles product persistence for PostgreSQL.
type PostgreSQLProductRepository struct {
	db *sql.DB
}

// NewPostgreSQLProductRepository creates a new PostgreSQLProductRepository.
func NewPostgreSQLProductRepository(db *sql.DB) *PostgreSQLProductRepository {
	return &PostgreSQLProductRepository{db: db}
}

// Create inserts a new product.
func (r *PostgreSQLProductRepository) Create(ctx context.Context, product *domain.Product) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO products (id, name, description, price, stock, category, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.Category,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create product")
	}
	return nil
}

// GetByID retrieves a product by ID.
func (r *PostgreSQLProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get product by id")
	}
	return product, nil
}

// Update overwrites every mutable column of an existing product.
func (r *PostgreSQLProductRepository) Update(ctx context.Context, product *domain.Product) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE products
			  SET name = $1, description = $2, price = $3, stock = $4, category = $5, updated_at = $6
			  WHERE id = $7`

	result, err := querier.ExecContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.Category,
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update product")
	}

	updated, err := database.Affected(result)
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if !updated {
		return domain.ErrProductNotFound
	}
	return nil
}

// Delete removes a product.
func (r *PostgreSQLProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
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
func (r *PostgreSQLProductRepository) List(
	ctx context.Context,
	query domain.ListQuery,
) ([]*domain.Product, int64, error) {
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
		args = append(args, query.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if query.Search != "" {
		args = append(args, database.ContainsPattern(query.Search))
		n := len(args)
		if query.Category != "" {
			conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", n, n))
		} else {
			conditions = append(conditions,
				fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d OR category ILIKE $%d)", n, n, n))
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

	args = append(args, query.Limit, query.Offset())
	listQuery := fmt.Sprintf(
		`SELECT %s FROM products%s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d`,
		productColumns, where, column, direction, direction, len(args)-1, len(args),
	)

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
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
