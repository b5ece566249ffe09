// Package domain defines the catalog entities and listing queries.
package domain

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/storefront/internal/errors"
)

// Product is a catalog entry. It is the shape cached under product:<id>.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Listing defaults.
const (
	DefaultPage      = 1
	DefaultLimit     = 10
	MaxLimit         = 100
	DefaultSortBy    = "createdAt"
	DefaultSortOrder = SortDesc
)

// sortColumns maps the accepted sortBy values to their column names.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"price":     "price",
	"stock":     "stock",
	"category":  "category",
}

// ListQuery selects a page of products. Its JSON encoding is the cache identity of
// the listing, so every field that changes the result must be part of it.
type ListQuery struct {
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	Search    string `json:"search,omitempty"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
	Category  string `json:"category,omitempty"`
}

// Normalize fills defaults for zero values.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = DefaultSortBy
	}
	if q.SortOrder == "" {
		q.SortOrder = DefaultSortOrder
	}
	return q
}

// Offset is the number of rows skipped before the page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// SortColumn returns the column for SortBy and whether SortBy is accepted.
func (q ListQuery) SortColumn() (string, bool) {
	column, ok := sortColumns[q.SortBy]
	return column, ok
}

// Pagination describes a page within a listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination computes the page count for total rows.
func NewPagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

// ProductPage is one page of a listing. It is the shape cached under products:<hash>.
type ProductPage struct {
	Data       []*Product `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Domain-specific errors for catalog operations.
var (
	// ErrProductNotFound indicates the requested product does not exist.
	ErrProductNotFound = errors.Wrap(errors.ErrNotFound, "product not found")
)
