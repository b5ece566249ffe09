// Package http provides HTTP handlers for the product catalog.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/storefront/internal/httputil"
	"github.com/allisson/storefront/internal/product/domain"
	"github.com/allisson/storefront/internal/product/http/dto"
	"github.com/allisson/storefront/internal/product/usecase"
	customValidation "github.com/allisson/storefront/internal/validation"
)

// ProductHandler handles the endpoints under /api/products.
type ProductHandler struct {
	productUseCase usecase.UseCase
	logger         *slog.Logger
}

// NewProductHandler creates a new product handler with required dependencies.
func NewProductHandler(productUseCase usecase.UseCase, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		productUseCase: productUseCase,
		logger:         logger,
	}
}

// parseListQuery reads page, limit, search, sortBy and sortOrder from the query string.
func parseListQuery(c *gin.Context) (domain.ListQuery, error) {
	page, limit, err := httputil.ParsePagePagination(c, domain.DefaultLimit)
	if err != nil {
		return domain.ListQuery{}, err
	}
	return domain.ListQuery{
		Page:      page,
		Limit:     limit,
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}.Normalize(), nil
}

func parseProductID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid product id format: must be a valid UUID")
	}
	return id, nil
}

// ListHandler returns one page of the catalog.
// GET /api/products?page=&limit=&search=&sortBy=&sortOrder=
func (h *ProductHandler) ListHandler(c *gin.Context) {
	query, err := parseListQuery(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	page, err := h.productUseCase.List(c.Request.Context(), query)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.RespondPageGin(c, "Products retrieved successfully", page.Data, page.Pagination)
}

// GetHandler returns a single product.
// GET /api/products/:id
func (h *ProductHandler) GetHandler(c *gin.Context) {
	id, err := parseProductID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	product, err := h.productUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.RespondGin(c, http.StatusOK, "Product retrieved successfully", product)
}

// ListByCategoryHandler returns one page of a category.
// GET /api/products/category/:category
func (h *ProductHandler) ListByCategoryHandler(c *gin.Context) {
	query, err := parseListQuery(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	page, err := h.productUseCase.ListByCategory(c.Request.Context(), c.Param("category"), query)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.RespondPageGin(c, "Products retrieved successfully", page.Data, page.Pagination)
}

// CreateHandler creates a product.
// POST /api/products - Requires a bearer access token. Returns 201 Created.
func (h *ProductHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	product, err := h.productUseCase.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.RespondGin(c, http.StatusCreated, "Product created successfully", product)
}

// UpdateHandler applies a partial update.
// PUT /api/products/:id - Requires a bearer access token.
func (h *ProductHandler) UpdateHandler(c *gin.Context) {
	id, err := parseProductID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	product, err := h.productUseCase.Update(c.Request.Context(), id, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.RespondGin(c, http.StatusOK, "Product updated successfully", product)
}

// DeleteHandler removes a product.
// DELETE /api/products/:id - Requires a bearer access token.
func (h *ProductHandler) DeleteHandler(c *gin.Context) {
	id, err := parseProductID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.productUseCase.Delete(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.RespondGin(c, http.StatusOK, "Product deleted successfully", nil)
}
