// Package http provides HTTP handlers for the authenticated user's cart.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/storefront/internal/auth/http"
	"github.com/allisson/storefront/internal/cart/http/dto"
	"github.com/allisson/storefront/internal/cart/usecase"
	apperrors "github.com/allisson/storefront/internal/errors"
	"github.com/allisson/storefront/internal/httputil"
	customValidation "github.com/allisson/storefront/internal/validation"
)

// CartHandler handles the endpoints under /api/cart. Every route requires a bearer access token.
type CartHandler struct {
	cartUseCase usecase.UseCase
	logger      *slog.Logger
}

// NewCartHandler creates a new cart handler with required dependencies.
func NewCartHandler(cartUseCase usecase.UseCase, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		cartUseCase: cartUseCase,
		logger:      logger,
	}
}

func (h *CartHandler) subject(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := authHTTP.GetSubjectID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
	}
	return userID, ok
}

func parseProductID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid product id format: must be a valid UUID")
	}
	return id, nil
}

// GetHandler returns the enriched cart.
// GET /api/cart
func (h *CartHandler) GetHandler(c *gin.Context) {
	userID, ok := h.subject(c)
	if !ok {
		return
	}

	cart, err := h.cartUseCase.Get(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.RespondGin(c, http.StatusOK, "Cart retrieved successfully", cart)
}

// AddItemHandler adds units of a product to the cart.
// POST /api/cart/items - Returns 201 Created.
func (h *CartHandler) AddItemHandler(c *gin.Context) {
	userID, ok := h.subject(c)
	if !ok {
		return
	}

	var req dto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	item, err := h.cartUseCase.Add(c.Request.Context(), userID, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.RespondGin(c, http.StatusCreated, "Item added to cart successfully", item)
}

// UpdateItemHandler sets the quantity of a cart line.
// PUT /api/cart/items/:productId
func (h *CartHandler) UpdateItemHandler(c *gin.Context) {
	userID, ok := h.subject(c)
	if !ok {
		return
	}

	productID, err := parseProductID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	item, err := h.cartUseCase.Update(c.Request.Context(), userID, productID, *req.Quantity)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.RespondGin(c, http.StatusOK, "Cart item updated successfully", item)
}

// RemoveItemHandler deletes a cart line.
// DELETE /api/cart/items/:productId
func (h *CartHandler) RemoveItemHandler(c *gin.Context) {
	userID, ok := h.subject(c)
	if !ok {
		return
	}

	productID, err := parseProductID(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.cartUseCase.Remove(c.Request.Context(), userID, productID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.RespondGin(c, http.StatusOK, "Item removed from cart successfully", nil)
}

// ClearHandler deletes every cart line.
// DELETE /api/cart
func (h *CartHandler) ClearHandler(c *gin.Context) {
	userID, ok := h.subject(c)
	if !ok {
		return
	}

	if err := h.cartUseCase.Clear(c.Request.Context(), userID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.RespondGin(c, http.StatusOK, "Cart cleared successfully", nil)
}
