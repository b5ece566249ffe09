// Package domain defines cart lines and the enriched cart view.
package domain

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/storefront/internal/errors"
	productDomain "github.com/allisson/storefront/internal/product/domain"
)

// CartItem is one product line of a user's cart. A user holds at most one line
// per product.
type CartItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CartLine is a cart item with the product it references. Product is nil when the
// product no longer exists.
type CartLine struct {
	CartItem
	Product *productDomain.Product `json:"product"`
}

// Cart is the enriched view of a user's cart. It is the shape cached under cart:<userId>.
type Cart struct {
	Items       []*CartLine `json:"items"`
	TotalItems  int         `json:"totalItems"`
	TotalAmount float64     `json:"totalAmount"`
}

// NewCart totals the lines. Lines without a product count towards TotalItems
// but not towards TotalAmount.
func NewCart(lines []*CartLine) *Cart {
	if lines == nil {
		lines = []*CartLine{}
	}
	cart := &Cart{Items: lines}
	for _, line := range lines {
		cart.TotalItems += line.Quantity
		if line.Product != nil {
			cart.TotalAmount += line.Product.Price * float64(line.Quantity)
		}
	}
	cart.TotalAmount = math.Round(cart.TotalAmount*100) / 100
	return cart
}

var (
	// ErrCartItemNotFound indicates the user has no line for the product.
	ErrCartItemNotFound = errors.Wrap(errors.ErrNotFound, "cart item not found")

	// ErrProductNotFound indicates an add for a product that does not exist.
	ErrProductNotFound = errors.Wrap(errors.ErrNotFound, "product not found")
)
