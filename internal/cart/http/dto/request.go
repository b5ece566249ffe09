// Package dto provides data transfer objects for the cart endpoints.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/storefront/internal/cart/usecase"
	customValidation "github.com/allisson/storefront/internal/validation"
)

// AddItemRequest adds units of a product to the cart. A malformed productId is
// rejected while binding.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  *int      `json:"quantity"`
}

// Validate checks if the add request is valid.
func (r *AddItemRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ProductID, customValidation.RequiredID),
		validation.Field(&r.Quantity,
			validation.NotNil.Error("quantity is required"),
			validation.Min(1).Error("quantity must be positive"),
		),
	)
}

// ToInput converts the request to the use case input.
func (r *AddItemRequest) ToInput() usecase.AddItemInput {
	input := usecase.AddItemInput{ProductID: r.ProductID}
	if r.Quantity != nil {
		input.Quantity = *r.Quantity
	}
	return input
}

// UpdateItemRequest sets the quantity of a cart line.
type UpdateItemRequest struct {
	Quantity *int `json:"quantity"`
}

// Validate checks if the update request is valid.
func (r *UpdateItemRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Quantity,
			validation.NotNil.Error("quantity is required"),
			validation.Min(1).Error("quantity must be positive"),
		),
	)
}
