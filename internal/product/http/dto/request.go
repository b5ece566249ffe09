// Package dto provides data transfer objects for the catalog endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/allisson/storefront/internal/product/usecase"
	customValidation "github.com/allisson/storefront/internal/validation"
)

// CreateProductRequest contains the fields of a new product.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       *int    `json:"stock"`
	Category    string  `json:"category"`
}

// Validate checks if the create request is valid.
func (r *CreateProductRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Description, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Price, customValidation.PositiveAmount),
		validation.Field(&r.Stock, validation.NotNil.Error("stock is required"), validation.Min(0)),
		validation.Field(&r.Category, validation.Required, customValidation.NotBlank),
	)
}

// ToInput converts the request to the use case input.
func (r *CreateProductRequest) ToInput() usecase.CreateInput {
	input := usecase.CreateInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
	}
	if r.Stock != nil {
		input.Stock = *r.Stock
	}
	return input
}

// UpdateProductRequest is a partial update; omitted fields keep their value.
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Category    *string  `json:"category"`
}

// Validate checks if the update request is valid.
func (r *UpdateProductRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, customValidation.NotBlank),
		validation.Field(&r.Description, validation.NilOrNotEmpty, customValidation.NotBlank),
		validation.Field(&r.Price, customValidation.PositiveAmount),
		validation.Field(&r.Stock, validation.Min(0)),
		validation.Field(&r.Category, validation.NilOrNotEmpty, customValidation.NotBlank),
	)
}

// ToInput converts the request to the use case input.
func (r *UpdateProductRequest) ToInput() usecase.UpdateInput {
	return usecase.UpdateInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Category:    r.Category,
	}
}
