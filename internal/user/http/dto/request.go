// Package dto provides data transfer objects for the identity endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/allisson/storefront/internal/user/usecase"
	customValidation "github.com/allisson/storefront/internal/validation"
)

// RegisterRequest contains the parameters for creating an account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks if the register request is valid.
func (r *RegisterRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(2, 255),
		),
		validation.Field(&r.Email,
			validation.Required,
			customValidation.Email,
		),
		validation.Field(&r.Password,
			validation.Required,
			customValidation.Password,
		),
	)
}

// ToInput converts the request to the use case input.
func (r *RegisterRequest) ToInput() usecase.RegisterInput {
	return usecase.RegisterInput{Name: r.Name, Email: r.Email, Password: r.Password}
}

// LoginRequest contains the credentials presented at login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks if the login request is valid.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, customValidation.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// ToInput converts the request to the use case input.
func (r *LoginRequest) ToInput() usecase.LoginInput {
	return usecase.LoginInput{Email: r.Email, Password: r.Password}
}

// RefreshTokenRequest carries a refresh credential for rotation or logout.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Validate requires a non-blank refresh token.
func (r *RefreshTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RefreshToken,
			validation.Required.Error("refresh token is required"),
			customValidation.NotBlank,
		),
	)
}
