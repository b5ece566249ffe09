package dto

import (
	"time"

	"github.com/allisson/storefront/internal/user/domain"
	"github.com/allisson/storefront/internal/user/usecase"
)

// AuthResponse is the payload returned by register, login and refresh.
type AuthResponse struct {
	User                  *domain.Profile `json:"user"`
	AccessToken           string          `json:"accessToken"`
	AccessTokenExpiresAt  time.Time       `json:"accessTokenExpiresAt"`
	RefreshToken          string          `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time       `json:"refreshTokenExpiresAt"`
}

// MapAuthResultToResponse flattens a use case result into the response payload.
func MapAuthResultToResponse(result *usecase.AuthResult) AuthResponse {
	return AuthResponse{
		User:                  result.User,
		AccessToken:           result.Tokens.AccessToken,
		AccessTokenExpiresAt:  result.Tokens.AccessTokenExpiresAt,
		RefreshToken:          result.Tokens.RefreshToken,
		RefreshTokenExpiresAt: result.Tokens.RefreshTokenExpiresAt,
	}
}

// ProfileResponse wraps the authenticated user's profile.
type ProfileResponse struct {
	User *domain.Profile `json:"user"`
}
