// Package http provides HTTP handlers for account registration, login and profile access.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/storefront/internal/auth/http"
	apperrors "github.com/allisson/storefront/internal/errors"
	"github.com/allisson/storefront/internal/httputil"
	"github.com/allisson/storefront/internal/user/http/dto"
	"github.com/allisson/storefront/internal/user/usecase"
	customValidation "github.com/allisson/storefront/internal/validation"
)

// AuthHandler handles the identity endpoints under /api/auth.
type AuthHandler struct {
	userUseCase usecase.UseCase
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(userUseCase usecase.UseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// RegisterHandler creates an account and returns the first credential pair.
// POST /api/auth/register - Returns 201 Created.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.userUseCase.Register(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.RespondGin(c, http.StatusCreated, "User registered successfully", dto.MapAuthResultToResponse(result))
}

// LoginHandler exchanges credentials for a credential pair.
// POST /api/auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.userUseCase.Login(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.RespondGin(c, http.StatusOK, "Login successful", dto.MapAuthResultToResponse(result))
}

// RefreshHandler rotates a refresh credential.
// POST /api/auth/refresh
func (h *AuthHandler) RefreshHandler(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	result, err := h.userUseCase.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.RespondGin(c, http.StatusOK, "Token refreshed successfully", dto.MapAuthResultToResponse(result))
}

// LogoutHandler revokes the refresh credential when one is supplied. It always succeeds
// for a well-formed body, including an unknown or already revoked credential.
// POST /api/auth/logout
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.HandleBadRequestGin(c, err, h.logger)
			return
		}
	}

	if req.Validate() == nil {
		if err := h.userUseCase.Logout(c.Request.Context(), req.RefreshToken); err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
	}

	httputil.RespondGin(c, http.StatusOK, "Logged out successfully", nil)
}

// ProfileHandler returns the authenticated user's profile.
// GET /api/auth/profile - Requires a bearer access token.
func (h *AuthHandler) ProfileHandler(c *gin.Context) {
	userID, ok := authHTTP.GetSubjectID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	profile, err := h.userUseCase.Profile(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	httputil.RespondGin(c, http.StatusOK, "Profile retrieved successfully", dto.ProfileResponse{User: profile})
}
