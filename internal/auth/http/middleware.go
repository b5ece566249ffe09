package http

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/storefront/internal/auth/domain"
	authUseCase "github.com/allisson/storefront/internal/auth/usecase"
	apperrors "github.com/allisson/storefront/internal/errors"
	"github.com/allisson/storefront/internal/httputil"
)

// AuthenticationMiddleware verifies the access token in "Authorization: Bearer <token>"
// (scheme is case-insensitive) and stores its claims in the request context.
//
// Missing, malformed, invalid and expired tokens all answer 401; the debug log
// records which one it was.
func AuthenticationMiddleware(tokenUseCase authUseCase.TokenUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		accessToken := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if accessToken == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		claims, err := tokenUseCase.Authenticate(c.Request.Context(), accessToken)
		if err != nil {
			reason := "invalid"
			if errors.Is(err, authDomain.ErrExpiredCredential) {
				reason = "expired"
			}
			logger.Debug("authentication failed", slog.String("reason", reason))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))

		logger.Debug("authentication successful", slog.String("user_id", claims.SubjectID.String()))

		c.Next()
	}
}
