package http

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const wildcardOrigin = "*"

// createCORSMiddleware builds the CORS layer for a browser storefront on another
// origin. It returns nil when CORS is off or no origin survives parsing.
//
// CORS_ALLOW_ORIGINS is a comma-separated list. "*" allows any origin, in which
// case credentials are not allowed; explicit origins may send the Authorization
// header with credentials.
func createCORSMiddleware(enabled bool, allowOrigins string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOrigins)
	if len(origins) == 0 {
		logger.Warn("CORS enabled without any origin, CORS headers will not be sent")
		return nil
	}

	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}

	if slices.Contains(origins, wildcardOrigin) {
		cfg.AllowAllOrigins = true
		logger.Warn("CORS allows every origin, credentials disabled")
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
		logger.Info("CORS enabled", slog.Any("origins", origins))
	}

	return cors.New(cfg)
}

// parseOrigins splits a comma-separated list, dropping blanks, duplicates and
// trailing slashes, which browsers never send in Origin.
func parseOrigins(value string) []string {
	var origins []string
	for part := range strings.SplitSeq(value, ",") {
		origin := strings.TrimRight(strings.TrimSpace(part), "/")
		if origin != "" && !slices.Contains(origins, origin) {
			origins = append(origins, origin)
		}
	}
	return origins
}
