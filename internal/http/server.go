// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/storefront/internal/auth/http"
	authUseCase "github.com/allisson/storefront/internal/auth/usecase"
	cartHTTP "github.com/allisson/storefront/internal/cart/http"
	"github.com/allisson/storefront/internal/config"
	"github.com/allisson/storefront/internal/metrics"
	productHTTP "github.com/allisson/storefront/internal/product/http"
	userHTTP "github.com/allisson/storefront/internal/user/http"
)

// Pinger reports whether a backing service answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectionChecker reports whether a long-lived connection is still open.
type ConnectionChecker interface {
	IsConnected() bool
}

// Server represents the HTTP server.
type Server struct {
	db     *sql.DB
	cache  Pinger
	broker ConnectionChecker
	server *http.Server
	logger *slog.Logger
	router *gin.Engine
}

// RouterConfig holds the handlers and collaborators mounted by SetupRouter.
type RouterConfig struct {
	Config          *config.Config
	AuthHandler     *userHTTP.AuthHandler
	ProductHandler  *productHTTP.ProductHandler
	CartHandler     *cartHTTP.CartHandler
	TokenUseCase    authUseCase.TokenUseCase
	MetricsProvider *metrics.Provider
	Cache           Pinger
	Broker          ConnectionChecker
}

// NewServer creates a new HTTP server. The router is mounted by SetupRouter.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: newHTTPServer(host, port, nil),
	}
}

// SetupRouter registers every API route. ctx bounds the background cleanup of the
// rate limiters.
func (s *Server) SetupRouter(ctx context.Context, rc RouterConfig) {
	cfg := rc.Config
	s.cache = rc.Cache
	s.broker = rc.Broker

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsEnabled && rc.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(rc.MetricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	authenticated := []gin.HandlerFunc{authHTTP.AuthenticationMiddleware(rc.TokenUseCase, s.logger)}
	if cfg.RateLimitEnabled {
		authenticated = append(
			authenticated,
			authHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger),
		)
	}

	var credentials []gin.HandlerFunc
	if cfg.RateLimitAuthEnabled {
		credentials = append(
			credentials,
			authHTTP.IPRateLimitMiddleware(ctx, cfg.RateLimitAuthRequestsPerSec, cfg.RateLimitAuthBurst, s.logger),
		)
	}

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", with(credentials, rc.AuthHandler.RegisterHandler)...)
		auth.POST("/login", with(credentials, rc.AuthHandler.LoginHandler)...)
		auth.POST("/refresh", with(credentials, rc.AuthHandler.RefreshHandler)...)
		auth.POST("/logout", rc.AuthHandler.LogoutHandler)
		auth.GET("/profile", with(authenticated, rc.AuthHandler.ProfileHandler)...)
	}

	products := api.Group("/products")
	{
		products.GET("", rc.ProductHandler.ListHandler)
		products.GET("/category/:category", rc.ProductHandler.ListByCategoryHandler)
		products.GET("/:id", rc.ProductHandler.GetHandler)
		products.POST("", with(authenticated, rc.ProductHandler.CreateHandler)...)
		products.PUT("/:id", with(authenticated, rc.ProductHandler.UpdateHandler)...)
		products.DELETE("/:id", with(authenticated, rc.ProductHandler.DeleteHandler)...)
	}

	cart := api.Group("/cart", authenticated...)
	{
		cart.GET("", rc.CartHandler.GetHandler)
		cart.DELETE("", rc.CartHandler.ClearHandler)
		cart.POST("/items", rc.CartHandler.AddItemHandler)
		cart.PUT("/items/:productId", rc.CartHandler.UpdateItemHandler)
		cart.DELETE("/items/:productId", rc.CartHandler.RemoveItemHandler)
	}

	s.router = router
}

// with returns middlewares followed by handler without sharing the backing array.
func with(middlewares []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	return append(slices.Clone(middlewares), handler)
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler answers 200 only when the database, the cache and the broker are
// all reachable. Components that were not configured are left out of the report.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	components := gin.H{}
	ready := true

	if s.db == nil || s.db.PingContext(ctx) != nil {
		components["database"] = "error"
		ready = false
	} else {
		components["database"] = "ok"
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			components["cache"] = "error"
			ready = false
		} else {
			components["cache"] = "ok"
		}
	}

	if s.broker != nil {
		if !s.broker.IsConnected() {
			components["broker"] = "error"
			ready = false
		} else {
			components["broker"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
