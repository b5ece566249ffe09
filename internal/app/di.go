// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	authService "github.com/allisson/storefront/internal/auth/service"
	authUseCase "github.com/allisson/storefront/internal/auth/usecase"
	"github.com/allisson/storefront/internal/cache"
	cartHTTP "github.com/allisson/storefront/internal/cart/http"
	cartUseCase "github.com/allisson/storefront/internal/cart/usecase"
	"github.com/allisson/storefront/internal/config"
	"github.com/allisson/storefront/internal/database"
	deadLetterUseCase "github.com/allisson/storefront/internal/deadletter/usecase"
	"github.com/allisson/storefront/internal/events"
	"github.com/allisson/storefront/internal/http"
	"github.com/allisson/storefront/internal/metrics"
	"github.com/allisson/storefront/internal/notification"
	productHTTP "github.com/allisson/storefront/internal/product/http"
	productUseCase "github.com/allisson/storefront/internal/product/usecase"
	userHTTP "github.com/allisson/storefront/internal/user/http"
	userUseCase "github.com/allisson/storefront/internal/user/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// ctx lives until Shutdown and bounds background work started by components.
	ctx    context.Context
	cancel context.CancelFunc

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	cache           *cache.Cache
	broker          events.Broker
	metricsProvider *metrics.Provider
	businessMetrics metrics.Recorder

	// Managers
	txManager database.TxManager

	// Auth
	signingSecret   []byte
	tokenCodec      authService.TokenCodec
	refreshTokenRep authUseCase.RefreshTokenRepository
	tokenUseCase    authUseCase.TokenUseCase

	// Repositories
	userRepo       userUseCase.UserRepository
	productRepo    productUseCase.ProductRepository
	cartRepo       cartUseCase.CartRepository
	deadLetterRepo deadLetterUseCase.DeadLetterRepository

	// Use Cases
	userUseCase       userUseCase.UseCase
	productUseCase    productUseCase.UseCase
	cartUseCase       cartUseCase.UseCase
	deadLetterUseCase *deadLetterUseCase.DeadLetterUseCase

	// Events
	publisher           *events.Publisher
	consumer            *events.Consumer
	mailer              notification.Mailer
	notificationService *notification.Service

	// Handlers
	authHandler    *userHTTP.AuthHandler
	productHandler *productHTTP.ProductHandler
	cartHandler    *cartHTTP.CartHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                      sync.Mutex
	loggerInit              sync.Once
	dbInit                  sync.Once
	cacheInit               sync.Once
	brokerInit              sync.Once
	metricsProviderInit     sync.Once
	businessMetricsInit     sync.Once
	txManagerInit           sync.Once
	signingSecretInit       sync.Once
	tokenCodecInit          sync.Once
	refreshTokenRepoInit    sync.Once
	tokenUseCaseInit        sync.Once
	userRepoInit            sync.Once
	productRepoInit         sync.Once
	cartRepoInit            sync.Once
	deadLetterRepoInit      sync.Once
	userUseCaseInit         sync.Once
	productUseCaseInit      sync.Once
	cartUseCaseInit         sync.Once
	deadLetterUseCaseInit   sync.Once
	publisherInit           sync.Once
	consumerInit            sync.Once
	mailerInit              sync.Once
	notificationServiceInit sync.Once
	authHandlerInit         sync.Once
	productHandlerInit      sync.Once
	cartHandlerInit         sync.Once
	httpServerInit          sync.Once
	metricsServerInit       sync.Once
	shutdownOnce            sync.Once
	shutdownErr             error
	initErrors              map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	ctx, cancel := context.WithCancel(context.Background())
	return &Container{
		config:     cfg,
		ctx:        ctx,
		cancel:     cancel,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// Cache returns the cache layer. An unreachable redis at startup is not fatal:
// every cache call degrades to the database until the server comes back.
func (c *Container) Cache() (*cache.Cache, error) {
	var err error
	c.cacheInit.Do(func() {
		c.cache, err = c.initCache()
		if err != nil {
			c.initErrors["cache"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cache"]; exists {
		return nil, storedErr
	}
	return c.cache, nil
}

// MetricsProvider returns the OpenTelemetry provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. It is a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.Recorder, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// Shutdown releases every initialized resource. Servers stop first, then the broker,
// the cache, the metrics provider and finally the database. Later calls return the
// result of the first one.
func (c *Container) Shutdown(ctx context.Context) error {
	c.shutdownOnce.Do(func() {
		c.shutdownErr = c.shutdown(ctx)
	})
	return c.shutdownErr
}

func (c *Container) shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.broker != nil {
		if err := c.broker.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("broker close: %w", err))
		}
	}

	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("cache close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(shutdownErrors...))
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(c.ctx, database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

func (c *Container) initCache() (*cache.Cache, error) {
	logger := c.Logger()

	store, err := cache.Open(c.config.RedisURL, c.config.CacheOperationTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if err := store.Ping(c.ctx); err != nil {
		logger.Warn("cache unreachable at startup, reads fall through to the database",
			slog.Any("error", err))
	}

	cacheMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics for cache: %w", err)
	}

	return cache.New(store, logger, cacheMetrics), nil
}

func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

func (c *Container) initBusinessMetrics() (metrics.Recorder, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// repositoryFor picks the postgres or mysql implementation for the configured driver.
func repositoryFor[T any](c *Container, name string, postgres, mysql func(*sql.DB) T) (T, error) {
	var zero T
	db, err := c.DB()
	if err != nil {
		return zero, fmt.Errorf("failed to get database for %s repository: %w", name, err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return mysql(db), nil
	case "postgres":
		return postgres(db), nil
	default:
		return zero, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}
