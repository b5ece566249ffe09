package app

import (
	"database/sql"
	"fmt"

	cartHTTP "github.com/allisson/storefront/internal/cart/http"
	cartMySQL "github.com/allisson/storefront/internal/cart/repository/mysql"
	cartPostgreSQL "github.com/allisson/storefront/internal/cart/repository/postgresql"
	cartUseCase "github.com/allisson/storefront/internal/cart/usecase"
	"github.com/allisson/storefront/internal/http"
	"github.com/allisson/storefront/internal/metrics"
	productHTTP "github.com/allisson/storefront/internal/product/http"
	productMySQL "github.com/allisson/storefront/internal/product/repository/mysql"
	productPostgreSQL "github.com/allisson/storefront/internal/product/repository/postgresql"
	productUseCase "github.com/allisson/storefront/internal/product/usecase"
	userHTTP "github.com/allisson/storefront/internal/user/http"
	userMySQL "github.com/allisson/storefront/internal/user/repository/mysql"
	userPostgreSQL "github.com/allisson/storefront/internal/user/repository/postgresql"
	userUseCase "github.com/allisson/storefront/internal/user/usecase"
)

// UserRepository returns the user repository based on database driver.
func (c *Container) UserRepository() (userUseCase.UserRepository, error) {
	var err error
	c.userRepoInit.Do(func() {
		c.userRepo, err = repositoryFor[userUseCase.UserRepository](
			c,
			"user",
			func(db *sql.DB) userUseCase.UserRepository { return userPostgreSQL.NewPostgreSQLUserRepository(db) },
			func(db *sql.DB) userUseCase.UserRepository { return userMySQL.NewMySQLUserRepository(db) },
		)
		if err != nil {
			c.initErrors["userRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// ProductRepository returns the product repository based on database driver.
func (c *Container) ProductRepository() (productUseCase.ProductRepository, error) {
	var err error
	c.productRepoInit.Do(func() {
		c.productRepo, err = repositoryFor[productUseCase.ProductRepository](
			c,
			"product",
			func(db *sql.DB) productUseCase.ProductRepository {
				return productPostgreSQL.NewPostgreSQLProductRepository(db)
			},
			func(db *sql.DB) productUseCase.ProductRepository { return productMySQL.NewMySQLProductRepository(db) },
		)
		if err != nil {
			c.initErrors["productRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["productRepo"]; exists {
		return nil, storedErr
	}
	return c.productRepo, nil
}

// CartRepository returns the cart repository based on database driver.
func (c *Container) CartRepository() (cartUseCase.CartRepository, error) {
	var err error
	c.cartRepoInit.Do(func() {
		c.cartRepo, err = repositoryFor[cartUseCase.CartRepository](
			c,
			"cart",
			func(db *sql.DB) cartUseCase.CartRepository { return cartPostgreSQL.NewPostgreSQLCartRepository(db) },
			func(db *sql.DB) cartUseCase.CartRepository { return cartMySQL.NewMySQLCartRepository(db) },
		)
		if err != nil {
			c.initErrors["cartRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cartRepo"]; exists {
		return nil, storedErr
	}
	return c.cartRepo, nil
}

// UserUseCase returns the identity coordinator.
func (c *Container) UserUseCase() (userUseCase.UseCase, error) {
	var err error
	c.userUseCaseInit.Do(func() {
		c.userUseCase, err = c.initUserUseCase()
		if err != nil {
			c.initErrors["userUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userUseCase"]; exists {
		return nil, storedErr
	}
	return c.userUseCase, nil
}

// ProductUseCase returns the catalog coordinator.
func (c *Container) ProductUseCase() (productUseCase.UseCase, error) {
	var err error
	c.productUseCaseInit.Do(func() {
		c.productUseCase, err = c.initProductUseCase()
		if err != nil {
			c.initErrors["productUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["productUseCase"]; exists {
		return nil, storedErr
	}
	return c.productUseCase, nil
}

// CartUseCase returns the cart coordinator.
func (c *Container) CartUseCase() (cartUseCase.UseCase, error) {
	var err error
	c.cartUseCaseInit.Do(func() {
		c.cartUseCase, err = c.initCartUseCase()
		if err != nil {
			c.initErrors["cartUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cartUseCase"]; exists {
		return nil, storedErr
	}
	return c.cartUseCase, nil
}

// AuthHandler returns the HTTP handler for the identity endpoints.
func (c *Container) AuthHandler() (*userHTTP.AuthHandler, error) {
	var err error
	c.authHandlerInit.Do(func() {
		var useCase userUseCase.UseCase
		useCase, err = c.UserUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get user use case for auth handler: %w", err)
			c.initErrors["authHandler"] = err
			return
		}
		c.authHandler = userHTTP.NewAuthHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authHandler"]; exists {
		return nil, storedErr
	}
	return c.authHandler, nil
}

// ProductHandler returns the HTTP handler for the catalog endpoints.
func (c *Container) ProductHandler() (*productHTTP.ProductHandler, error) {
	var err error
	c.productHandlerInit.Do(func() {
		var useCase productUseCase.UseCase
		useCase, err = c.ProductUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get product use case for product handler: %w", err)
			c.initErrors["productHandler"] = err
			return
		}
		c.productHandler = productHTTP.NewProductHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["productHandler"]; exists {
		return nil, storedErr
	}
	return c.productHandler, nil
}

// CartHandler returns the HTTP handler for the cart endpoints.
func (c *Container) CartHandler() (*cartHTTP.CartHandler, error) {
	var err error
	c.cartHandlerInit.Do(func() {
		var useCase cartUseCase.UseCase
		useCase, err = c.CartUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get cart use case for cart handler: %w", err)
			c.initErrors["cartHandler"] = err
			return
		}
		c.cartHandler = cartHTTP.NewCartHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cartHandler"]; exists {
		return nil, storedErr
	}
	return c.cartHandler, nil
}

// HTTPServer returns the API server with its router mounted.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus scrape server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		var provider *metrics.Provider
		provider, err = c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

func (c *Container) initUserUseCase() (userUseCase.UseCase, error) {
	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for user use case: %w", err)
	}

	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for user use case: %w", err)
	}

	profileCache, err := c.Cache()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache for user use case: %w", err)
	}

	publisher, err := c.Publisher()
	if err != nil {
		return nil, fmt.Errorf("failed to get publisher for user use case: %w", err)
	}

	baseUseCase, err := userUseCase.NewUserUseCase(
		userRepo,
		tokenUseCase,
		profileCache,
		publisher,
		c.config.CacheUserTTL,
		c.Logger(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user use case: %w", err)
	}

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for user use case: %w", err)
		}
		return userUseCase.NewUserUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initProductUseCase() (productUseCase.UseCase, error) {
	productRepo, err := c.ProductRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get product repository for product use case: %w", err)
	}

	catalogCache, err := c.Cache()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache for product use case: %w", err)
	}

	publisher, err := c.Publisher()
	if err != nil {
		return nil, fmt.Errorf("failed to get publisher for product use case: %w", err)
	}

	baseUseCase := productUseCase.NewProductUseCase(
		productRepo,
		catalogCache,
		publisher,
		productUseCase.CacheConfig{
			ProductTTL: c.config.CacheProductTTL,
			ListTTL:    c.config.CacheProductListTTL,
		},
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for product use case: %w", err)
		}
		return productUseCase.NewProductUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initCartUseCase enriches cart items through the product use case, so product
// lookups go through the product cache.
func (c *Container) initCartUseCase() (cartUseCase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for cart use case: %w", err)
	}

	cartRepo, err := c.CartRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get cart repository for cart use case: %w", err)
	}

	products, err := c.ProductUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get product use case for cart use case: %w", err)
	}

	cartCache, err := c.Cache()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache for cart use case: %w", err)
	}

	publisher, err := c.Publisher()
	if err != nil {
		return nil, fmt.Errorf("failed to get publisher for cart use case: %w", err)
	}

	baseUseCase := cartUseCase.NewCartUseCase(
		txManager,
		cartRepo,
		products,
		cartCache,
		publisher,
		c.config.CacheCartTTL,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for cart use case: %w", err)
		}
		return cartUseCase.NewCartUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initHTTPServer() (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	authHandler, err := c.AuthHandler()
	if err != nil {
		return nil, err
	}

	productHandler, err := c.ProductHandler()
	if err != nil {
		return nil, err
	}

	cartHandler, err := c.CartHandler()
	if err != nil {
		return nil, err
	}

	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	catalogCache, err := c.Cache()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache for http server: %w", err)
	}

	broker, err := c.Broker()
	if err != nil {
		return nil, fmt.Errorf("failed to get broker for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(c.ctx, http.RouterConfig{
		Config:          c.config,
		AuthHandler:     authHandler,
		ProductHandler:  productHandler,
		CartHandler:     cartHandler,
		TokenUseCase:    tokenUseCase,
		MetricsProvider: metricsProvider,
		Cache:           catalogCache,
		Broker:          broker,
	})

	return server, nil
}
