package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/storefront/internal/app"
	"github.com/allisson/storefront/internal/config"
	"github.com/allisson/storefront/internal/events"
)

// service is a long-running component started by the server and notifications
// commands. shutdown may be nil for components that stop when ctx is cancelled.
type service struct {
	name     string
	start    func(ctx context.Context) error
	shutdown func(ctx context.Context) error
}

// RunServer starts the API server and, when enabled, the metrics server. With the
// in-memory broker the notification consumer runs in the same process, since no
// other process can reach its queues. Blocks until SIGINT/SIGTERM or a fatal error.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))
	defer closeContainer(container, logger)

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	broker, err := container.Broker()
	if err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	services := []service{
		{name: "api server", start: server.Start, shutdown: server.Shutdown},
		brokerWatchService(broker),
	}

	metricsServices, err := metricsService(container)
	if err != nil {
		return err
	}
	services = append(services, metricsServices...)

	if cfg.BrokerDriver == config.BrokerDriverMemory {
		notificationService, err := container.NotificationService()
		if err != nil {
			return fmt.Errorf("failed to initialize notification service: %w", err)
		}
		logger.Info("running notification consumer in-process for the memory broker")
		services = append(services, service{name: "notification service", start: notificationService.Start})
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return serve(ctx, cancel, logger, cfg.DBConnMaxLifetime, services)
}

// RunNotifications consumes the notification queues until SIGINT/SIGTERM or until
// the broker connection is lost, which is returned as an error.
func RunNotifications(ctx context.Context, version string) error {
	cfg := config.Load()
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting notification service", slog.String("version", version))
	defer closeContainer(container, logger)

	notificationService, err := container.NotificationService()
	if err != nil {
		return fmt.Errorf("failed to initialize notification service: %w", err)
	}

	broker, err := container.Broker()
	if err != nil {
		return fmt.Errorf("failed to initialize broker: %w", err)
	}

	services := []service{
		{name: "notification service", start: notificationService.Start},
		brokerWatchService(broker),
	}

	metricsServices, err := metricsService(container)
	if err != nil {
		return err
	}
	services = append(services, metricsServices...)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return serve(ctx, cancel, logger, cfg.DBConnMaxLifetime, services)
}

func metricsService(container *app.Container) ([]service, error) {
	metricsServer, err := container.MetricsServer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics server: %w", err)
	}
	if metricsServer == nil {
		return nil, nil
	}
	return []service{{name: "metrics server", start: metricsServer.Start, shutdown: metricsServer.Shutdown}}, nil
}

// brokerWatchService fails when the broker connection drops, so the process exits
// instead of serving with a dead event bus. A graceful Close is not a failure.
func brokerWatchService(broker events.Broker) service {
	return service{
		name: "broker",
		start: func(ctx context.Context) error {
			select {
			case err, ok := <-broker.NotifyClose():
				if ok && err != nil {
					return fmt.Errorf("connection lost: %w", err)
				}
				return nil
			case <-ctx.Done():
				return nil
			}
		},
	}
}

// serve starts every service and waits for ctx to end or for one of them to fail.
// Either way cancel is called and each service is shut down within timeout. The
// failure, if any, is returned joined with the shutdown errors.
func serve(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *slog.Logger,
	timeout time.Duration,
	services []service,
) error {
	serviceErr := make(chan error, len(services))
	for _, s := range services {
		go func() {
			if err := s.start(ctx); err != nil {
				serviceErr <- fmt.Errorf("%s error: %w", s.name, err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-serviceErr:
		logger.Error("service error, initiating shutdown", slog.Any("error", runErr))
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	shutdownErrors := []error{runErr}
	for _, s := range services {
		if s.shutdown == nil {
			continue
		}
		if err := s.shutdown(shutdownCtx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("%s shutdown: %w", s.name, err))
		}
	}

	return errors.Join(shutdownErrors...)
}
