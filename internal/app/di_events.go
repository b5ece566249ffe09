package app

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/allisson/storefront/internal/config"
	deadLetterMySQL "github.com/allisson/storefront/internal/deadletter/repository/mysql"
	deadLetterPostgreSQL "github.com/allisson/storefront/internal/deadletter/repository/postgresql"
	deadLetterUseCase "github.com/allisson/storefront/internal/deadletter/usecase"
	"github.com/allisson/storefront/internal/events"
	"github.com/allisson/storefront/internal/notification"
)

// Broker returns the event bus transport with the default topology declared.
func (c *Container) Broker() (events.Broker, error) {
	var err error
	c.brokerInit.Do(func() {
		c.broker, err = c.initBroker()
		if err != nil {
			c.initErrors["broker"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["broker"]; exists {
		return nil, storedErr
	}
	return c.broker, nil
}

// Publisher returns the domain event publisher.
func (c *Container) Publisher() (*events.Publisher, error) {
	var err error
	c.publisherInit.Do(func() {
		c.publisher, err = c.initPublisher()
		if err != nil {
			c.initErrors["publisher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["publisher"]; exists {
		return nil, storedErr
	}
	return c.publisher, nil
}

// DeadLetterRepository returns the dead letter repository based on database driver.
func (c *Container) DeadLetterRepository() (deadLetterUseCase.DeadLetterRepository, error) {
	var err error
	c.deadLetterRepoInit.Do(func() {
		c.deadLetterRepo, err = repositoryFor[deadLetterUseCase.DeadLetterRepository](
			c,
			"dead letter",
			func(db *sql.DB) deadLetterUseCase.DeadLetterRepository {
				return deadLetterPostgreSQL.NewPostgreSQLDeadLetterRepository(db)
			},
			func(db *sql.DB) deadLetterUseCase.DeadLetterRepository {
				return deadLetterMySQL.NewMySQLDeadLetterRepository(db)
			},
		)
		if err != nil {
			c.initErrors["deadLetterRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["deadLetterRepo"]; exists {
		return nil, storedErr
	}
	return c.deadLetterRepo, nil
}

// DeadLetterUseCase returns the dead letter use case.
func (c *Container) DeadLetterUseCase() (*deadLetterUseCase.DeadLetterUseCase, error) {
	var err error
	c.deadLetterUseCaseInit.Do(func() {
		var repo deadLetterUseCase.DeadLetterRepository
		repo, err = c.DeadLetterRepository()
		if err != nil {
			err = fmt.Errorf("failed to get dead letter repository for dead letter use case: %w", err)
			c.initErrors["deadLetterUseCase"] = err
			return
		}
		c.deadLetterUseCase = deadLetterUseCase.NewDeadLetterUseCase(repo, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["deadLetterUseCase"]; exists {
		return nil, storedErr
	}
	return c.deadLetterUseCase, nil
}

// Consumer returns the event consumer. Rejected deliveries are recorded as dead letters.
func (c *Container) Consumer() (*events.Consumer, error) {
	var err error
	c.consumerInit.Do(func() {
		c.consumer, err = c.initConsumer()
		if err != nil {
			c.initErrors["consumer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["consumer"]; exists {
		return nil, storedErr
	}
	return c.consumer, nil
}

// Mailer returns the SMTP mailer, or a logging mailer when SMTP_HOST is empty.
func (c *Container) Mailer() notification.Mailer {
	c.mailerInit.Do(func() {
		c.mailer = c.initMailer()
	})
	return c.mailer
}

// NotificationService returns the notification consumer service.
func (c *Container) NotificationService() (*notification.Service, error) {
	var err error
	c.notificationServiceInit.Do(func() {
		var consumer *events.Consumer
		consumer, err = c.Consumer()
		if err != nil {
			err = fmt.Errorf("failed to get consumer for notification service: %w", err)
			c.initErrors["notificationService"] = err
			return
		}
		c.notificationService = notification.NewService(consumer, c.Mailer(), c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["notificationService"]; exists {
		return nil, storedErr
	}
	return c.notificationService, nil
}

func (c *Container) initBroker() (events.Broker, error) {
	logger := c.Logger()

	var broker events.Broker
	switch c.config.BrokerDriver {
	case config.BrokerDriverMemory:
		broker = events.NewMemoryBroker()
	case config.BrokerDriverAMQP:
		amqpBroker, err := events.DialAMQP(events.AMQPConfig{
			URL:            c.config.RabbitMQURL,
			Heartbeat:      c.config.BrokerHeartbeat,
			PublishTimeout: c.config.BrokerPublishTimeout,
			Prefetch:       c.config.BrokerPrefetch,
		}, logger)
		if err != nil {
			return nil, err
		}
		broker = amqpBroker
	default:
		return nil, fmt.Errorf("unsupported broker driver: %s", c.config.BrokerDriver)
	}

	if err := broker.DeclareTopology(c.ctx, events.DefaultTopology()); err != nil {
		_ = broker.Close()
		return nil, fmt.Errorf("failed to declare event topology: %w", err)
	}

	logger.Info("event bus ready", slog.String("driver", c.config.BrokerDriver))
	return broker, nil
}

func (c *Container) initPublisher() (*events.Publisher, error) {
	broker, err := c.Broker()
	if err != nil {
		return nil, fmt.Errorf("failed to get broker for publisher: %w", err)
	}

	eventMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get event metrics for publisher: %w", err)
	}

	return events.NewPublisher(broker, c.Logger(), eventMetrics), nil
}

func (c *Container) initConsumer() (*events.Consumer, error) {
	broker, err := c.Broker()
	if err != nil {
		return nil, fmt.Errorf("failed to get broker for consumer: %w", err)
	}

	recorder, err := c.DeadLetterUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get dead letter use case for consumer: %w", err)
	}

	eventMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get event metrics for consumer: %w", err)
	}

	return events.NewConsumer(broker, c.Logger(), recorder, eventMetrics), nil
}

func (c *Container) initMailer() notification.Mailer {
	if c.config.SMTPHost == "" {
		c.Logger().Warn("SMTP_HOST not set, notification mails are only logged")
		return notification.NewLogMailer(c.Logger())
	}
	return notification.NewSMTPMailer(notification.SMTPConfig{
		Host:     c.config.SMTPHost,
		Port:     c.config.SMTPPort,
		Username: c.config.SMTPUsername,
		Password: c.config.SMTPPassword,
		From:     c.config.EmailFrom,
	})
}
