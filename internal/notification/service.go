// Package notification consumes the domain events and performs their side effects:
// the welcome mail for new users and the cart and catalog notices.
package notification

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/storefront/internal/events"
)

// Subscriber drains one queue into a handler until ctx ends or the connection is lost.
type Subscriber interface {
	Subscribe(ctx context.Context, queue string, handler events.Handler) error
}

// Service routes each notification queue to its handler.
type Service struct {
	subscriber Subscriber
	mailer     Mailer
	logger     *slog.Logger
}

// NewService creates a Service.
func NewService(subscriber Subscriber, mailer Mailer, logger *slog.Logger) *Service {
	return &Service{subscriber: subscriber, mailer: mailer, logger: logger}
}

// Start subscribes the user, cart and product queues and blocks until ctx is
// cancelled or one subscription fails; a failure stops the others.
func (s *Service) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for queue, handler := range map[string]events.Handler{
		events.QueueNotificationsUser:    s.HandleUserEvent,
		events.QueueNotificationsCart:    s.HandleCartEvent,
		events.QueueNotificationsProduct: s.HandleProductEvent,
	} {
		g.Go(func() error {
			return s.subscriber.Subscribe(gctx, queue, handler)
		})
	}

	s.logger.Info("started listening to notification queues")
	return g.Wait()
}

func (s *Service) ignore(queue string, event events.Event) error {
	s.logger.Warn("ignoring unexpected event type",
		slog.String("queue", queue),
		slog.String("type", string(event.EventType())),
	)
	return nil
}

// HandleUserEvent sends the welcome mail for USER_REGISTERED. A mail failure is
// returned so the delivery is rejected.
func (s *Service) HandleUserEvent(ctx context.Context, event events.Event) error {
	registered, ok := event.(events.UserRegistered)
	if !ok {
		return s.ignore(events.QueueNotificationsUser, event)
	}

	s.logger.Info("processing user registration event",
		slog.String("user_id", registered.UserID.String()),
		slog.String("email", registered.Email),
	)

	msg, err := welcomeMessage(registered)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send welcome email", slog.String("email", registered.Email), slog.Any("error", err))
		return err
	}

	s.logger.Info("welcome email sent", slog.String("email", registered.Email))
	return nil
}

// HandleCartEvent records the notice for a CART_UPDATED event.
func (s *Service) HandleCartEvent(ctx context.Context, event events.Event) error {
	updated, ok := event.(events.CartUpdated)
	if !ok {
		return s.ignore(events.QueueNotificationsCart, event)
	}

	subject, text := cartNotice(updated)
	s.logger.Info("cart notification sent",
		slog.String("user_id", updated.UserID.String()),
		slog.String("action", string(updated.Action)),
		slog.String("subject", subject),
		slog.String("message", text),
	)
	return nil
}

// HandleProductEvent logs PRODUCT_UPDATED; catalog changes have no side effect.
func (s *Service) HandleProductEvent(ctx context.Context, event events.Event) error {
	updated, ok := event.(events.ProductUpdated)
	if !ok {
		return s.ignore(events.QueueNotificationsProduct, event)
	}

	s.logger.Info("product event processed",
		slog.String("product_id", updated.ProductID.String()),
		slog.String("action", string(updated.Action)),
	)
	return nil
}
