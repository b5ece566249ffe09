// Package usecase records rejected deliveries and lets operators inspect and purge them.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/storefront/internal/deadletter/domain"
	apperrors "github.com/allisson/storefront/internal/errors"
)

// maxErrorLength bounds the stored rejection reason.
const maxErrorLength = 1024

// DeadLetterRepository defines dead letter persistence operations.
type DeadLetterRepository interface {
	Create(ctx context.Context, letter *domain.DeadLetter) error
	List(ctx context.Context, offset, limit int) ([]*domain.DeadLetter, error)
	DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error)
	CountOlderThan(ctx context.Context, olderThan time.Time) (int64, error)
}

// DeadLetterUseCase implements events.DeadLetterRecorder on top of a repository.
type DeadLetterUseCase struct {
	repo   DeadLetterRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewDeadLetterUseCase creates a new DeadLetterUseCase.
func NewDeadLetterUseCase(repo DeadLetterRepository, logger *slog.Logger) *DeadLetterUseCase {
	return &DeadLetterUseCase{repo: repo, logger: logger, now: time.Now}
}

// Record stores a copy of a rejected delivery.
func (uc *DeadLetterUseCase) Record(
	ctx context.Context,
	queue, routingKey string,
	payload []byte,
	cause error,
) error {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	if len(reason) > maxErrorLength {
		reason = reason[:maxErrorLength]
	}

	letter := &domain.DeadLetter{
		ID:         uuid.Must(uuid.NewV7()),
		Queue:      queue,
		RoutingKey: routingKey,
		EventType:  domain.EventTypeOf(payload),
		Payload:    append([]byte(nil), payload...),
		Error:      reason,
		CreatedAt:  uc.now().UTC(),
	}
	if err := uc.repo.Create(ctx, letter); err != nil {
		return err
	}

	uc.logger.Info("dead letter recorded",
		slog.String("id", letter.ID.String()),
		slog.String("queue", queue),
		slog.String("event_type", letter.EventType),
	)
	return nil
}

// List returns dead letters, newest first.
func (uc *DeadLetterUseCase) List(ctx context.Context, offset, limit int) ([]*domain.DeadLetter, error) {
	if offset < 0 || limit < 1 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "offset must be non-negative and limit positive")
	}
	return uc.repo.List(ctx, offset, limit)
}

// Purge deletes dead letters recorded more than days ago. With dryRun the
// matching rows are only counted.
func (uc *DeadLetterUseCase) Purge(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.New("days must be non-negative")
	}

	cutoff := uc.now().UTC().AddDate(0, 0, -days)
	if dryRun {
		return uc.repo.CountOlderThan(ctx, cutoff)
	}
	return uc.repo.DeleteOlderThan(ctx, cutoff)
}
