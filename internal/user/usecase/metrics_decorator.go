package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/storefront/internal/metrics"
	"github.com/allisson/storefront/internal/user/domain"
)

// userUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type userUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &userUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (u *userUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "user", operation, status)
	u.metrics.RecordDuration(ctx, "user", operation, time.Since(start), status)
}

// Register records metrics for user registration.
func (u *userUseCaseWithMetrics) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	start := time.Now()
	result, err := u.next.Register(ctx, input)
	u.record(ctx, "user_register", start, err)
	return result, err
}

// Login records metrics for login attempts.
func (u *userUseCaseWithMetrics) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	start := time.Now()
	result, err := u.next.Login(ctx, input)
	u.record(ctx, "user_login", start, err)
	return result, err
}

// Refresh records metrics for credential refresh.
func (u *userUseCaseWithMetrics) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	start := time.Now()
	result, err := u.next.Refresh(ctx, refreshToken)
	u.record(ctx, "user_refresh", start, err)
	return result, err
}

// Logout records metrics for logout.
func (u *userUseCaseWithMetrics) Logout(ctx context.Context, refreshToken string) error {
	start := time.Now()
	err := u.next.Logout(ctx, refreshToken)
	u.record(ctx, "user_logout", start, err)
	return err
}

// Profile records metrics for profile reads.
func (u *userUseCaseWithMetrics) Profile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	start := time.Now()
	profile, err := u.next.Profile(ctx, userID)
	u.record(ctx, "user_profile", start, err)
	return profile, err
}
