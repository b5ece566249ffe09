package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/storefront/internal/auth/domain"
	"github.com/allisson/storefront/internal/metrics"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *tokenUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "auth", operation, status)
	t.metrics.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

// Issue records metrics for token issuance.
func (t *tokenUseCaseWithMetrics) Issue(
	ctx context.Context,
	subjectID uuid.UUID,
	email string,
) (*authDomain.TokenPair, error) {
	start := time.Now()
	pair, err := t.next.Issue(ctx, subjectID, email)
	t.record(ctx, "token_issue", start, err)
	return pair, err
}

// Rotate records metrics for refresh token rotation.
func (t *tokenUseCaseWithMetrics) Rotate(
	ctx context.Context,
	plainRefreshToken string,
) (*authDomain.RotateOutput, error) {
	start := time.Now()
	output, err := t.next.Rotate(ctx, plainRefreshToken)
	t.record(ctx, "token_rotate", start, err)
	return output, err
}

// Revoke records metrics for refresh token revocation.
func (t *tokenUseCaseWithMetrics) Revoke(ctx context.Context, plainRefreshToken string) error {
	start := time.Now()
	err := t.next.Revoke(ctx, plainRefreshToken)
	t.record(ctx, "token_revoke", start, err)
	return err
}

// Authenticate records metrics for access token verification.
func (t *tokenUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	accessToken string,
) (*authDomain.AccessClaims, error) {
	start := time.Now()
	claims, err := t.next.Authenticate(ctx, accessToken)
	t.record(ctx, "token_authenticate", start, err)
	return claims, err
}

// CleanupExpired records metrics for expired token cleanup.
func (t *tokenUseCaseWithMetrics) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := t.next.CleanupExpired(ctx, days, dryRun)
	t.record(ctx, "token_cleanup", start, err)
	return count, err
}
