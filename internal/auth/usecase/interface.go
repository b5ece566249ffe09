// Package usecase implements refresh token issuance, single-use rotation and revocation.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/storefront/internal/auth/domain"
)

// RefreshTokenRepository defines persistence operations for refresh tokens.
// Implementations must support transaction-aware operations via context propagation.
type RefreshTokenRepository interface {
	// Create stores a new refresh token.
	Create(ctx context.Context, token *authDomain.RefreshToken) error

	// GetByTokenHash returns ErrRefreshTokenNotFound when no row matches.
	GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.RefreshToken, error)

	// DeleteByTokenHash reports true only when this call removed the row.
	DeleteByTokenHash(ctx context.Context, tokenHash string) (bool, error)

	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)
	CountExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// SubjectResolverFunc returns the current email of a token subject, or the subject
// domain's not-found error when it no longer exists.
type SubjectResolverFunc func(ctx context.Context, subjectID uuid.UUID) (string, error)

// TokenUseCase issues, rotates and revokes credentials.
type TokenUseCase interface {
	// Issue creates an access token and a persisted refresh token for subjectID.
	Issue(ctx context.Context, subjectID uuid.UUID, email string) (*authDomain.TokenPair, error)

	// Rotate exchanges a refresh token for a new pair. A refresh token rotates at most
	// once: of any number of concurrent calls with the same value exactly one succeeds,
	// the rest get ErrInvalidOrExpiredRefresh.
	Rotate(ctx context.Context, plainRefreshToken string) (*authDomain.RotateOutput, error)

	// Revoke deletes a refresh token. Unknown tokens are not an error.
	Revoke(ctx context.Context, plainRefreshToken string) error

	// Authenticate verifies an access token.
	Authenticate(ctx context.Context, accessToken string) (*authDomain.AccessClaims, error)

	// CleanupExpired deletes refresh tokens that expired more than days ago.
	// With dryRun the matching rows are only counted.
	CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error)
}
