// Package service provides the credential primitives used by the auth use cases:
// signed access tokens, opaque refresh tokens and signing secret resolution.
package service

import (
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/storefront/internal/auth/domain"
)

// TokenCodec signs and verifies access credentials. Implementations hold no state
// besides the signing secret and are safe for concurrent use.
type TokenCodec interface {
	// IssueAccess signs a credential for subjectID that expires after ttl.
	IssueAccess(subjectID uuid.UUID, email string, ttl time.Duration) (token string, expiresAt time.Time, err error)

	// Verify checks signature and expiry together. Expiry alone yields
	// ErrExpiredCredential; any other failure yields ErrInvalidCredential.
	Verify(token string) (*authDomain.AccessClaims, error)
}

// RefreshTokenGenerator creates opaque refresh credentials and the hash under which they are stored.
type RefreshTokenGenerator interface {
	Generate() (plainToken string, tokenHash string, err error)
	Hash(plainToken string) string
}
