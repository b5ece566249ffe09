// Package domain defines the credential types issued and verified by the auth module.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the persisted record of an issued refresh credential. Only the
// SHA-256 hash of the credential is stored; the plain value is handed to the
// caller once.
type RefreshToken struct {
	ID        uuid.UUID
	TokenHash string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the refresh token is past its expiry at now.
func (r *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// AccessClaims is the verified content of an access credential.
type AccessClaims struct {
	SubjectID uuid.UUID
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is returned by issuance and rotation.
type TokenPair struct {
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

// RotateOutput carries the new pair and the subject the rotated credential belonged to.
type RotateOutput struct {
	Pair      *TokenPair
	SubjectID uuid.UUID
}
