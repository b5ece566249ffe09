package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	apperrors "github.com/allisson/storefront/internal/errors"
)

// refreshTokenBytes is the entropy of a refresh credential.
const refreshTokenBytes = 32

type refreshTokenGenerator struct{}

// NewRefreshTokenGenerator returns a generator of 256-bit random refresh tokens hashed with SHA-256.
func NewRefreshTokenGenerator() RefreshTokenGenerator {
	return refreshTokenGenerator{}
}

// Generate returns a URL-safe random token and its hex SHA-256 hash.
func (g refreshTokenGenerator) Generate() (string, string, error) {
	raw := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate refresh token")
	}
	plain := base64.RawURLEncoding.EncodeToString(raw)
	return plain, g.Hash(plain), nil
}

// Hash returns the hex SHA-256 of a plain token.
func (refreshTokenGenerator) Hash(plainToken string) string {
	sum := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(sum[:])
}
