// Package http provides HTTP middleware and utilities for authentication.
package http

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/storefront/internal/auth/domain"
)

// claimsKey is a context key type for storing verified access claims.
type claimsKey struct{}

// WithClaims stores verified access claims in the context.
func WithClaims(ctx context.Context, claims *authDomain.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// GetClaims retrieves verified access claims from the context.
func GetClaims(ctx context.Context) (*authDomain.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*authDomain.AccessClaims)
	return claims, ok && claims != nil
}

// GetSubjectID returns the authenticated subject, if any.
func GetSubjectID(ctx context.Context) (uuid.UUID, bool) {
	claims, ok := GetClaims(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return claims.SubjectID, true
}
