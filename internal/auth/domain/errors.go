package domain

import (
	"errors"

	apperrors "github.com/allisson/storefront/internal/errors"
)

// Authentication errors.
var (
	// ErrRefreshTokenNotFound indicates no refresh token row exists for a hash.
	ErrRefreshTokenNotFound = apperrors.Wrap(apperrors.ErrNotFound, "refresh token not found")

	// ErrInvalidCredential indicates a bearer credential that is malformed or badly signed.
	ErrInvalidCredential = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid credential")

	// ErrExpiredCredential indicates a well-formed bearer credential past its expiry.
	ErrExpiredCredential = apperrors.Wrap(apperrors.ErrUnauthorized, "expired credential")

	// ErrInvalidOrExpiredRefresh indicates a refresh credential that is unknown, expired,
	// already rotated or revoked.
	ErrInvalidOrExpiredRefresh = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid or expired refresh token")

	// ErrMissingSigningSecret indicates the codec was built without a signing secret.
	ErrMissingSigningSecret = errors.New("token signing secret is not configured")
)
