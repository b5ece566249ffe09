// Package mocks provides mock implementations of the auth use cases for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/storefront/internal/auth/domain"
)

// MockTokenUseCase is a mock implementation of usecase.TokenUseCase.
type MockTokenUseCase struct {
	mock.Mock
}

// Issue mocks the Issue method.
func (m *MockTokenUseCase) Issue(
	ctx context.Context,
	subjectID uuid.UUID,
	email string,
) (*authDomain.TokenPair, error) {
	args := m.Called(ctx, subjectID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.TokenPair), args.Error(1)
}

// Rotate mocks the Rotate method.
func (m *MockTokenUseCase) Rotate(ctx context.Context, plainRefreshToken string) (*authDomain.RotateOutput, error) {
	args := m.Called(ctx, plainRefreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.RotateOutput), args.Error(1)
}

// Revoke mocks the Revoke method.
func (m *MockTokenUseCase) Revoke(ctx context.Context, plainRefreshToken string) error {
	args := m.Called(ctx, plainRefreshToken)
	return args.Error(0)
}

// Authenticate mocks the Authenticate method.
func (m *MockTokenUseCase) Authenticate(ctx context.Context, accessToken string) (*authDomain.AccessClaims, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.AccessClaims), args.Error(1)
}

// CleanupExpired mocks the CleanupExpired method.
func (m *MockTokenUseCase) CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}
