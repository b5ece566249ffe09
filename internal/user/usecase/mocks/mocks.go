// Package mocks provides mock implementations of the user use case for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/storefront/internal/user/domain"
	"github.com/allisson/storefront/internal/user/usecase"
)

// MockUseCase is a mock implementation of usecase.UseCase.
type MockUseCase struct {
	mock.Mock
}

func authResult(args mock.Arguments) (*usecase.AuthResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AuthResult), args.Error(1)
}

// Register mocks the Register method.
func (m *MockUseCase) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.AuthResult, error) {
	return authResult(m.Called(ctx, input))
}

// Login mocks the Login method.
func (m *MockUseCase) Login(ctx context.Context, input usecase.LoginInput) (*usecase.AuthResult, error) {
	return authResult(m.Called(ctx, input))
}

// Refresh mocks the Refresh method.
func (m *MockUseCase) Refresh(ctx context.Context, refreshToken string) (*usecase.AuthResult, error) {
	return authResult(m.Called(ctx, refreshToken))
}

// Logout mocks the Logout method.
func (m *MockUseCase) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

// Profile mocks the Profile method.
func (m *MockUseCase) Profile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}
