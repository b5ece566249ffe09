// Package mocks provides mock implementations of the cart use case for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/storefront/internal/cart/domain"
	"github.com/allisson/storefront/internal/cart/usecase"
)

// MockUseCase is a mock implementation of usecase.UseCase.
type MockUseCase struct {
	mock.Mock
}

func item(args mock.Arguments) (*domain.CartItem, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartItem), args.Error(1)
}

// Get mocks the Get method.
func (m *MockUseCase) Get(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

// Add mocks the Add method.
func (m *MockUseCase) Add(ctx context.Context, userID uuid.UUID, input usecase.AddItemInput) (*domain.CartItem, error) {
	return item(m.Called(ctx, userID, input))
}

// Update mocks the Update method.
func (m *MockUseCase) Update(
	ctx context.Context,
	userID, productID uuid.UUID,
	quantity int,
) (*domain.CartItem, error) {
	return item(m.Called(ctx, userID, productID, quantity))
}

// Remove mocks the Remove method.
func (m *MockUseCase) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

// Clear mocks the Clear method.
func (m *MockUseCase) Clear(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
