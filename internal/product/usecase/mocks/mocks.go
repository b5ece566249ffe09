// Package mocks provides mock implementations of the catalog use case for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/storefront/internal/product/domain"
	"github.com/allisson/storefront/internal/product/usecase"
)

// MockUseCase is a mock implementation of usecase.UseCase.
type MockUseCase struct {
	mock.Mock
}

func product(args mock.Arguments) (*domain.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func page(args mock.Arguments) (*domain.ProductPage, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductPage), args.Error(1)
}

// List mocks the List method.
func (m *MockUseCase) List(ctx context.Context, query domain.ListQuery) (*domain.ProductPage, error) {
	return page(m.Called(ctx, query))
}

// Get mocks the Get method.
func (m *MockUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return product(m.Called(ctx, id))
}

// ListByCategory mocks the ListByCategory method.
func (m *MockUseCase) ListByCategory(
	ctx context.Context,
	category string,
	query domain.ListQuery,
) (*domain.ProductPage, error) {
	return page(m.Called(ctx, category, query))
}

// Create mocks the Create method.
func (m *MockUseCase) Create(ctx context.Context, input usecase.CreateInput) (*domain.Product, error) {
	return product(m.Called(ctx, input))
}

// Update mocks the Update method.
func (m *MockUseCase) Update(ctx context.Context, id uuid.UUID, input usecase.UpdateInput) (*domain.Product, error) {
	return product(m.Called(ctx, id, input))
}

// Delete mocks the Delete method.
func (m *MockUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
