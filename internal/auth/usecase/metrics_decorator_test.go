package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/storefront/internal/auth/domain"
	"github.com/allisson/storefront/internal/auth/usecase"
	usecaseMocks "github.com/allisson/storefront/internal/auth/usecase/mocks"
)

// mockBusinessMetrics is a local mock for metrics.BusinessMetrics.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func expectRecord(m *mockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "auth", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "auth", operation, mock.AnythingOfType("time.Duration"), status).Return().Once()
}

func TestTokenUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()
	subjectID := uuid.Must(uuid.NewV7())

	t.Run("Issue success", func(t *testing.T) {
		mockNext := &usecaseMocks.MockTokenUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := usecase.NewTokenUseCaseWithMetrics(mockNext, mockMetrics)
		pair := &authDomain.TokenPair{AccessToken: "a", RefreshToken: "r"}

		mockNext.On("Issue", ctx, subjectID, "a@x.com").Return(pair, nil).Once()
		expectRecord(mockMetrics, ctx, "token_issue", "success")

		res, err := uc.Issue(ctx, subjectID, "a@x.com")
		assert.NoError(t, err)
		assert.Equal(t, pair, res)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Rotate error", func(t *testing.T) {
		mockNext := &usecaseMocks.MockTokenUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := usecase.NewTokenUseCaseWithMetrics(mockNext, mockMetrics)

		mockNext.On("Rotate", ctx, "plain").Return(nil, authDomain.ErrInvalidOrExpiredRefresh).Once()
		expectRecord(mockMetrics, ctx, "token_rotate", "error")

		_, err := uc.Rotate(ctx, "plain")
		assert.ErrorIs(t, err, authDomain.ErrInvalidOrExpiredRefresh)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Revoke success", func(t *testing.T) {
		mockNext := &usecaseMocks.MockTokenUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := usecase.NewTokenUseCaseWithMetrics(mockNext, mockMetrics)

		mockNext.On("Revoke", ctx, "plain").Return(nil).Once()
		expectRecord(mockMetrics, ctx, "token_revoke", "success")

		assert.NoError(t, uc.Revoke(ctx, "plain"))
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Authenticate error", func(t *testing.T) {
		mockNext := &usecaseMocks.MockTokenUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := usecase.NewTokenUseCaseWithMetrics(mockNext, mockMetrics)

		mockNext.On("Authenticate", ctx, "bad").Return(nil, authDomain.ErrInvalidCredential).Once()
		expectRecord(mockMetrics, ctx, "token_authenticate", "error")

		_, err := uc.Authenticate(ctx, "bad")
		assert.Error(t, err)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("CleanupExpired error", func(t *testing.T) {
		mockNext := &usecaseMocks.MockTokenUseCase{}
		mockMetrics := &mockBusinessMetrics{}
		uc := usecase.NewTokenUseCaseWithMetrics(mockNext, mockMetrics)

		mockNext.On("CleanupExpired", ctx, 7, true).Return(int64(0), errors.New("db down")).Once()
		expectRecord(mockMetrics, ctx, "token_cleanup", "error")

		_, err := uc.CleanupExpired(ctx, 7, true)
		assert.Error(t, err)
		mockMetrics.AssertExpectations(t)
	})
}
