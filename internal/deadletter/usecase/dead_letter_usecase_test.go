package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/storefront/internal/deadletter/domain"
	apperrors "github.com/allisson/storefront/internal/errors"
	"github.com/allisson/storefront/internal/events"
	"github.com/allisson/storefront/internal/testutil"
)

var _ events.DeadLetterRecorder = (*DeadLetterUseCase)(nil)

type mockDeadLetterRepository struct {
	mock.Mock
}

func (m *mockDeadLetterRepository) Create(ctx context.Context, letter *domain.DeadLetter) error {
	args := m.Called(ctx, letter)
	return args.Error(0)
}

func (m *mockDeadLetterRepository) List(ctx context.Context, offset, limit int) ([]*domain.DeadLetter, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DeadLetter), args.Error(1)
}

func (m *mockDeadLetterRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockDeadLetterRepository) CountOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

var fixedNow = time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

func newUseCase(repo *mockDeadLetterRepository) *DeadLetterUseCase {
	uc := NewDeadLetterUseCase(repo, testutil.DiscardLogger())
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func TestDeadLetterUseCase_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := &mockDeadLetterRepository{}
		payload := []byte(`{"type":"USER_REGISTERED","email":"ada@example.com"}`)
		repo.On("Create", ctx, mock.MatchedBy(func(l *domain.DeadLetter) bool {
			return l.Queue == events.QueueNotificationsUser &&
				l.RoutingKey == events.RoutingKeyUserRegistered &&
				l.EventType == "USER_REGISTERED" &&
				string(l.Payload) == string(payload) &&
				l.Error == "relay unavailable" &&
				l.CreatedAt.Equal(fixedNow)
		})).Return(nil).Once()

		err := newUseCase(repo).Record(ctx, events.QueueNotificationsUser, events.RoutingKeyUserRegistered, payload,
			errors.New("relay unavailable"))
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Success_TruncatesLongReason", func(t *testing.T) {
		repo := &mockDeadLetterRepository{}
		repo.On("Create", ctx, mock.MatchedBy(func(l *domain.DeadLetter) bool {
			return len(l.Error) == maxErrorLength && l.EventType == ""
		})).Return(nil).Once()

		err := newUseCase(repo).Record(ctx, events.QueueNotificationsCart, "cart.add", []byte("garbage"),
			errors.New(strings.Repeat("x", 5000)))
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Error_Repository", func(t *testing.T) {
		repo := &mockDeadLetterRepository{}
		repo.On("Create", ctx, mock.Anything).Return(errors.New("disk full")).Once()

		err := newUseCase(repo).Record(ctx, events.QueueNotificationsCart, "cart.add", nil, nil)
		assert.EqualError(t, err, "disk full")
	})
}

func TestDeadLetterUseCase_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := &mockDeadLetterRepository{}
		repo.On("List", ctx, 0, 20).Return([]*domain.DeadLetter{{Queue: "notifications.user"}}, nil).Once()

		letters, err := newUseCase(repo).List(ctx, 0, 20)
		require.NoError(t, err)
		assert.Len(t, letters, 1)
	})

	t.Run("Error_InvalidLimit", func(t *testing.T) {
		_, err := newUseCase(&mockDeadLetterRepository{}).List(ctx, 0, 0)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestDeadLetterUseCase_Purge(t *testing.T) {
	ctx := context.Background()
	cutoff := fixedNow.AddDate(0, 0, -7)

	t.Run("Success_Delete", func(t *testing.T) {
		repo := &mockDeadLetterRepository{}
		repo.On("DeleteOlderThan", ctx, cutoff).Return(int64(4), nil).Once()

		count, err := newUseCase(repo).Purge(ctx, 7, false)
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
		repo.AssertExpectations(t)
	})

	t.Run("Success_DryRunOnlyCounts", func(t *testing.T) {
		repo := &mockDeadLetterRepository{}
		repo.On("CountOlderThan", ctx, cutoff).Return(int64(2), nil).Once()

		count, err := newUseCase(repo).Purge(ctx, 7, true)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
		repo.AssertNotCalled(t, "DeleteOlderThan", mock.Anything, mock.Anything)
	})

	t.Run("Error_NegativeDays", func(t *testing.T) {
		_, err := newUseCase(&mockDeadLetterRepository{}).Purge(ctx, -1, false)
		assert.Error(t, err)
	})
}
