package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/storefront/internal/deadletter/domain"
)

type fakeDeadLetterStore struct {
	letters  []*domain.DeadLetter
	purged   int64
	err      error
	gotDays  int
	gotDry   bool
	gotRange [2]int
}

func (f *fakeDeadLetterStore) List(_ context.Context, offset, limit int) ([]*domain.DeadLetter, error) {
	f.gotRange = [2]int{offset, limit}
	return f.letters, f.err
}

func (f *fakeDeadLetterStore) Purge(_ context.Context, days int, dryRun bool) (int64, error) {
	f.gotDays, f.gotDry = days, dryRun
	return f.purged, f.err
}

func TestRunPurgeDeadLetters(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("text-output", func(t *testing.T) {
		store := &fakeDeadLetterStore{purged: 4}

		var out bytes.Buffer
		err := RunPurgeDeadLetters(ctx, store, logger, &out, 7, false, "text")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "Successfully deleted 4 dead letter(s) older than 7 day(s)")
		assert.Equal(t, 7, store.gotDays)
		assert.False(t, store.gotDry)
	})

	t.Run("json-dry-run", func(t *testing.T) {
		store := &fakeDeadLetterStore{purged: 2}

		var out bytes.Buffer
		err := RunPurgeDeadLetters(ctx, store, logger, &out, 0, true, "json")

		require.NoError(t, err)
		assert.Contains(t, out.String(), `"count": 2`)
		assert.Contains(t, out.String(), `"dry_run": true`)
		assert.True(t, store.gotDry)
	})

	t.Run("invalid-days", func(t *testing.T) {
		err := RunPurgeDeadLetters(ctx, &fakeDeadLetterStore{}, logger, &bytes.Buffer{}, -3, false, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "days must be a positive number")
	})

	t.Run("store-error", func(t *testing.T) {
		store := &fakeDeadLetterStore{err: errors.New("db down")}
		err := RunPurgeDeadLetters(ctx, store, logger, &bytes.Buffer{}, 1, false, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to purge dead letters")
	})
}

func TestRunListDeadLetters(t *testing.T) {
	ctx := context.Background()
	letter := &domain.DeadLetter{
		ID:         uuid.Must(uuid.NewV7()),
		Queue:      "notifications.user",
		RoutingKey: "user.registered",
		EventType:  "USER_REGISTERED",
		Payload:    []byte(`{"type":"USER_REGISTERED"}`),
		Error:      "smtp: connection refused",
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	t.Run("text-output", func(t *testing.T) {
		store := &fakeDeadLetterStore{letters: []*domain.DeadLetter{letter}}

		var out bytes.Buffer
		require.NoError(t, RunListDeadLetters(ctx, store, &out, 10, 20, "text"))

		assert.Contains(t, out.String(), "QUEUE")
		assert.Contains(t, out.String(), letter.ID.String())
		assert.Contains(t, out.String(), "2026-01-02T03:04:05Z")
		assert.Contains(t, out.String(), "smtp: connection refused")
		assert.Equal(t, [2]int{10, 20}, store.gotRange)
	})

	t.Run("json-output-includes-payload", func(t *testing.T) {
		store := &fakeDeadLetterStore{letters: []*domain.DeadLetter{letter}}

		var out bytes.Buffer
		require.NoError(t, RunListDeadLetters(ctx, store, &out, 0, 50, "json"))

		assert.Contains(t, out.String(), `"event_type": "USER_REGISTERED"`)
		assert.Contains(t, out.String(), `"routing_key": "user.registered"`)
		assert.Contains(t, out.String(), `USER_REGISTERED\"}`)
	})

	t.Run("empty", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, RunListDeadLetters(ctx, &fakeDeadLetterStore{}, &out, 0, 50, "text"))
		assert.Equal(t, "No dead letters found\n", out.String())
	})

	t.Run("invalid-range", func(t *testing.T) {
		err := RunListDeadLetters(ctx, &fakeDeadLetterStore{}, &bytes.Buffer{}, 0, 0, "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "limit > 0")
	})
}
