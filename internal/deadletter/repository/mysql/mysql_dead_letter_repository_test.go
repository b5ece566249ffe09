package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/storefront/internal/deadletter/domain"
)

func TestMySQLDeadLetterRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	letter := &domain.DeadLetter{
		ID: uuid.Must(uuid.NewV7()), Queue: "notifications.cart", RoutingKey: "cart.add",
		EventType: "CART_UPDATED", Payload: []byte(`{"type":"CART_UPDATED"}`), Error: "handler failed",
		CreatedAt: now,
	}
	binaryID, err := letter.ID.MarshalBinary()
	require.NoError(t, err)

	t.Run("Success_Create", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck
		mock.ExpectExec(`INSERT INTO dead_letters`).
			WithArgs(binaryID, letter.Queue, letter.RoutingKey, letter.EventType, letter.Payload, letter.Error, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewMySQLDeadLetterRepository(db).Create(ctx, letter))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_List", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck
		mock.ExpectQuery(`FROM dead_letters ORDER BY created_at DESC, id DESC LIMIT \? OFFSET \?`).
			WithArgs(10, 0).
			WillReturnRows(sqlmock.NewRows(
				[]string{"id", "queue", "routing_key", "event_type", "payload", "error", "created_at"},
			).AddRow(binaryID, letter.Queue, letter.RoutingKey, letter.EventType, letter.Payload, letter.Error, now))

		letters, err := NewMySQLDeadLetterRepository(db).List(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, letters, 1)
		assert.Equal(t, letter.ID, letters[0].ID)
		assert.Equal(t, letter.Payload, letters[0].Payload)
	})

	t.Run("Success_DeleteAndCount", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close() //nolint:errcheck
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM dead_letters WHERE created_at < \?`).
			WithArgs(now).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectExec(`DELETE FROM dead_letters WHERE created_at < \?`).
			WithArgs(now).
			WillReturnResult(sqlmock.NewResult(0, 2))

		repo := NewMySQLDeadLetterRepository(db)
		count, err := repo.CountOlderThan(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		deleted, err := repo.DeleteOlderThan(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
