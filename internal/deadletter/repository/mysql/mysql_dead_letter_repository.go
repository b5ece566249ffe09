// Package mysql provides dead letter persistence for MySQL.
package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/allisson/storefront/internal/database"
	"github.com/allisson/storefront/internal/deadletter/domain"
	apperrors "github.com/allisson/storefront/internal/errors"
)

// MySQLDeadLetterRepository handles dead letter persistence for MySQL. IDs are stored as BINARY(16).
type MySQLDeadLetterRepository struct {
	db *sql.DB
}

// NewMySQLDeadLetterRepository creates a new MySQLDeadLetterRepository.
func NewMySQLDeadLetterRepository(db *sql.DB) *MySQLDeadLetterRepository {
	return &MySQLDeadLetterRepository{db: db}
}

// Create inserts a dead letter.
func (r *MySQLDeadLetterRepository) Create(ctx context.Context, letter *domain.DeadLetter) error {
	querier := database.GetTx(ctx, r.db)

	id, err := letter.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal dead letter id")
	}

	query := `INSERT INTO dead_letters (id, queue, routing_key, event_type, payload, error, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, id, letter.Queue, letter.RoutingKey, letter.EventType,
		letter.Payload, letter.Error, letter.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create dead letter")
	}
	return nil
}

// List returns dead letters, newest first.
func (r *MySQLDeadLetterRepository) List(ctx context.Context, offset, limit int) ([]*domain.DeadLetter, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, queue, routing_key, event_type, payload, error, created_at
			  FROM dead_letters
			  ORDER BY created_at DESC, id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list dead letters")
	}
	defer rows.Close() //nolint:errcheck

	letters := make([]*domain.DeadLetter, 0)
	for rows.Next() {
		var letter domain.DeadLetter
		var id []byte
		err := rows.Scan(&id, &letter.Queue, &letter.RoutingKey, &letter.EventType,
			&letter.Payload, &letter.Error, &letter.CreatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan dead letter")
		}
		if err := letter.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal dead letter id")
		}
		letters = append(letters, &letter)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate dead letters")
	}
	return letters, nil
}

// DeleteOlderThan deletes dead letters recorded before olderThan.
func (r *MySQLDeadLetterRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM dead_letters WHERE created_at < ?`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete dead letters")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return count, nil
}

// CountOlderThan counts dead letters recorded before olderThan without deleting them.
func (r *MySQLDeadLetterRepository) CountOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM dead_letters WHERE created_at < ?`, olderThan).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count dead letters")
	}
	return count, nil
}
