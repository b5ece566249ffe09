// Package postgresql provides dead letter persistence for PostgreSQL.
package postgresql

import (
	"context"
	"database/sql"
	"time"

	"github.com/allisson/storefront/internal/database"
	"github.com/allisson/storefront/internal/deadletter/domain"
	apperrors "github.com/allisson/storefront/internal/errors"
)

// PostgreSQLDeadLetterRepository handles dead letter persistence for PostgreSQL.
type PostgreSQLDeadLetterRepository struct {
	db *sql.DB
}

// NewPostgreSQLDeadLetterRepository creates a new PostgreSQLDeadLetterRepository.
func NewPostgreSQLDeadLetterRepository(db *sql.DB) *PostgreSQLDeadLetterRepository {
	return &PostgreSQLDeadLetterRepository{db: db}
}

// Create inserts a dead letter.
func (r *PostgreSQLDeadLetterRepository) Create(ctx context.Context, letter *domain.DeadLetter) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO dead_letters (id, queue, routing_key, event_type, payload, error, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(ctx, query, letter.ID, letter.Queue, letter.RoutingKey, letter.EventType,
		letter.Payload, letter.Error, letter.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create dead letter")
	}
	return nil
}

// List returns dead letters, newest first.
func (r *PostgreSQLDeadLetterRepository) List(ctx context.Context, offset, limit int) ([]*domain.DeadLetter, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, queue, routing_key, event_type, payload, error, created_at
			  FROM dead_letters
			  ORDER BY created_at DESC, id DESC
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list dead letters")
	}
	defer rows.Close() //nolint:errcheck

	letters := make([]*domain.DeadLetter, 0)
	for rows.Next() {
		var letter domain.DeadLetter
		err := rows.Scan(&letter.ID, &letter.Queue, &letter.RoutingKey, &letter.EventType,
			&letter.Payload, &letter.Error, &letter.CreatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan dead letter")
		}
		letters = append(letters, &letter)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate dead letters")
	}
	return letters, nil
}

// DeleteOlderThan deletes dead letters recorded before olderThan.
func (r *PostgreSQLDeadLetterRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM dead_letters WHERE created_at < $1`, olderThan)
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
func (r *PostgreSQLDeadLetterRepository) CountOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM dead_letters WHERE created_at < $1`, olderThan).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count dead letters")
	}
	return count, nil
}
