package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/allisson/storefront/internal/deadletter/domain"
)

// DeadLetterStore is the part of the dead letter use case the maintenance commands need.
type DeadLetterStore interface {
	List(ctx context.Context, offset, limit int) ([]*domain.DeadLetter, error)
	Purge(ctx context.Context, days int, dryRun bool) (int64, error)
}

// RunPurgeDeadLetters deletes dead letters recorded more than days ago.
func RunPurgeDeadLetters(
	ctx context.Context,
	store DeadLetterStore,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	if err := validateDays(days); err != nil {
		return err
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("purging dead letters",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	count, err := store.Purge(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to purge dead letters: %w", err)
	}

	if err := writeCleanupResult(writer, format, "dead letter(s)", count, days, dryRun); err != nil {
		return err
	}

	logger.Info("purge completed", slog.Int64("count", count), slog.Bool("dry_run", dryRun))
	return nil
}

// deadLetterView is the listed form of a dead letter; the payload is shown as text.
type deadLetterView struct {
	ID         string    `json:"id"`
	Queue      string    `json:"queue"`
	RoutingKey string    `json:"routing_key"`
	EventType  string    `json:"event_type"`
	Error      string    `json:"error"`
	Payload    string    `json:"payload"`
	CreatedAt  time.Time `json:"created_at"`
}

// RunListDeadLetters prints a page of dead letters, newest first.
func RunListDeadLetters(
	ctx context.Context,
	store DeadLetterStore,
	writer io.Writer,
	offset, limit int,
	format string,
) error {
	if offset < 0 || limit <= 0 {
		return fmt.Errorf("offset must be >= 0 and limit > 0, got offset=%d limit=%d", offset, limit)
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	letters, err := store.List(ctx, offset, limit)
	if err != nil {
		return fmt.Errorf("failed to list dead letters: %w", err)
	}

	if format == "json" {
		views := make([]deadLetterView, 0, len(letters))
		for _, letter := range letters {
			views = append(views, deadLetterView{
				ID:         letter.ID.String(),
				Queue:      letter.Queue,
				RoutingKey: letter.RoutingKey,
				EventType:  letter.EventType,
				Error:      letter.Error,
				Payload:    string(letter.Payload),
				CreatedAt:  letter.CreatedAt,
			})
		}
		return writeJSON(writer, views)
	}

	if len(letters) == 0 {
		_, err := fmt.Fprintln(writer, "No dead letters found")
		return err
	}

	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tQUEUE\tEVENT TYPE\tCREATED AT\tERROR")
	for _, letter := range letters {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			letter.ID,
			letter.Queue,
			letter.EventType,
			letter.CreatedAt.Format(time.RFC3339),
			letter.Error,
		)
	}
	return tw.Flush()
}
