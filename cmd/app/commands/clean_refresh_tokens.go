package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authUseCase "github.com/allisson/storefront/internal/auth/usecase"
)

// RunCleanRefreshTokens deletes refresh tokens that expired more than days ago.
// With dryRun set it only counts them.
func RunCleanRefreshTokens(
	ctx context.Context,
	tokenUseCase authUseCase.TokenUseCase,
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

	logger.Info("cleaning expired refresh tokens",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	count, err := tokenUseCase.CleanupExpired(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to cleanup expired refresh tokens: %w", err)
	}

	if err := writeCleanupResult(writer, format, "expired token(s)", count, days, dryRun); err != nil {
		return err
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)
	return nil
}
