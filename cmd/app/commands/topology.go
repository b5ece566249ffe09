package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/storefront/internal/events"
)

// RunTopology declares the exchanges, queues and bindings on broker and prints them.
// Declaring an existing topology is a no-op.
func RunTopology(ctx context.Context, broker events.Broker, logger *slog.Logger, writer io.Writer) error {
	topology := events.DefaultTopology()
	if err := broker.DeclareTopology(ctx, topology); err != nil {
		return fmt.Errorf("failed to declare topology: %w", err)
	}

	for _, exchange := range topology.Exchanges {
		_, _ = fmt.Fprintf(writer, "exchange %s (topic)\n", exchange)
	}
	for _, queue := range topology.Queues {
		_, _ = fmt.Fprintf(writer, "queue %s\n", queue)
	}
	for _, binding := range topology.Bindings {
		_, _ = fmt.Fprintf(writer, "binding %s -> %s [%s]\n", binding.Exchange, binding.Queue, binding.Pattern)
	}

	logger.Info("topology declared",
		slog.Int("exchanges", len(topology.Exchanges)),
		slog.Int("queues", len(topology.Queues)),
		slog.Int("bindings", len(topology.Bindings)),
	)
	return nil
}
