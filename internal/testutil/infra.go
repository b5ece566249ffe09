package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/allisson/storefront/internal/cache"
	"github.com/allisson/storefront/internal/events"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewCache returns a Cache backed by an in-process redis server that is shut down with the test.
func NewCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return cache.New(cache.NewRedisStore(client, time.Second), DiscardLogger(), nil), mr
}

// NewEventBus returns an in-memory broker with the default topology declared and a
// publisher writing to it.
func NewEventBus(t *testing.T) (*events.MemoryBroker, *events.Publisher) {
	t.Helper()
	broker := events.NewMemoryBroker()
	require.NoError(t, broker.DeclareTopology(context.Background(), events.DefaultTopology()))
	t.Cleanup(func() { _ = broker.Close() })
	return broker, events.NewPublisher(broker, DiscardLogger(), nil)
}
