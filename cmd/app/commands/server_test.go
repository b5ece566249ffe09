package commands

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/allisson/storefront/internal/events"
	"github.com/allisson/storefront/internal/testutil"
)

// blockingService runs until ctx is cancelled or shutdown is called.
func blockingService(name string, shutdowns *atomic.Int32) service {
	stopped := make(chan struct{})
	return service{
		name: name,
		start: func(ctx context.Context) error {
			select {
			case <-ctx.Done():
			case <-stopped:
			}
			return nil
		},
		shutdown: func(context.Context) error {
			shutdowns.Add(1)
			close(stopped)
			return nil
		},
	}
}

func TestServe(t *testing.T) {
	defer goleak.VerifyNone(t)
	logger := testutil.DiscardLogger()

	t.Run("Success_StopsOnContextCancel", func(t *testing.T) {
		var shutdowns atomic.Int32
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- serve(ctx, cancel, logger, time.Second, []service{
				blockingService("api server", &shutdowns),
				blockingService("metrics server", &shutdowns),
				{name: "consumer", start: func(ctx context.Context) error {
					<-ctx.Done()
					return nil
				}},
			})
		}()

		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("serve did not return after cancel")
		}
		assert.Equal(t, int32(2), shutdowns.Load())
	})

	t.Run("Error_FailingServiceStopsTheRest", func(t *testing.T) {
		var shutdowns atomic.Int32
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var consumerStopped atomic.Bool
		err := serve(ctx, cancel, logger, time.Second, []service{
			blockingService("api server", &shutdowns),
			{name: "notification service", start: func(ctx context.Context) error {
				return errors.New("broker connection lost")
			}},
			{name: "other consumer", start: func(ctx context.Context) error {
				<-ctx.Done()
				consumerStopped.Store(true)
				return nil
			}},
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "notification service error: broker connection lost")
		assert.Equal(t, int32(1), shutdowns.Load())
		assert.Error(t, ctx.Err(), "serve should cancel the shared context")
		assert.Eventually(t, consumerStopped.Load, time.Second, 10*time.Millisecond)
	})

	t.Run("Error_ShutdownFailureIsReported", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := serve(ctx, cancel, logger, time.Second, []service{{
			name:     "api server",
			start:    func(context.Context) error { return nil },
			shutdown: func(context.Context) error { return errors.New("listener stuck") },
		}})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "api server shutdown: listener stuck")
	})

	t.Run("Error_BrokerConnectionLostStopsServices", func(t *testing.T) {
		var shutdowns atomic.Int32
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		broker := events.NewMemoryBroker()
		defer func() { _ = broker.Close() }()

		done := make(chan error, 1)
		go func() {
			done <- serve(ctx, cancel, logger, time.Second, []service{
				blockingService("api server", &shutdowns),
				brokerWatchService(broker),
			})
		}()

		broker.Disconnect(errors.New("heartbeat timeout"))
		select {
		case err := <-done:
			require.Error(t, err)
			assert.Contains(t, err.Error(), "broker error: connection lost: heartbeat timeout")
		case <-time.After(2 * time.Second):
			t.Fatal("serve did not return after the broker disconnected")
		}
		assert.Equal(t, int32(1), shutdowns.Load())
	})

	t.Run("Success_GracefulBrokerCloseIsNotAFailure", func(t *testing.T) {
		broker := events.NewMemoryBroker()
		require.NoError(t, broker.Close())

		err := brokerWatchService(broker).start(context.Background())
		assert.NoError(t, err)
	})
}
