package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/specdriver/internal/domain/result"
	"github.com/alexisbeaulieu97/specdriver/internal/logger"
	"github.com/alexisbeaulieu97/specdriver/internal/ports"
)

func TestMemoryQueuePreservesOrder(t *testing.T) {
	t.Parallel()

	q := NewMemoryQueue()
	q.Enqueue(ports.NewEnvelope(result.StepResult{StepID: "a"}))
	q.Enqueue(ports.NewEnvelope(&result.SpecResults{SpecID: "suite"}))

	require.Equal(t, 2, q.Len())

	drained := q.Drain()
	require.Len(t, drained, 2)
	require.Equal(t, "step-result", drained[0].Topic)
	require.Equal(t, "spec-results", drained[1].Topic)
	require.Zero(t, q.Len())
}

func TestMemoryQueueIsConcurrencySafe(t *testing.T) {
	t.Parallel()

	q := NewMemoryQueue()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Enqueue(ports.NewEnvelope(result.StepResult{}))
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 800, q.Len())
}

func TestPublisherDeliversToTopicSubscribers(t *testing.T) {
	t.Parallel()

	pub := NewLoggingPublisher(logger.NewNop())

	var got []ports.Envelope
	sub, err := pub.Subscribe("spec-results", func(ctx context.Context, env ports.Envelope) error {
		got = append(got, env)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, pub.Publish(context.Background(), ports.NewEnvelope(&result.SpecResults{SpecID: "s"})))
	require.NoError(t, pub.Publish(context.Background(), ports.NewEnvelope(result.StepResult{})))
	require.Len(t, got, 1)

	sub.Unsubscribe()
	require.NoError(t, pub.Publish(context.Background(), ports.NewEnvelope(&result.SpecResults{SpecID: "s"})))
	require.Len(t, got, 1)
}

func TestPublisherSwallowsHandlerErrors(t *testing.T) {
	t.Parallel()

	pub := NewLoggingPublisher(logger.NewNop())
	_, err := pub.Subscribe("step-result", func(context.Context, ports.Envelope) error {
		return errors.New("handler exploded")
	})
	require.NoError(t, err)

	require.NoError(t, pub.Publish(context.Background(), ports.NewEnvelope(result.StepResult{})))
}
