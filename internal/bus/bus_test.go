package bus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicFIFOSingleConsumer(t *testing.T) {
	b := NewEventBus()
	b.Publish(TopicTicks, "a")
	b.Publish(TopicTicks, "b")
	b.Publish(TopicTicks, "c")

	topic := b.Topic(TopicTicks)
	ctx := context.Background()

	for _, want := range []string{"a", "b", "c"} {
		got, err := topic.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 0, topic.Len())
}

func TestTopicLazyCreationReturnsSameQueue(t *testing.T) {
	b := NewEventBus()
	first := b.Topic("orders")
	second := b.Topic("orders")
	require.Same(t, first, second)

	first.Publish(42)
	got, ok := second.TryReceive()
	require.True(t, ok)
	assert.Equal(t, 42, got)
}

func TestTopicCompetingConsumersEachItemDeliveredOnce(t *testing.T) {
	const items = 200
	b := NewEventBus()
	topic := b.Topic(TopicOrders)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	seen := make(map[int]int)
	var wg sync.WaitGroup
	for c := 0; c < 4; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				item, err := topic.Receive(ctx)
				if err != nil {
					return
				}
				mu.Lock()
				seen[item.(int)]++
				if len(seen) == items {
					cancel()
				}
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < items; i++ {
		topic.Publish(i)
	}
	wg.Wait()

	require.Len(t, seen, items)
	for i := 0; i < items; i++ {
		assert.Equal(t, 1, seen[i], "item %d delivered more than once", i)
	}
}

func TestTopicReceiveUnblocksOnContextCancel(t *testing.T) {
	b := NewEventBus()
	topic := b.Topic(TopicFills)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := topic.Receive(ctx)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Receive did not observe cancellation")
	}
}

func TestTopicConcurrentPublishersLoseNothing(t *testing.T) {
	const producers = 8
	const perProducer = 100

	b := NewEventBus()
	topic := b.Topic(TopicTicks)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				topic.Publish(i)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, producers*perProducer, topic.Len())
}

func TestTryReceiveEmpty(t *testing.T) {
	topic := NewEventBus().Topic("empty")
	_, ok := topic.TryReceive()
	assert.False(t, ok)
}
