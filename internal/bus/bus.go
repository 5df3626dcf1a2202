// Package bus provides the in-process event bus all pipeline components
// communicate through: a registry of named FIFO queues ("topics") created
// lazily on first reference.
//
// Queues are unbounded, so Publish never blocks and a stalled consumer
// leaves items queued indefinitely. That is a deliberate simplicity
// tradeoff, not a hidden failure mode; callers that care about depth can
// watch Topic.Len.
//
// Delivery is work-queue style: multiple consumers on one topic compete,
// and each item is delivered to exactly one of them. Ordering is FIFO
// within a topic only; nothing is guaranteed across topics, and nothing
// survives a process restart.
package bus

import (
	"context"
	"sync"
)

// Topic names shared across the pipeline. Producers and consumers must use
// these constants rather than raw strings.
const (
	TopicTicks      = "ticks"
	TopicSignals    = "signals"
	TopicOrders     = "orders"
	TopicFills      = "fills"
	TopicRiskAlerts = "risk_alerts"
)

// EventBus is a registry of topics. The zero value is not usable; create
// instances with NewEventBus and pass them into component constructors.
type EventBus struct {
	mu     sync.RWMutex
	topics map[string]*Topic
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{
		topics: make(map[string]*Topic),
	}
}

// Topic returns the queue for the given name, creating it on first reference.
func (b *EventBus) Topic(name string) *Topic {
	b.mu.RLock()
	t, ok := b.topics[name]
	b.mu.RUnlock()
	if ok {
		return t
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.topics[name]; ok {
		return t
	}
	t = &Topic{wake: make(chan struct{}, 1)}
	b.topics[name] = t
	return t
}

// Publish appends an item to the named topic's queue. It never blocks.
func (b *EventBus) Publish(topic string, item any) {
	b.Topic(topic).Publish(item)
}

// Topic is a single unbounded FIFO queue. Safe for concurrent producers
// and consumers.
type Topic struct {
	mu    sync.Mutex
	items []any
	wake  chan struct{}
}

// Publish appends an item to the queue and wakes a waiting consumer.
func (t *Topic) Publish(item any) {
	t.mu.Lock()
	t.items = append(t.items, item)
	t.mu.Unlock()
	t.notify()
}

// Receive blocks until an item is available or the context is done.
// Competing consumers each receive distinct items.
func (t *Topic) Receive(ctx context.Context) (any, error) {
	for {
		if item, ok := t.TryReceive(); ok {
			return item, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.wake:
		}
	}
}

// TryReceive pops the head of the queue without blocking.
func (t *Topic) TryReceive() (any, bool) {
	t.mu.Lock()
	if len(t.items) == 0 {
		t.mu.Unlock()
		return nil, false
	}
	item := t.items[0]
	t.items[0] = nil
	t.items = t.items[1:]
	remaining := len(t.items)
	t.mu.Unlock()

	// Keep other waiters moving when items remain; the publish-side
	// notification only wakes one consumer.
	if remaining > 0 {
		t.notify()
	}
	return item, true
}

// Len reports the current queue depth.
func (t *Topic) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

func (t *Topic) notify() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}
