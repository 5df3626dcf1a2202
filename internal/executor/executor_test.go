package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksred/tradepulse/internal/broker"
	"github.com/ksred/tradepulse/internal/bus"
	"github.com/ksred/tradepulse/internal/types"
)

func receiveFill(t *testing.T, b *bus.EventBus) any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	item, err := b.Topic(bus.TopicFills).Receive(ctx)
	require.NoError(t, err, "no item arrived on fills topic")
	return item
}

func intent(qty float64) types.OrderIntent {
	return types.OrderIntent{
		IntentID:  "intent-1",
		Symbol:    "AAPL",
		Quantity:  qty,
		Side:      types.SideBuy,
		OrderType: types.OrderTypeMarket,
		Price:     100,
	}
}

func TestExecutorPublishesFill(t *testing.T) {
	b := bus.NewEventBus()
	exec := NewExecutor(b, broker.NewPaperBroker(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go exec.Run(ctx)

	b.Publish(bus.TopicOrders, intent(10))

	fill, ok := receiveFill(t, b).(types.TradeFill)
	require.True(t, ok, "expected a TradeFill")
	assert.Equal(t, "intent-1", fill.OrderID)
	assert.Equal(t, 10.0, fill.ExecutedQty)
	assert.Equal(t, 100.0, fill.AvgPrice)
}

func TestExecutorPublishesRejectionOnBrokerFailure(t *testing.T) {
	b := bus.NewEventBus()
	exec := NewExecutor(b, broker.NewPaperBroker(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go exec.Run(ctx)

	// Non-positive quantity is rejected by the paper broker.
	b.Publish(bus.TopicOrders, intent(-1))

	resp, ok := receiveFill(t, b).(types.OrderResponse)
	require.True(t, ok, "expected a rejected OrderResponse")
	assert.Equal(t, types.StatusRejected, resp.Status)
	assert.Equal(t, "intent-1", resp.ClientOrderID)
	assert.NotEmpty(t, resp.Reason)
}

type downBroker struct{}

func (downBroker) PlaceOrder(types.OrderRequest) (types.OrderResponse, error) {
	return types.OrderResponse{}, errors.New("venue unreachable")
}
func (downBroker) CancelOrder(string) (types.OrderResponse, error) {
	return types.OrderResponse{}, broker.ErrUnknownOrder
}
func (downBroker) GetOrder(string) (types.OrderResponse, bool) { return types.OrderResponse{}, false }
func (downBroker) Positions() map[string]float64               { return nil }

// The loop must survive broker failures and keep processing later intents.
func TestExecutorLoopSurvivesFailures(t *testing.T) {
	b := bus.NewEventBus()
	exec := NewExecutor(b, downBroker{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go exec.Run(ctx)

	b.Publish(bus.TopicOrders, intent(5))
	b.Publish(bus.TopicOrders, intent(7))

	for i := 0; i < 2; i++ {
		resp, ok := receiveFill(t, b).(types.OrderResponse)
		require.True(t, ok)
		assert.Equal(t, types.StatusRejected, resp.Status)
	}
}

// Malformed items are fatal to that item only, not the loop.
func TestExecutorSkipsMalformedItems(t *testing.T) {
	b := bus.NewEventBus()
	exec := NewExecutor(b, broker.NewPaperBroker(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go exec.Run(ctx)

	b.Publish(bus.TopicOrders, "not an intent")
	b.Publish(bus.TopicOrders, intent(3))

	fill, ok := receiveFill(t, b).(types.TradeFill)
	require.True(t, ok)
	assert.Equal(t, 3.0, fill.ExecutedQty)
}
