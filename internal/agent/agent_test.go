package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksred/tradepulse/internal/broker"
	"github.com/ksred/tradepulse/internal/bus"
	"github.com/ksred/tradepulse/internal/decision"
	"github.com/ksred/tradepulse/internal/executor"
	"github.com/ksred/tradepulse/internal/risk"
	"github.com/ksred/tradepulse/internal/types"
)

func testAccount() risk.AccountSnapshot {
	return risk.AccountSnapshot{
		Capital:          100000,
		MaxRiskPerTrade:  0.02,
		MaxTotalExposure: 50000,
		MaxDailyLoss:     5000,
	}
}

func tick(symbol string, price float64) types.MarketUpdate {
	return types.MarketUpdate{
		Symbol:    symbol,
		Timestamp: time.Now().UTC(),
		Open:      price,
		High:      price,
		Low:       price,
		Close:     price,
		Volume:    1000,
	}
}

func receive(t *testing.T, b *bus.EventBus, topic string) any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	item, err := b.Topic(topic).Receive(ctx)
	require.NoError(t, err, "no item arrived on topic %s", topic)
	return item
}

// Full pipeline: tick in, fill out, position updated.
func TestAgentTickToFill(t *testing.T) {
	b := bus.NewEventBus()
	paper := broker.NewPaperBroker()
	engine := decision.NewEngine(decision.StaticScorer{Score: 0.8}, decision.RuleBasedExplainer{})
	a := NewAgent(b, engine, testAccount(), nil)
	exec := executor.NewExecutor(b, paper, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)
	go exec.Run(ctx)

	b.Publish(bus.TopicTicks, tick("AAPL", 100))

	fill, ok := receive(t, b, bus.TopicFills).(types.TradeFill)
	require.True(t, ok, "expected a TradeFill")
	assert.Equal(t, 16.0, fill.ExecutedQty) // 100000 * 0.02 * 0.8 / 100
	assert.Equal(t, 16.0, paper.Positions()["AAPL"])
}

func TestAgentPublishesBlockedDecisionsToRiskAlerts(t *testing.T) {
	b := bus.NewEventBus()
	account := testAccount()
	account.DailyLoss = 6000
	engine := decision.NewEngine(decision.StaticScorer{Score: 0.8}, decision.RuleBasedExplainer{})
	a := NewAgent(b, engine, account, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	b.Publish(bus.TopicTicks, tick("AAPL", 100))

	dec, ok := receive(t, b, bus.TopicRiskAlerts).(decision.Decision)
	require.True(t, ok, "expected a Decision")
	assert.False(t, dec.Accepted)
	assert.Equal(t, risk.CodeDailyLossBreach, dec.Reason)
	assert.Equal(t, 0, b.Topic(bus.TopicOrders).Len(), "blocked decision must not reach orders")
}

func TestAgentKillSwitchBlocksTrading(t *testing.T) {
	b := bus.NewEventBus()
	engine := decision.NewEngine(decision.StaticScorer{Score: 0.8}, decision.RuleBasedExplainer{})
	a := NewAgent(b, engine, testAccount(), nil)
	a.SetEnabled(false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	b.Publish(bus.TopicTicks, tick("AAPL", 100))

	dec, ok := receive(t, b, bus.TopicRiskAlerts).(decision.Decision)
	require.True(t, ok)
	assert.Equal(t, decision.ReasonTradingDisabled, dec.Reason)
	assert.Equal(t, 0, b.Topic(bus.TopicOrders).Len())

	// Re-enabling resumes normal flow.
	a.SetEnabled(true)
	b.Publish(bus.TopicTicks, tick("AAPL", 100))

	intent, ok := receive(t, b, bus.TopicOrders).(types.OrderIntent)
	require.True(t, ok)
	assert.Equal(t, "AAPL", intent.Symbol)
}

func TestAgentStopObservedAtQueueWait(t *testing.T) {
	b := bus.NewEventBus()
	engine := decision.NewEngine(decision.StaticScorer{Score: 0.8}, decision.RuleBasedExplainer{})
	a := NewAgent(b, engine, testAccount(), nil)

	done := make(chan struct{})
	go func() {
		a.Run(context.Background())
		close(done)
	}()

	a.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("agent did not stop")
	}
}
