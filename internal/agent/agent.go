// Package agent orchestrates the decision side of the pipeline: it consumes
// market updates, drives the decision engine, and republishes accepted
// intents to the orders topic.
package agent

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/ksred/tradepulse/internal/bus"
	"github.com/ksred/tradepulse/internal/decision"
	"github.com/ksred/tradepulse/internal/journal"
	"github.com/ksred/tradepulse/internal/risk"
	"github.com/ksred/tradepulse/internal/types"
)

// Agent binds the decision engine to the bus and owns its own lifecycle.
// Blocked decisions are published on the risk_alerts topic with their reason
// code and numeric inputs; nothing is dropped silently.
type Agent struct {
	bus      *bus.EventBus
	engine   *decision.Engine
	account  risk.AccountSnapshot
	journal  *journal.Database // optional
	enabled  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
}

// NewAgent creates an agent trading against the given account snapshot.
// The agent starts enabled.
func NewAgent(b *bus.EventBus, engine *decision.Engine, account risk.AccountSnapshot, j *journal.Database) *Agent {
	a := &Agent{
		bus:     b,
		engine:  engine,
		account: account,
		journal: j,
		stop:    make(chan struct{}),
	}
	a.enabled.Store(true)
	return a
}

// SetEnabled flips the kill switch. While disabled the agent keeps
// consuming ticks but blocks every decision with TRADING_DISABLED.
func (a *Agent) SetEnabled(enabled bool) {
	a.enabled.Store(enabled)
	log.Info().Str("component", "trade_agent").Bool("enabled", enabled).Msg("trading toggled")
}

// Enabled reports whether the agent is currently allowed to emit intents.
func (a *Agent) Enabled() bool {
	return a.enabled.Load()
}

// Stop requests shutdown. The run loop observes it at the next queue-wait
// boundary, so the update being processed finishes first.
func (a *Agent) Stop() {
	a.stopOnce.Do(func() { close(a.stop) })
}

// Run consumes the ticks topic until Stop is called or the context is done.
func (a *Agent) Run(ctx context.Context) {
	logger := log.With().Str("component", "trade_agent").Logger()
	logger.Info().Msg("starting trade agent")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-a.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	topic := a.bus.Topic(bus.TopicTicks)
	for {
		item, err := topic.Receive(ctx)
		if err != nil {
			logger.Info().Msg("shutting down trade agent")
			return
		}

		update, ok := item.(types.MarketUpdate)
		if !ok {
			logger.Error().Interface("item", item).Msg("dropping non-update item from ticks topic")
			continue
		}
		a.handleUpdate(ctx, update)
	}
}

func (a *Agent) handleUpdate(ctx context.Context, update types.MarketUpdate) {
	logger := log.With().
		Str("component", "trade_agent").
		Str("symbol", update.Symbol).
		Float64("price", update.Close).
		Logger()

	var dec decision.Decision
	if !a.enabled.Load() {
		dec = decision.Decision{
			Symbol: update.Symbol,
			Reason: decision.ReasonTradingDisabled,
		}
	} else {
		dec = a.engine.Decide(ctx, update.Symbol, update.Close, a.account)
	}

	if a.journal != nil {
		if err := a.journal.RecordDecision(dec); err != nil {
			logger.Error().Err(err).Msg("failed to journal decision")
		}
	}

	if !dec.Accepted {
		logger.Debug().
			Str("reason", dec.Reason).
			Float64("score", dec.Score).
			Float64("notional", dec.Notional).
			Msg("decision blocked")
		a.bus.Publish(bus.TopicRiskAlerts, dec)
		return
	}

	logger.Info().
		Str("intent_id", dec.Intent.IntentID).
		Str("side", dec.Intent.Side).
		Float64("quantity", dec.Intent.Quantity).
		Float64("score", dec.Score).
		Msg("publishing order intent")
	a.bus.Publish(bus.TopicOrders, *dec.Intent)
}
