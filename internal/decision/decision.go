// Package decision turns price updates into risk-gated order intents.
//
// The engine delegates feature computation, scoring and explanation to
// narrow capabilities supplied at construction; only the rolling feature
// windows (one per symbol) are retained across calls.
package decision

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ksred/tradepulse/internal/risk"
	"github.com/ksred/tradepulse/internal/types"
)

// Blocked-decision reason codes that do not come from the risk gate.
const (
	ReasonInvalidPrice    = "INVALID_PRICE"
	ReasonInvalidQuantity = "INVALID_QUANTITY"
	ReasonTradingDisabled = "TRADING_DISABLED"
)

// DefaultRiskFraction is the fraction of capital risked per unit of score.
const DefaultRiskFraction = 0.02

// FeatureComputer maintains a rolling view of prices and derives named
// features from it.
type FeatureComputer interface {
	Update(price float64)
	Features() map[string]float64
}

// Scorer maps a feature set to a probability-like value in [0, 1].
type Scorer interface {
	Predict(features map[string]float64) (float64, error)
}

// Explainer produces a human-readable rationale for a decision. The text is
// advisory metadata only and never gates the decision.
type Explainer interface {
	Explain(ctx context.Context, prompt string) (string, error)
}

// Decision is the outcome of evaluating one price update. Exactly one of
// the two shapes applies: Accepted carries an intent, Blocked carries a
// reason code. Score and Notional are always populated for audit.
type Decision struct {
	Symbol      string             `json:"symbol"`
	Accepted    bool               `json:"accepted"`
	Reason      string             `json:"reason,omitempty"`
	Score       float64            `json:"score"`
	Notional    float64            `json:"notional"`
	Features    map[string]float64 `json:"features,omitempty"`
	Intent      *types.OrderIntent `json:"intent,omitempty"`
	Explanation string             `json:"explanation,omitempty"`
}

// Engine evaluates price updates against an account snapshot. It is driven
// by a single consumer task and is not safe for concurrent use.
type Engine struct {
	scorer        Scorer
	explainer     Explainer
	riskFraction  float64
	fallbackScore float64
	newFeatures   func() FeatureComputer
	features      map[string]FeatureComputer
}

// Option configures an Engine.
type Option func(*Engine)

// WithRiskFraction overrides the fraction of capital risked per trade.
func WithRiskFraction(fraction float64) Option {
	return func(e *Engine) { e.riskFraction = fraction }
}

// WithFallbackScore sets the score used when the scorer fails. The fallback
// is always surfaced with a warning; it is never applied silently.
func WithFallbackScore(score float64) Option {
	return func(e *Engine) { e.fallbackScore = score }
}

// WithFeatureFactory overrides how per-symbol feature windows are created.
func WithFeatureFactory(factory func() FeatureComputer) Option {
	return func(e *Engine) { e.newFeatures = factory }
}

// NewEngine creates a decision engine around the given scorer and explainer.
func NewEngine(scorer Scorer, explainer Explainer, opts ...Option) *Engine {
	e := &Engine{
		scorer:       scorer,
		explainer:    explainer,
		riskFraction: DefaultRiskFraction,
		newFeatures:  func() FeatureComputer { return NewRollingFeatures() },
		features:     make(map[string]FeatureComputer),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide evaluates one price observation for a symbol. Scorer and explainer
// failures are contained here; the caller always gets a Decision back.
func (e *Engine) Decide(ctx context.Context, symbol string, price float64, account risk.AccountSnapshot) Decision {
	features := e.featuresFor(symbol)
	features.Update(price)
	feats := features.Features()

	score, err := e.scorer.Predict(feats)
	if err != nil {
		log.Warn().
			Str("component", "decision_engine").
			Str("symbol", symbol).
			Float64("fallback_score", e.fallbackScore).
			Err(err).
			Msg("scoring failed, using fallback score")
		score = e.fallbackScore
	}

	notional := account.Capital * e.riskFraction * score

	if err := risk.CheckPretrade(account, notional); err != nil {
		reason := err.Error()
		if riskErr, ok := err.(*risk.Error); ok {
			reason = riskErr.Code
		}
		return Decision{
			Symbol:   symbol,
			Reason:   reason,
			Score:    score,
			Notional: notional,
			Features: feats,
		}
	}

	if price <= 0 {
		return Decision{
			Symbol:   symbol,
			Reason:   ReasonInvalidPrice,
			Score:    score,
			Notional: notional,
			Features: feats,
		}
	}

	quantity := math.Round(notional/price*1e6) / 1e6
	if quantity <= 0 {
		return Decision{
			Symbol:   symbol,
			Reason:   ReasonInvalidQuantity,
			Score:    score,
			Notional: notional,
			Features: feats,
		}
	}

	side := types.SideSell
	if score > 0.5 {
		side = types.SideBuy
	}

	prompt := fmt.Sprintf(
		"Explain concisely why a %s trade on %s at price %.4f with score %.4f is a good idea.",
		side, symbol, price, score,
	)
	explanation, err := e.explainer.Explain(ctx, prompt)
	if err != nil {
		log.Warn().
			Str("component", "decision_engine").
			Str("symbol", symbol).
			Err(err).
			Msg("explainer failed, proceeding without explanation")
		explanation = ""
	}

	intent := &types.OrderIntent{
		IntentID:  uuid.New().String(),
		Symbol:    symbol,
		Quantity:  quantity,
		Side:      side,
		OrderType: types.OrderTypeMarket,
		Metadata: map[string]string{
			"symbol":      symbol,
			"score":       fmt.Sprintf("%.6f", score),
			"explanation": explanation,
		},
	}

	return Decision{
		Symbol:      symbol,
		Accepted:    true,
		Score:       score,
		Notional:    notional,
		Features:    feats,
		Intent:      intent,
		Explanation: explanation,
	}
}

// featuresFor returns the symbol's rolling window, creating it on first
// observation. Windows are never shared across symbols.
func (e *Engine) featuresFor(symbol string) FeatureComputer {
	fc, ok := e.features[symbol]
	if !ok {
		fc = e.newFeatures()
		e.features[symbol] = fc
	}
	return fc
}
