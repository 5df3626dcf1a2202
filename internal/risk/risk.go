// Package risk implements the pretrade gate: pure validation of a proposed
// notional against an account snapshot. The gate has no side effects; the
// caller is responsible for updating exposure and daily loss after a fill.
package risk

import "fmt"

// Machine-checkable reason codes for pretrade rejections.
const (
	CodePerTradeCapExceeded = "PER_TRADE_CAP_EXCEEDED"
	CodeTotalExposureBreach = "TOTAL_EXPOSURE_BREACH"
	CodeDailyLossBreach     = "DAILY_LOSS_BREACH"
)

// Error is a pretrade rejection. It carries the reason code plus the
// numeric inputs that produced it so blocked decisions can be audited.
type Error struct {
	Code     string  `json:"code"`
	Notional float64 `json:"notional"`
	Limit    float64 `json:"limit"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("pretrade rejected: %s (notional=%.2f limit=%.2f)", e.Code, e.Notional, e.Limit)
}

// AccountSnapshot is the risk-relevant account state at decision time.
// All monetary fields are expected to be >= 0.
type AccountSnapshot struct {
	Capital           float64            `json:"capital"`
	Exposure          float64            `json:"exposure"`
	PerSymbolExposure map[string]float64 `json:"per_symbol_exposure,omitempty"`
	MaxRiskPerTrade   float64            `json:"max_risk_per_trade"`
	MaxTotalExposure  float64            `json:"max_total_exposure"`
	DailyLoss         float64            `json:"daily_loss"`
	MaxDailyLoss      float64            `json:"max_daily_loss"`
}

// CheckPretrade validates a proposed order notional against the account's
// limits. Checks run in a fixed order and the first failure wins:
//
//  1. per-trade cap: notional > capital * maxRiskPerTrade
//  2. total exposure: exposure + notional > maxTotalExposure
//  3. daily loss: dailyLoss > maxDailyLoss
//
// A nil return means all gates passed.
func CheckPretrade(account AccountSnapshot, notional float64) error {
	if perTradeCap := account.Capital * account.MaxRiskPerTrade; notional > perTradeCap {
		return &Error{Code: CodePerTradeCapExceeded, Notional: notional, Limit: perTradeCap}
	}
	if account.Exposure+notional > account.MaxTotalExposure {
		return &Error{Code: CodeTotalExposureBreach, Notional: notional, Limit: account.MaxTotalExposure}
	}
	if account.DailyLoss > account.MaxDailyLoss {
		return &Error{Code: CodeDailyLossBreach, Notional: notional, Limit: account.MaxDailyLoss}
	}
	return nil
}
