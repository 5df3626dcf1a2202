package decision

import (
	"context"
	"strings"
)

// RuleBasedExplainer produces canned rationales from the prompt contents.
// It stands in wherever a model-backed explainer is unavailable.
type RuleBasedExplainer struct{}

// Explain never fails; it keys off the side mentioned in the prompt.
func (RuleBasedExplainer) Explain(_ context.Context, prompt string) (string, error) {
	p := strings.ToLower(prompt)
	switch {
	case strings.Contains(p, "buy"):
		return "Model signals BUY: momentum is positive and all pretrade risk checks pass.", nil
	case strings.Contains(p, "sell"):
		return "Model signals SELL: momentum has faded below the moving average.", nil
	default:
		return "No strong textual explanation could be inferred for this decision.", nil
	}
}
