package compliance

import (
	"fmt"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
)

// evaluateFrequency checks the caller-populated refund counter against the
// rule's limit. The engine never looks up refund history itself; the
// history collaborator populates refundCount in the context beforehand.
func (e *Engine) evaluateFrequency(rule *compliance.Rule, cctx compliance.Context) (*compliance.Violation, error) {
	freq := rule.Evaluation.Frequency
	if freq == nil {
		return nil, fmt.Errorf("rule %s: frequency evaluation missing", rule.RuleID)
	}

	count := cctx.RefundCount()
	limit := freq.EffectiveLimit()
	if count < limit {
		return nil, nil
	}

	return compliance.NewRuleViolation(rule, map[string]any{
		"refund_count": count,
		"limit":        limit,
		"time_period":  freq.EffectivePeriod(),
	}), nil
}
