package compliance

import (
	"fmt"
	"slices"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
	"github.com/refundworks/refund-compliance-engine/internal/domain/refund"
)

// evaluateMethod checks the requested payout method against the rule's
// allow-list
func (e *Engine) evaluateMethod(rule *compliance.Rule, req *refund.Request) (*compliance.Violation, error) {
	me := rule.Evaluation.Method
	if me == nil {
		return nil, fmt.Errorf("rule %s: method evaluation missing", rule.RuleID)
	}

	if slices.Contains(me.AllowedMethods, string(req.Method)) {
		return nil, nil
	}

	return compliance.NewRuleViolation(rule, map[string]any{
		"requested_method": string(req.Method),
		"allowed_methods":  me.AllowedMethods,
	}), nil
}
