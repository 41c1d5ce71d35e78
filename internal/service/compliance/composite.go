package compliance

import (
	"fmt"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
	"github.com/refundworks/refund-compliance-engine/internal/domain/refund"
)

// evaluateComposite reduces child rule outcomes under AND/OR, recursing
// through the full dispatcher.
//
// OR short-circuits on the first violating child. AND short-circuits on the
// first NON-violating child and reports a violation only when every child
// independently violates. That reading of AND is inherited from the rule
// sets this engine replaces; downstream rule authors calibrated severity
// and remediation text against it, so it is preserved as-is rather than
// flipped to the everyday meaning.
func (e *Engine) evaluateComposite(rule *compliance.Rule, req *refund.Request, cctx compliance.Context) (*compliance.Violation, error) {
	comp := rule.Evaluation.Composite
	if comp == nil {
		return nil, fmt.Errorf("rule %s: composite evaluation missing", rule.RuleID)
	}

	switch comp.Operator {
	case compliance.CompositeOR:
		for i := range comp.Rules {
			if child := e.EvaluateRule(&comp.Rules[i], req, cctx); child != nil {
				return e.compositeViolation(rule, comp), nil
			}
		}
		return nil, nil

	case compliance.CompositeAND:
		for i := range comp.Rules {
			if child := e.EvaluateRule(&comp.Rules[i], req, cctx); child == nil {
				return nil, nil
			}
		}
		return e.compositeViolation(rule, comp), nil

	default:
		return nil, fmt.Errorf("rule %s: unknown composite operator %q", rule.RuleID, comp.Operator)
	}
}

// compositeViolation reports the composite rule's own violation; child
// outcomes are summarized, not surfaced individually
func (e *Engine) compositeViolation(rule *compliance.Rule, comp *compliance.CompositeEvaluation) *compliance.Violation {
	return compliance.NewRuleViolation(rule, map[string]any{
		"operator":         string(comp.Operator),
		"child_rule_count": len(comp.Rules),
	})
}
