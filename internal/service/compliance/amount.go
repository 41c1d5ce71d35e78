package compliance

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
	"github.com/refundworks/refund-compliance-engine/internal/domain/refund"
)

// evaluateAmount compares the refund amount against the rule's limit, which
// is either a literal number or a context field reference
func (e *Engine) evaluateAmount(rule *compliance.Rule, req *refund.Request, cctx compliance.Context) (*compliance.Violation, error) {
	am := rule.Evaluation.Amount
	if am == nil {
		return nil, fmt.Errorf("rule %s: amount evaluation missing", rule.RuleID)
	}

	limit := am.Value
	if am.ValueField != "" {
		raw, ok := cctx.Resolve(am.ValueField)
		if !ok {
			return compliance.NewFieldNotAvailableViolation(rule, am.ValueField), nil
		}
		resolved, err := toDecimal(raw)
		if err != nil {
			return nil, fmt.Errorf("rule %s: field %s: %w", rule.RuleID, am.ValueField, err)
		}
		limit = resolved
	}

	cmp := req.Amount.Cmp(limit)

	// For the ordering operators the rule states the required condition and
	// failing it is the violation. Equality operators report the named
	// relation directly: equals violates on equality, notEquals on
	// inequality.
	var violated bool
	switch am.Operator {
	case compliance.AmountLessThan:
		violated = cmp >= 0
	case compliance.AmountLessThanOrEqual:
		violated = cmp > 0
	case compliance.AmountGreaterThan:
		violated = cmp <= 0
	case compliance.AmountGreaterThanOrEqual:
		violated = cmp < 0
	case compliance.AmountEquals:
		violated = cmp == 0
	case compliance.AmountNotEquals:
		violated = cmp != 0
	default:
		e.logger.Warn("unsupported amount operator, skipping rule",
			zap.String("rule_id", rule.RuleID),
			zap.String("operator", string(am.Operator)),
		)
		return nil, nil
	}

	if !violated {
		return nil, nil
	}

	limitFloat, _ := limit.Float64()
	return compliance.NewRuleViolation(rule, map[string]any{
		"refund_amount": req.Amount.ToFloat64(),
		"limit_amount":  limitFloat,
		"operator":      string(am.Operator),
	}), nil
}
