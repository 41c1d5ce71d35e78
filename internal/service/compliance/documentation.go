package compliance

import (
	"fmt"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
	"github.com/refundworks/refund-compliance-engine/internal/domain/refund"
)

// evaluateDocumentation checks that required supporting document types are
// present, unconditionally or gated on a numeric condition against the
// request
func (e *Engine) evaluateDocumentation(rule *compliance.Rule, req *refund.Request) (*compliance.Violation, error) {
	doc := rule.Evaluation.Documentation
	if doc == nil {
		return nil, fmt.Errorf("rule %s: documentation evaluation missing", rule.RuleID)
	}

	required, err := e.documentationRequired(rule, doc.Condition, req)
	if err != nil {
		return nil, err
	}
	if !required {
		return nil, nil
	}

	provided := req.DocumentTypes()
	for _, requiredType := range doc.RequiredTypes {
		if !req.HasDocumentType(requiredType) {
			return compliance.NewRuleViolation(rule, map[string]any{
				"missing_type":   requiredType,
				"required_types": doc.RequiredTypes,
				"provided_types": provided,
			}), nil
		}
	}

	return nil, nil
}

// documentationRequired decides whether the requirement applies. Without a
// condition it always does. The condition field "amount" reads the refund
// amount directly; other fields resolve through the request's typed
// accessor, and an absent field means the condition does not trigger.
func (e *Engine) documentationRequired(rule *compliance.Rule, cond *compliance.DocumentationCondition, req *refund.Request) (bool, error) {
	if cond == nil {
		return true, nil
	}

	var fieldValue float64
	if cond.Field == "amount" {
		fieldValue = req.Amount.ToFloat64()
	} else {
		raw, ok := req.FieldValue(cond.Field)
		if !ok {
			return false, nil
		}
		converted, err := toFloat(raw)
		if err != nil {
			return false, fmt.Errorf("rule %s: condition field %s: %w", rule.RuleID, cond.Field, err)
		}
		fieldValue = converted
	}

	switch cond.Operator {
	case compliance.ConditionGreaterThan:
		return fieldValue > cond.Value, nil
	case compliance.ConditionLessThan:
		return fieldValue < cond.Value, nil
	default:
		return false, fmt.Errorf("rule %s: unknown condition operator %q", rule.RuleID, cond.Operator)
	}
}
