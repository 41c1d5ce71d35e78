package compliance

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
	"github.com/refundworks/refund-compliance-engine/internal/domain/refund"
)

// EvaluateRule dispatches a single rule to the evaluator matching its
// evaluation type. A nil return means the rule is not violated. Evaluator
// errors and panics become RULE_EVALUATION_ERROR violations so sibling
// rules keep evaluating; unknown evaluation types are logged and skipped
// for forward compatibility with newer rule shapes.
func (e *Engine) EvaluateRule(rule *compliance.Rule, req *refund.Request, cctx compliance.Context) (violation *compliance.Violation) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("rule evaluation panicked",
				zap.String("rule_id", rule.RuleID),
				zap.Any("panic", r),
			)
			violation = e.ruleEvaluationError(rule, fmt.Errorf("panic: %v", r))
		}
	}()

	var err error
	switch rule.Evaluation.Type {
	case compliance.EvaluationTimeframe:
		violation, err = e.evaluateTimeframe(rule, cctx)
	case compliance.EvaluationAmount:
		violation, err = e.evaluateAmount(rule, req, cctx)
	case compliance.EvaluationMethod:
		violation, err = e.evaluateMethod(rule, req)
	case compliance.EvaluationDocumentation:
		violation, err = e.evaluateDocumentation(rule, req)
	case compliance.EvaluationFrequency:
		violation, err = e.evaluateFrequency(rule, cctx)
	case compliance.EvaluationComposite:
		violation, err = e.evaluateComposite(rule, req, cctx)
	default:
		e.logger.Warn("unknown rule evaluation type, skipping rule",
			zap.String("rule_id", rule.RuleID),
			zap.String("evaluation_type", string(rule.Evaluation.Type)),
		)
		return nil
	}

	if err != nil {
		e.logger.Error("rule evaluation failed",
			zap.String("rule_id", rule.RuleID),
			zap.Error(err),
		)
		return e.ruleEvaluationError(rule, err)
	}
	return violation
}

func (e *Engine) ruleEvaluationError(rule *compliance.Rule, err error) *compliance.Violation {
	return &compliance.Violation{
		RuleID:   rule.RuleID,
		Code:     compliance.CodeRuleEvaluationError,
		Message:  "Rule evaluation failed: " + rule.RuleName,
		Severity: compliance.SeverityError,
		Details: map[string]any{
			"rule_id": rule.RuleID,
			"error":   err.Error(),
		},
	}
}
