// Package fixtures provides builders for test entities: compliance rules,
// refund requests, and evaluation contexts.
package fixtures

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
)

// RuleBuilder builds test compliance rules
type RuleBuilder struct {
	t    *testing.T
	rule compliance.Rule
}

// NewRuleBuilder creates a RuleBuilder with a valid timeframe rule as the
// default
func NewRuleBuilder(t *testing.T) *RuleBuilder {
	t.Helper()
	return &RuleBuilder{
		t: t,
		rule: compliance.Rule{
			RuleID:      "TEST_TIME_LIMIT",
			RuleName:    "Test refund time limit",
			Description: "Default test rule",
			Evaluation: compliance.Evaluation{
				Type: compliance.EvaluationTimeframe,
				Timeframe: &compliance.TimeframeEvaluation{
					Field:    "transactionDetails.processedAt",
					Operator: compliance.TimeframeWithinDays,
					Days:     180,
				},
			},
			ViolationCode:    "TEST_TIME_EXCEEDED",
			ViolationMessage: "Refund requested outside the allowed window.",
			Severity:         compliance.SeverityError,
		},
	}
}

func (b *RuleBuilder) WithRuleID(id string) *RuleBuilder {
	b.rule.RuleID = id
	return b
}

func (b *RuleBuilder) WithName(name string) *RuleBuilder {
	b.rule.RuleName = name
	return b
}

func (b *RuleBuilder) WithViolationCode(code string) *RuleBuilder {
	b.rule.ViolationCode = code
	return b
}

func (b *RuleBuilder) WithMessage(message string) *RuleBuilder {
	b.rule.ViolationMessage = message
	return b
}

func (b *RuleBuilder) WithSeverity(severity compliance.Severity) *RuleBuilder {
	b.rule.Severity = severity
	return b
}

func (b *RuleBuilder) WithRemediation(remediation string) *RuleBuilder {
	b.rule.Remediation = remediation
	return b
}

func (b *RuleBuilder) WithTimeframe(field string, operator compliance.TimeframeOperator, days int) *RuleBuilder {
	b.rule.Evaluation = compliance.Evaluation{
		Type: compliance.EvaluationTimeframe,
		Timeframe: &compliance.TimeframeEvaluation{
			Field:    field,
			Operator: operator,
			Days:     days,
		},
	}
	return b
}

func (b *RuleBuilder) WithAmount(operator compliance.AmountOperator, value float64) *RuleBuilder {
	b.rule.Evaluation = compliance.Evaluation{
		Type: compliance.EvaluationAmount,
		Amount: &compliance.AmountEvaluation{
			Operator: operator,
			Value:    decimal.NewFromFloat(value),
		},
	}
	return b
}

func (b *RuleBuilder) WithAmountField(operator compliance.AmountOperator, field string) *RuleBuilder {
	b.rule.Evaluation = compliance.Evaluation{
		Type: compliance.EvaluationAmount,
		Amount: &compliance.AmountEvaluation{
			Operator:   operator,
			ValueField: field,
		},
	}
	return b
}

func (b *RuleBuilder) WithAllowedMethods(methods ...string) *RuleBuilder {
	b.rule.Evaluation = compliance.Evaluation{
		Type:   compliance.EvaluationMethod,
		Method: &compliance.MethodEvaluation{AllowedMethods: methods},
	}
	return b
}

func (b *RuleBuilder) WithDocumentation(condition *compliance.DocumentationCondition, requiredTypes ...string) *RuleBuilder {
	b.rule.Evaluation = compliance.Evaluation{
		Type: compliance.EvaluationDocumentation,
		Documentation: &compliance.DocumentationEvaluation{
			RequiredTypes: requiredTypes,
			Condition:     condition,
		},
	}
	return b
}

func (b *RuleBuilder) WithFrequency(limit int, period string) *RuleBuilder {
	b.rule.Evaluation = compliance.Evaluation{
		Type: compliance.EvaluationFrequency,
		Frequency: &compliance.FrequencyEvaluation{
			Limit:      limit,
			TimePeriod: period,
		},
	}
	return b
}

func (b *RuleBuilder) WithComposite(operator compliance.CompositeOperator, children ...compliance.Rule) *RuleBuilder {
	b.rule.Evaluation = compliance.Evaluation{
		Type: compliance.EvaluationComposite,
		Composite: &compliance.CompositeEvaluation{
			Operator: operator,
			Rules:    children,
		},
	}
	return b
}

// WithEvaluation sets the evaluation directly, bypassing the typed helpers
func (b *RuleBuilder) WithEvaluation(evaluation compliance.Evaluation) *RuleBuilder {
	b.rule.Evaluation = evaluation
	return b
}

// Build validates and returns the rule
func (b *RuleBuilder) Build() compliance.Rule {
	b.t.Helper()
	require.NoError(b.t, b.rule.Validate())
	return b.rule
}

// BuildUnchecked returns the rule without validating, for tests exercising
// malformed rule handling
func (b *RuleBuilder) BuildUnchecked() compliance.Rule {
	return b.rule
}
