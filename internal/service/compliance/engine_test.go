package compliance_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
	"github.com/refundworks/refund-compliance-engine/internal/domain/refund"
	svc "github.com/refundworks/refund-compliance-engine/internal/service/compliance"
	"github.com/refundworks/refund-compliance-engine/internal/testutil/fixtures"
)

// stubProvider lets tests simulate provider failure modes the built-ins
// never exhibit.
type stubProvider struct {
	name     string
	applies  bool
	rules    []compliance.Rule
	rulesErr error
	panics   bool
}

func (p *stubProvider) Name() string                        { return p.name }
func (p *stubProvider) AppliesTo(_ compliance.Context) bool { return p.applies }
func (p *stubProvider) Rules(_ context.Context, _ compliance.Context) ([]compliance.Rule, error) {
	if p.panics {
		panic("rule store unreachable")
	}
	return p.rules, p.rulesErr
}

// sourceProvider gathers its own violations instead of handing rules to the
// dispatcher.
type sourceProvider struct {
	stubProvider
	violations []*compliance.Violation
}

func (p *sourceProvider) Violations(_ context.Context, _ svc.RuleEvaluator, _ *refund.Request, _ []compliance.Rule, _ compliance.Context) ([]*compliance.Violation, error) {
	return p.violations, nil
}

func violationCodes(violations []*compliance.Violation) []string {
	codes := make([]string, 0, len(violations))
	for _, v := range violations {
		codes = append(codes, v.Code)
	}
	return codes
}

func TestEvaluateWithDefaultProviders(t *testing.T) {
	engine := svc.NewEngine(zaptest.NewLogger(t), fixedClock(), nil, svc.DefaultConfig(),
		svc.DefaultProviders()...)

	req := fixtures.NewRefundRequestBuilder(t).WithAmount(75.00).Build()
	cctx := fixtures.NewContextBuilder(t).
		WithCardNetwork("VISA").
		WithMerchant("merch-042").
		WithRefundCount(1).
		WithTransaction(50.00, daysAgo(200)).
		Build()

	result := engine.Evaluate(context.Background(), req, cctx)

	require.NotNil(t, result)
	assert.False(t, result.Compliant)
	assert.NotEqual(t, uuid.Nil, result.CheckID)
	assert.Equal(t, fixedNow, result.Timestamp)
	assert.Equal(t,
		[]string{"VISA_REFUND_TIME_EXCEEDED", "REFUND_AMOUNT_EXCEEDS_TRANSACTION"},
		violationCodes(result.Violations))
	assert.Len(t, result.BlockingViolations, 2)
	assert.Empty(t, result.WarningViolations)
}

func TestEvaluateCompliantRequest(t *testing.T) {
	engine := svc.NewEngine(zaptest.NewLogger(t), fixedClock(), nil, svc.DefaultConfig(),
		svc.DefaultProviders()...)

	req := fixtures.NewRefundRequestBuilder(t).WithAmount(40.00).Build()
	cctx := fixtures.NewContextBuilder(t).
		WithCardNetwork("VISA").
		WithMerchant("merch-042").
		WithRefundCount(1).
		WithTransaction(50.00, daysAgo(30)).
		Build()

	result := engine.Evaluate(context.Background(), req, cctx)

	assert.True(t, result.Compliant)
	assert.Empty(t, result.Violations)
	assert.NotNil(t, result.Violations)
	assert.Empty(t, result.BlockingViolations)
	assert.Empty(t, result.WarningViolations)
}

func TestEvaluateDeterministic(t *testing.T) {
	engine := svc.NewEngine(zaptest.NewLogger(t), fixedClock(), nil, svc.DefaultConfig(),
		svc.DefaultProviders()...)

	req := fixtures.NewRefundRequestBuilder(t).WithAmount(75.00).Build()
	cctx := fixtures.NewContextBuilder(t).
		WithCardNetwork("VISA").
		WithTransaction(50.00, daysAgo(200)).
		Build()

	first := engine.Evaluate(context.Background(), req, cctx)
	second := engine.Evaluate(context.Background(), req, cctx)

	assert.Equal(t, first.Violations, second.Violations)
	assert.Equal(t, first.Compliant, second.Compliant)
	assert.NotEqual(t, first.CheckID, second.CheckID)
}

func TestEvaluateProviderIsolation(t *testing.T) {
	methodRule := fixtures.NewRuleBuilder(t).
		WithViolationCode("SURVIVOR_VIOLATION").
		WithAllowedMethods(string(refund.MethodBalance)).
		Build()

	engine := svc.NewEngine(zaptest.NewLogger(t), fixedClock(), nil, svc.DefaultConfig(),
		&stubProvider{name: "broken", applies: true, rulesErr: errors.New("rule store down")},
		&stubProvider{name: "panicky", applies: true, panics: true},
		svc.MustNewStaticProvider("healthy", nil, methodRule),
	)

	req := fixtures.NewRefundRequestBuilder(t).Build()
	result := engine.Evaluate(context.Background(), req, compliance.Context{})

	assert.Equal(t, []string{"SURVIVOR_VIOLATION"}, violationCodes(result.Violations))
	assert.False(t, result.Compliant)
}

func TestEvaluateNilRequestIsSystemError(t *testing.T) {
	engine := svc.NewEngine(zaptest.NewLogger(t), fixedClock(), nil, svc.DefaultConfig(),
		svc.DefaultProviders()...)

	result := engine.Evaluate(context.Background(), nil, compliance.Context{})

	require.NotNil(t, result)
	require.Len(t, result.Violations, 1)
	v := result.Violations[0]
	assert.Equal(t, compliance.CodeSystemError, v.Code)
	assert.True(t, v.IsBlocker)
	assert.False(t, result.Compliant)
	assert.Len(t, result.BlockingViolations, 1)
	assert.NotEqual(t, uuid.Nil, result.CheckID)
}

func TestEvaluateSkipsInapplicableProviders(t *testing.T) {
	tripRule := fixtures.NewRuleBuilder(t).
		WithViolationCode("SHOULD_NOT_APPEAR").
		WithAllowedMethods(string(refund.MethodBankTransfer)).
		Build()

	engine := svc.NewEngine(zaptest.NewLogger(t), fixedClock(), nil, svc.DefaultConfig(),
		&stubProvider{name: "dormant", applies: false, rules: []compliance.Rule{tripRule}},
	)

	req := fixtures.NewRefundRequestBuilder(t).Build()
	result := engine.Evaluate(context.Background(), req, compliance.Context{})

	assert.True(t, result.Compliant)
	assert.Empty(t, result.Violations)
}

func TestEvaluateUnknownRuleTypeSkipped(t *testing.T) {
	unknown := fixtures.NewRuleBuilder(t).
		WithRuleID("FUTURE_RULE").
		WithEvaluation(compliance.Evaluation{Type: "geolocation"}).
		BuildUnchecked()

	engine := svc.NewEngine(zaptest.NewLogger(t), fixedClock(), nil, svc.DefaultConfig(),
		&stubProvider{name: "future", applies: true, rules: []compliance.Rule{unknown}},
	)

	req := fixtures.NewRefundRequestBuilder(t).Build()
	result := engine.Evaluate(context.Background(), req, compliance.Context{})

	assert.True(t, result.Compliant)
	assert.Empty(t, result.Violations)
}

func TestEvaluateRegistrationOrderStable(t *testing.T) {
	provider := func(code string) svc.RuleProvider {
		rule := fixtures.NewRuleBuilder(t).
			WithRuleID(code).
			WithViolationCode(code).
			WithAllowedMethods(string(refund.MethodBankTransfer)).
			Build()
		return svc.MustNewStaticProvider(rule.RuleID, nil, rule)
	}

	providers := []svc.RuleProvider{
		provider("FIRST"),
		provider("SECOND"),
		provider("THIRD"),
	}
	req := fixtures.NewRefundRequestBuilder(t).Build()

	for _, parallel := range []bool{false, true} {
		cfg := svc.Config{ParallelProviders: parallel}
		engine := svc.NewEngine(zaptest.NewLogger(t), fixedClock(), nil, cfg, providers...)

		for i := 0; i < 5; i++ {
			result := engine.Evaluate(context.Background(), req, compliance.Context{})
			assert.Equal(t, []string{"FIRST", "SECOND", "THIRD"},
				violationCodes(result.Violations))
		}
	}
}

func TestEvaluateViolationSourceOverride(t *testing.T) {
	custom := &compliance.Violation{
		RuleID:   "EXTERNAL_SCREENING",
		Code:     "SANCTIONS_HIT",
		Message:  "Counterparty matched a sanctions list.",
		Severity: compliance.SeverityError,
	}
	provider := &sourceProvider{
		stubProvider: stubProvider{name: "screening", applies: true},
		violations:   []*compliance.Violation{custom},
	}

	engine := svc.NewEngine(zaptest.NewLogger(t), fixedClock(), nil, svc.DefaultConfig(), provider)

	req := fixtures.NewRefundRequestBuilder(t).Build()
	result := engine.Evaluate(context.Background(), req, compliance.Context{})

	require.Len(t, result.Violations, 1)
	assert.Same(t, custom, result.Violations[0])
	assert.False(t, result.Compliant)
}

func TestEvaluateWarningOnlyResultStaysCompliant(t *testing.T) {
	warnRule := fixtures.NewRuleBuilder(t).
		WithViolationCode("FREQUENCY_WARNING").
		WithSeverity(compliance.SeverityWarning).
		WithFrequency(2, "30 days").
		Build()

	engine := svc.NewEngine(zaptest.NewLogger(t), fixedClock(), nil, svc.DefaultConfig(),
		svc.MustNewStaticProvider("frequency", nil, warnRule),
	)

	req := fixtures.NewRefundRequestBuilder(t).Build()
	cctx := fixtures.NewContextBuilder(t).WithRefundCount(5).Build()

	result := engine.Evaluate(context.Background(), req, cctx)

	assert.True(t, result.Compliant)
	require.Len(t, result.Violations, 1)
	assert.Empty(t, result.BlockingViolations)
	assert.Equal(t, []string{"FREQUENCY_WARNING"}, violationCodes(result.WarningViolations))
}
