package compliance

import (
	"context"
	"time"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
	"github.com/refundworks/refund-compliance-engine/internal/domain/refund"
)

// Clock supplies evaluation time. Evaluators never read the wall clock
// directly so timeframe results are reproducible under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock implementation used in production
func SystemClock() Clock { return systemClock{} }

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// RuleProvider is a source of compliance rules scoped to a domain (card
// network, merchant policy, regulator). Providers are registered with the
// engine and engage only when AppliesTo reports true for the evaluation
// context. The engine depends solely on this contract, never on concrete
// rule storage.
type RuleProvider interface {
	// Name identifies the provider in logs and metrics
	Name() string

	// AppliesTo reports whether this provider engages for the context
	AppliesTo(cctx compliance.Context) bool

	// Rules returns the provider's rules for the context. Rules are
	// supplied fresh per evaluation; the engine never caches them.
	Rules(ctx context.Context, cctx compliance.Context) ([]compliance.Rule, error)
}

// RuleEvaluator evaluates a single rule against a request and context.
// Implemented by the engine and handed to providers that gather their own
// violations.
type RuleEvaluator interface {
	EvaluateRule(rule *compliance.Rule, req *refund.Request, cctx compliance.Context) *compliance.Violation
}

// ViolationSource is an optional extension of RuleProvider. A provider
// implementing it takes over violation gathering for its own rules; the
// default is the engine mapping the dispatcher over the rule list.
type ViolationSource interface {
	Violations(ctx context.Context, evaluator RuleEvaluator, req *refund.Request, rules []compliance.Rule, cctx compliance.Context) ([]*compliance.Violation, error)
}

// Config holds engine tuning knobs
type Config struct {
	// ParallelProviders runs provider fetch/evaluate concurrently.
	// Violation order stays provider-registration-stable either way.
	ParallelProviders bool `json:"parallel_providers" koanf:"parallel_providers"`
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() Config {
	return Config{ParallelProviders: false}
}
