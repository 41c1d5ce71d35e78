// Package compliance implements the refund compliance evaluation engine:
// rule dispatch across the evaluation shapes, provider aggregation with
// failure isolation, result classification, and violation explanation.
package compliance

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
	"github.com/refundworks/refund-compliance-engine/internal/domain/errors"
	"github.com/refundworks/refund-compliance-engine/internal/domain/refund"
	"github.com/refundworks/refund-compliance-engine/internal/metrics"
)

// Engine evaluates refund requests against the rules supplied by its
// registered providers. It holds no mutable state between evaluations and
// is safe for concurrent use.
type Engine struct {
	logger    *zap.Logger
	clock     Clock
	registry  *metrics.Registry
	config    Config
	providers []RuleProvider
}

// NewEngine creates a compliance engine. A nil logger, clock, or metrics
// registry falls back to no-op behavior.
func NewEngine(logger *zap.Logger, clock Clock, registry *metrics.Registry, cfg Config, providers ...RuleProvider) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &Engine{
		logger:    logger,
		clock:     clock,
		registry:  registry,
		config:    cfg,
		providers: providers,
	}
}

// Evaluate runs the full compliance check for one refund request. It is
// total: internal failures never escape, they degrade to a non-compliant
// result carrying a single blocking SYSTEM_ERROR violation.
func (e *Engine) Evaluate(ctx context.Context, req *refund.Request, cctx compliance.Context) *compliance.Result {
	start := e.clock.Now()
	checkID := uuid.New()

	result := e.evaluateGuarded(ctx, checkID, req, cctx)
	result.CheckID = checkID
	result.Timestamp = start
	result.ProcessTime = e.clock.Now().Sub(start)

	for _, v := range result.Violations {
		e.registry.RecordViolation(ctx, v.Code, string(v.Severity))
	}
	e.registry.RecordEvaluation(ctx,
		float64(result.ProcessTime.Microseconds())/1000.0,
		result.Compliant,
		len(result.Violations),
	)

	e.logger.Info("Refund compliance evaluation completed",
		zap.String("check_id", checkID.String()),
		zap.Bool("compliant", result.Compliant),
		zap.Int("violations", len(result.Violations)),
		zap.Int("blocking", len(result.BlockingViolations)),
		zap.Duration("process_time", result.ProcessTime),
	)

	return result
}

// evaluateGuarded converts any panic during aggregation into the blocking
// SYSTEM_ERROR result
func (e *Engine) evaluateGuarded(ctx context.Context, checkID uuid.UUID, req *refund.Request, cctx compliance.Context) (result *compliance.Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("compliance evaluation failed",
				zap.String("check_id", checkID.String()),
				zap.Any("panic", r),
			)
			result = compliance.NewResult([]*compliance.Violation{{
				Code:      compliance.CodeSystemError,
				Message:   "Compliance evaluation failed due to an internal error",
				Severity:  compliance.SeverityError,
				IsBlocker: true,
				Details:   map[string]any{"error": fmt.Sprint(r)},
			}})
		}
	}()

	e.logger.Info("Evaluating refund compliance",
		zap.String("check_id", checkID.String()),
		zap.String("refund_id", req.ID),
		zap.String("refund_amount", req.Amount.String()),
		zap.String("refund_method", string(req.Method)),
	)

	return compliance.NewResult(e.gatherViolations(ctx, req, cctx))
}

// gatherViolations aggregates violations across all applicable providers,
// preserving provider registration order
func (e *Engine) gatherViolations(ctx context.Context, req *refund.Request, cctx compliance.Context) []*compliance.Violation {
	applicable := make([]RuleProvider, 0, len(e.providers))
	for _, p := range e.providers {
		if p.AppliesTo(cctx) {
			applicable = append(applicable, p)
		}
	}

	perProvider := make([][]*compliance.Violation, len(applicable))
	if e.config.ParallelProviders {
		var wg sync.WaitGroup
		for i, p := range applicable {
			wg.Add(1)
			go func(slot int, provider RuleProvider) {
				defer wg.Done()
				perProvider[slot] = e.collectFromProvider(ctx, provider, req, cctx)
			}(i, p)
		}
		wg.Wait()
	} else {
		for i, p := range applicable {
			perProvider[i] = e.collectFromProvider(ctx, p, req, cctx)
		}
	}

	var all []*compliance.Violation
	for _, vs := range perProvider {
		all = append(all, vs...)
	}
	return all
}

// collectFromProvider fetches and evaluates one provider's rules. Failures
// are isolated: the provider's contribution is dropped and logged, the
// evaluation proceeds.
func (e *Engine) collectFromProvider(ctx context.Context, p RuleProvider, req *refund.Request, cctx compliance.Context) []*compliance.Violation {
	violations, err := e.providerViolations(ctx, p, req, cctx)
	if err != nil {
		perr := errors.NewProviderError(p.Name(), "provider contribution skipped").WithCause(err)
		e.logger.Warn("rule provider failed, skipping its contribution",
			zap.String("provider", p.Name()),
			zap.String("refund_id", req.ID),
			zap.Bool("retryable", errors.IsRetryable(perr)),
			zap.Error(perr),
		)
		e.registry.RecordProviderFailure(ctx, p.Name())
		return nil
	}
	return violations
}

func (e *Engine) providerViolations(ctx context.Context, p RuleProvider, req *refund.Request, cctx compliance.Context) (violations []*compliance.Violation, err error) {
	defer func() {
		if r := recover(); r != nil {
			violations = nil
			err = fmt.Errorf("provider panicked: %v", r)
		}
	}()

	rules, err := p.Rules(ctx, cctx)
	if err != nil {
		return nil, fmt.Errorf("fetching rules: %w", err)
	}

	if source, ok := p.(ViolationSource); ok {
		violations, err = source.Violations(ctx, e, req, rules, cctx)
		if err != nil {
			return nil, fmt.Errorf("gathering violations: %w", err)
		}
		return violations, nil
	}

	for i := range rules {
		if v := e.EvaluateRule(&rules[i], req, cctx); v != nil {
			violations = append(violations, v)
		}
	}
	return violations, nil
}
