// Package metrics holds the OpenTelemetry instruments for the refund
// compliance domain.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry holds the compliance evaluation metrics. A nil *Registry is
// valid and records nothing, so callers can run without telemetry.
type Registry struct {
	meter metric.Meter

	EvaluationDuration     metric.Float64Histogram
	EvaluationCounter      metric.Int64Counter
	ViolationCounter       metric.Int64Counter
	ProviderFailureCounter metric.Int64Counter
}

// NewRegistry creates a new metrics registry
func NewRegistry(meterName string) (*Registry, error) {
	r := &Registry{meter: otel.Meter(meterName)}

	var err error

	r.EvaluationDuration, err = r.meter.Float64Histogram(
		"rce.compliance.evaluation_duration",
		metric.WithDescription("Compliance evaluation duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 5, 10, 50, 100, 500),
	)
	if err != nil {
		return nil, err
	}

	r.EvaluationCounter, err = r.meter.Int64Counter(
		"rce.compliance.evaluation_total",
		metric.WithDescription("Total compliance evaluations performed"),
	)
	if err != nil {
		return nil, err
	}

	r.ViolationCounter, err = r.meter.Int64Counter(
		"rce.compliance.violation_total",
		metric.WithDescription("Total compliance violations detected"),
	)
	if err != nil {
		return nil, err
	}

	r.ProviderFailureCounter, err = r.meter.Int64Counter(
		"rce.compliance.provider_failure_total",
		metric.WithDescription("Total rule provider failures isolated during aggregation"),
	)

	return r, err
}

// RecordEvaluation records one completed evaluation
func (r *Registry) RecordEvaluation(ctx context.Context, durationMs float64, compliant bool, violations int) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.Bool("compliant", compliant),
		attribute.Int("violations", violations),
	)
	r.EvaluationDuration.Record(ctx, durationMs, attrs)
	r.EvaluationCounter.Add(ctx, 1, attrs)
}

// RecordViolation records a single detected violation
func (r *Registry) RecordViolation(ctx context.Context, code, severity string) {
	if r == nil {
		return
	}
	r.ViolationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("severity", severity),
	))
}

// RecordProviderFailure records a rule provider failure that was isolated
func (r *Registry) RecordProviderFailure(ctx context.Context, provider string) {
	if r == nil {
		return
	}
	r.ProviderFailureCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
	))
}
