package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
)

// Metric definitions for the refundcheck CLI

var (
	checksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "refund",
			Subsystem: "compliance",
			Name:      "checks_total",
			Help:      "Total number of compliance checks evaluated",
		},
		[]string{"outcome"},
	)

	checkDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "refund",
			Subsystem: "compliance",
			Name:      "check_duration_seconds",
			Help:      "Compliance check duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15), // 100μs to ~1.6s
		},
	)

	violationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "refund",
			Subsystem: "compliance",
			Name:      "violations_total",
			Help:      "Total number of violations reported",
		},
		[]string{"code", "severity"},
	)
)

func recordCheck(result *compliance.Result, duration time.Duration) {
	outcome := "compliant"
	if !result.Compliant {
		outcome = "non_compliant"
	}
	checksTotal.WithLabelValues(outcome).Inc()
	checkDuration.Observe(duration.Seconds())

	for _, v := range result.Violations {
		violationsTotal.WithLabelValues(v.Code, string(v.Severity)).Inc()
	}
}

// startMetricsServer exposes Prometheus metrics on its own listener so
// batch output on stdout stays clean
func startMetricsServer(logger *zap.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		logger.Info("Serving metrics", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("Metrics server stopped", zap.Error(err))
		}
	}()
}
