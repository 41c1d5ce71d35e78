package compliance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
	svc "github.com/refundworks/refund-compliance-engine/internal/service/compliance"
)

func TestExplainTimeframeViolation(t *testing.T) {
	v := &compliance.Violation{
		RuleID:      "VISA_TIME_LIMIT",
		Code:        "VISA_REFUND_TIME_EXCEEDED",
		Message:     "Refund requested outside the Visa 180-day window.",
		Severity:    compliance.SeverityError,
		Remediation: "Advise the customer to raise a dispute with their issuing bank.",
		Details: map[string]any{
			"actual_days":   200,
			"limit_days":    180,
			"original_date": "2023-08-14T00:00:00Z",
		},
	}

	explanation := svc.Explain(v)

	assert.Equal(t,
		"The transaction was processed 200 days ago (on August 14, 2023), which exceeds the 180-day limit. "+
			"Refund requested outside the Visa 180-day window. "+
			"Recommendation: Advise the customer to raise a dispute with their issuing bank.",
		explanation)
}

func TestExplainDateBoundaryViolation(t *testing.T) {
	v := &compliance.Violation{
		Code:    "PROMO_DATE_WINDOW",
		Message: "Refund falls outside the promotional window.",
		Details: map[string]any{
			"limit_date":    "2024-01-01T00:00:00Z",
			"original_date": "2024-02-15T00:00:00Z",
		},
	}

	assert.Equal(t,
		"The transaction date February 15, 2024 falls outside the allowed boundary of January 1, 2024. "+
			"Refund falls outside the promotional window.",
		svc.Explain(v))
}

func TestExplainAmountViolation(t *testing.T) {
	v := &compliance.Violation{
		Code:    "REFUND_AMOUNT_EXCEEDS_TRANSACTION",
		Message: "Refund amount exceeds the original transaction amount.",
		Details: map[string]any{
			"refund_amount": 75.0,
			"limit_amount":  50.0,
			"operator":      "lessThanOrEqual",
		},
	}

	assert.Equal(t,
		"The refund amount of 75.00 does not satisfy the lessThanOrEqual limit of 50.00. "+
			"Refund amount exceeds the original transaction amount.",
		svc.Explain(v))
}

func TestExplainMethodViolation(t *testing.T) {
	v := &compliance.Violation{
		Code:    "MERCHANT_REFUND_METHOD_RESTRICTED",
		Message: "The requested refund method is not permitted by merchant policy.",
		Details: map[string]any{
			"requested_method": "OTHER",
			"allowed_methods":  []string{"ORIGINAL_PAYMENT", "BALANCE"},
		},
	}

	assert.Equal(t,
		"Refund method OTHER is not permitted. Allowed methods: ORIGINAL_PAYMENT, BALANCE. "+
			"The requested refund method is not permitted by merchant policy.",
		svc.Explain(v))
}

func TestExplainDocumentationViolation(t *testing.T) {
	// Detail slices arrive as []any after a JSON round trip.
	v := &compliance.Violation{
		Code:    "REFUND_DOCUMENTATION_REQUIRED",
		Message: "Supporting documentation is required for high-value refunds.",
		Details: map[string]any{
			"missing_type":   "PROOF_OF_PURCHASE",
			"required_types": []any{"PROOF_OF_PURCHASE", "RETURN_AUTHORIZATION"},
			"provided_types": []any{"RETURN_AUTHORIZATION"},
		},
	}

	assert.Equal(t,
		"Missing required document: PROOF_OF_PURCHASE. "+
			"Required: PROOF_OF_PURCHASE, RETURN_AUTHORIZATION; provided: RETURN_AUTHORIZATION. "+
			"Supporting documentation is required for high-value refunds.",
		svc.Explain(v))
}

func TestExplainFrequencyViolation(t *testing.T) {
	v := &compliance.Violation{
		Code:    "REFUND_FREQUENCY_EXCEEDED",
		Message: "The customer has exceeded the merchant's refund frequency limit.",
		Details: map[string]any{
			"refund_count": 4,
			"limit":        3,
			"time_period":  "30 days",
		},
	}

	assert.Equal(t,
		"The refund count of 4 has reached the limit of 3 per 30 days. "+
			"The customer has exceeded the merchant's refund frequency limit.",
		svc.Explain(v))
}

func TestExplainFallbacks(t *testing.T) {
	assert.Equal(t, "No violation details provided", svc.Explain(nil))
	assert.Equal(t, "No violation details provided", svc.Explain(&compliance.Violation{}))

	// Unrecognized codes fall back to the message alone.
	v := &compliance.Violation{
		Code:    "SANCTIONS_HIT",
		Message: "Counterparty matched a sanctions list.",
	}
	assert.Equal(t, "Counterparty matched a sanctions list.", svc.Explain(v))

	// Code without message or matching details still yields something.
	assert.Equal(t, "No violation details provided",
		svc.Explain(&compliance.Violation{Code: "SANCTIONS_HIT"}))
}

func TestExplainNumberFormatting(t *testing.T) {
	// Whole floats from a JSON round trip render without a decimal point.
	v := &compliance.Violation{
		Code: "REFUND_FREQUENCY_EXCEEDED",
		Details: map[string]any{
			"refund_count": 4.0,
			"limit":        3.0,
			"time_period":  "30 days",
		},
	}

	assert.Equal(t,
		"The refund count of 4 has reached the limit of 3 per 30 days.",
		svc.Explain(v))
}
