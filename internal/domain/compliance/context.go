package compliance

import "github.com/refundworks/refund-compliance-engine/internal/fieldpath"

// Well-known context keys populated by callers
const (
	KeyMerchantID         = "merchantId"
	KeyCardNetwork        = "cardNetwork"
	KeyPaymentMethodType  = "paymentMethodType"
	KeyRefundCount        = "refundCount"
	KeyTransactionDetails = "transactionDetails"
)

// Context is the open-ended bundle of facts one evaluation runs against:
// transaction details, merchant identity, payment network, refund history
// counters, and arbitrary extension fields. It is read-only for the engine
// and scoped to a single evaluation call.
type Context map[string]any

// Resolve resolves a dotted field path against the context
func (c Context) Resolve(path string) (any, bool) {
	return fieldpath.Resolve(c, path)
}

// MerchantID returns the merchant identifier when present
func (c Context) MerchantID() (string, bool) {
	return c.stringValue(KeyMerchantID)
}

// CardNetwork returns the payment card network when present
func (c Context) CardNetwork() (string, bool) {
	return c.stringValue(KeyCardNetwork)
}

// PaymentMethodType returns the payment method type when present
func (c Context) PaymentMethodType() (string, bool) {
	return c.stringValue(KeyPaymentMethodType)
}

// RefundCount returns the caller-populated refund counter, or zero when the
// history collaborator did not supply one. The engine performs no history
// lookups of its own.
func (c Context) RefundCount() int {
	value, ok := c[KeyRefundCount]
	if !ok {
		return 0
	}
	switch n := value.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func (c Context) stringValue(key string) (string, bool) {
	value, ok := c[key]
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
