package fixtures

import (
	"testing"

	"github.com/refundworks/refund-compliance-engine/internal/domain/compliance"
	"github.com/refundworks/refund-compliance-engine/internal/domain/refund"
	"github.com/refundworks/refund-compliance-engine/internal/domain/values"
)

// RefundRequestBuilder builds test refund requests
type RefundRequestBuilder struct {
	t       *testing.T
	request refund.Request
}

// NewRefundRequestBuilder creates a builder with sane defaults
func NewRefundRequestBuilder(t *testing.T) *RefundRequestBuilder {
	t.Helper()
	return &RefundRequestBuilder{
		t: t,
		request: refund.Request{
			ID:     "REF-TEST-001",
			Amount: values.MustNewMoneyFromFloat(100.00, values.USD),
			Method: refund.MethodOriginalPayment,
		},
	}
}

func (b *RefundRequestBuilder) WithID(id string) *RefundRequestBuilder {
	b.request.ID = id
	return b
}

func (b *RefundRequestBuilder) WithAmount(amount float64) *RefundRequestBuilder {
	b.request.Amount = values.MustNewMoneyFromFloat(amount, values.USD)
	return b
}

func (b *RefundRequestBuilder) WithMethod(method refund.Method) *RefundRequestBuilder {
	b.request.Method = method
	return b
}

func (b *RefundRequestBuilder) WithDocuments(types ...string) *RefundRequestBuilder {
	for _, docType := range types {
		b.request.SupportingDocuments = append(b.request.SupportingDocuments, refund.Document{Type: docType})
	}
	return b
}

func (b *RefundRequestBuilder) WithMetadata(key string, value any) *RefundRequestBuilder {
	if b.request.Metadata == nil {
		b.request.Metadata = map[string]any{}
	}
	b.request.Metadata[key] = value
	return b
}

func (b *RefundRequestBuilder) Build() *refund.Request {
	request := b.request
	return &request
}

// ContextBuilder builds test evaluation contexts
type ContextBuilder struct {
	t   *testing.T
	ctx compliance.Context
}

// NewContextBuilder creates an empty context builder
func NewContextBuilder(t *testing.T) *ContextBuilder {
	t.Helper()
	return &ContextBuilder{t: t, ctx: compliance.Context{}}
}

func (b *ContextBuilder) WithMerchant(merchantID string) *ContextBuilder {
	b.ctx[compliance.KeyMerchantID] = merchantID
	return b
}

func (b *ContextBuilder) WithCardNetwork(network string) *ContextBuilder {
	b.ctx[compliance.KeyCardNetwork] = network
	return b
}

func (b *ContextBuilder) WithRefundCount(count int) *ContextBuilder {
	b.ctx[compliance.KeyRefundCount] = count
	return b
}

// WithTransaction sets the transaction details the built-in rules read
func (b *ContextBuilder) WithTransaction(amount float64, processedAt string) *ContextBuilder {
	b.ctx[compliance.KeyTransactionDetails] = map[string]any{
		"amount":      amount,
		"processedAt": processedAt,
	}
	return b
}

// With sets an arbitrary context key
func (b *ContextBuilder) With(key string, value any) *ContextBuilder {
	b.ctx[key] = value
	return b
}

func (b *ContextBuilder) Build() compliance.Context {
	ctx := compliance.Context{}
	for k, v := range b.ctx {
		ctx[k] = v
	}
	return ctx
}
