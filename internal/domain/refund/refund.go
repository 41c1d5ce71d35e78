// Package refund holds the refund request entity evaluated by the
// compliance engine. Requests are owned by the caller and never mutated
// during evaluation.
package refund

import (
	"github.com/refundworks/refund-compliance-engine/internal/domain/values"
	"github.com/refundworks/refund-compliance-engine/internal/fieldpath"
)

// Method identifies how a refund is paid out
type Method string

const (
	MethodOriginalPayment Method = "ORIGINAL_PAYMENT"
	MethodBalance         Method = "BALANCE"
	MethodStoreCredit     Method = "STORE_CREDIT"
	MethodBankTransfer    Method = "BANK_TRANSFER"
	MethodOther           Method = "OTHER"
)

// Document is a piece of supporting evidence attached to a refund request
type Document struct {
	Type      string `json:"documentType"`
	Reference string `json:"reference,omitempty"`
}

// Common supporting document types
const (
	DocProofOfPurchase   = "PROOF_OF_PURCHASE"
	DocReturnAuth        = "RETURN_AUTHORIZATION"
	DocCustomerStatement = "CUSTOMER_STATEMENT"
)

// Request is a refund request under compliance evaluation
type Request struct {
	ID                  string         `json:"id"`
	Amount              values.Money   `json:"amount"`
	Method              Method         `json:"refundMethod"`
	SupportingDocuments []Document     `json:"supportingDocuments,omitempty"`
	Metadata            map[string]any `json:"metadata,omitempty"`
}

// FieldValue is the typed accessor rules use to read request fields.
// Well-known fields are served directly; anything else resolves through
// the request metadata by dotted path. Absence is reported, not an error.
func (r *Request) FieldValue(path string) (any, bool) {
	switch path {
	case "amount":
		return r.Amount.ToFloat64(), true
	case "id":
		return r.ID, true
	case "refundMethod", "refund_method":
		return string(r.Method), true
	}
	return fieldpath.Resolve(r.Metadata, path)
}

// DocumentTypes returns the documentType values of all supporting documents
func (r *Request) DocumentTypes() []string {
	types := make([]string, 0, len(r.SupportingDocuments))
	for _, doc := range r.SupportingDocuments {
		types = append(types, doc.Type)
	}
	return types
}

// HasDocumentType reports whether a supporting document of the given type
// was provided
func (r *Request) HasDocumentType(docType string) bool {
	for _, doc := range r.SupportingDocuments {
		if doc.Type == docType {
			return true
		}
	}
	return false
}
