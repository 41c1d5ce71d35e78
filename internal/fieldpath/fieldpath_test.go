package fieldpath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/refundworks/refund-compliance-engine/internal/fieldpath"
)

func TestResolve(t *testing.T) {
	root := map[string]any{
		"merchantId": "MERCH-001",
		"transactionDetails": map[string]any{
			"amount":      50.0,
			"processedAt": "2024-01-15T10:30:00Z",
			"card": map[string]any{
				"network": "VISA",
			},
		},
		"nullField": nil,
	}

	tests := []struct {
		name      string
		path      string
		wantValue any
		wantOK    bool
	}{
		{
			name:      "top-level field",
			path:      "merchantId",
			wantValue: "MERCH-001",
			wantOK:    true,
		},
		{
			name:      "nested field",
			path:      "transactionDetails.amount",
			wantValue: 50.0,
			wantOK:    true,
		},
		{
			name:      "deeply nested field",
			path:      "transactionDetails.card.network",
			wantValue: "VISA",
			wantOK:    true,
		},
		{
			name:      "intermediate map returned whole",
			path:      "transactionDetails.card",
			wantValue: map[string]any{"network": "VISA"},
			wantOK:    true,
		},
		{
			name:   "missing top-level segment",
			path:   "paymentDetails.amount",
			wantOK: false,
		},
		{
			name:   "missing leaf segment",
			path:   "transactionDetails.currency",
			wantOK: false,
		},
		{
			name:   "traversal through scalar",
			path:   "merchantId.sub",
			wantOK: false,
		},
		{
			name:   "nil value treated as absent",
			path:   "nullField",
			wantOK: false,
		},
		{
			name:   "empty path",
			path:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := fieldpath.Resolve(root, tt.path)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantValue, value)
			} else {
				assert.Nil(t, value)
			}
		})
	}
}

func TestResolveNilRoot(t *testing.T) {
	_, ok := fieldpath.Resolve(nil, "anything")
	assert.False(t, ok)
}
