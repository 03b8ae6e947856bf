// internal/payment/signature_test.go
package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	const secret = "whsec_test_123"

	signature := ComputeSignature(secret, "order_abc", "pay_xyz")
	assert.Len(t, signature, 64) // hex-encoded SHA-256

	tests := []struct {
		name     string
		orderRef string
		payRef   string
		received string
		valid    bool
	}{
		{"valid signature", "order_abc", "pay_xyz", signature, true},
		{"tampered order ref", "order_abd", "pay_xyz", signature, false},
		{"tampered payment ref", "order_abc", "pay_xyy", signature, false},
		{"empty signature", "order_abc", "pay_xyz", "", false},
		{"truncated signature", "order_abc", "pay_xyz", signature[:32], false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, VerifySignature(secret, tt.orderRef, tt.payRef, tt.received))
		})
	}
}

func TestVerifySignature_WrongSecret(t *testing.T) {
	signature := ComputeSignature("whsec_a", "order_abc", "pay_xyz")
	assert.False(t, VerifySignature("whsec_b", "order_abc", "pay_xyz", signature))
}
