// internal/payment/signature.go
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeSignature produces the webhook signature the gateway sends alongside
// a captured payment: hex(HMAC-SHA256(secret, "<orderRef>|<paymentRef>")).
func ComputeSignature(secret, providerOrderRef, providerPaymentRef string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(providerOrderRef + "|" + providerPaymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a received signature in constant time.
func VerifySignature(secret, providerOrderRef, providerPaymentRef, received string) bool {
	expected := ComputeSignature(secret, providerOrderRef, providerPaymentRef)
	return hmac.Equal([]byte(expected), []byte(received))
}
