// internal/workers/payment/verify-payment/models.go
package verifypayment

type Input struct {
	ProviderOrderRef   string `json:"providerOrderRef"`
	ProviderPaymentRef string `json:"providerPaymentRef"`
	Signature          string `json:"signature"`
	Amount             int64  `json:"amount"`
	Currency           string `json:"currency"`
}

type Output struct {
	EnrollmentID  string `json:"enrollmentId"`
	ReservationID string `json:"reservationId"`
	OrderID       string `json:"orderId"`
	Enrolled      bool   `json:"enrolled"`
}
