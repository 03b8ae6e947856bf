// internal/workers/payment/create-payment-order/models.go
package createpaymentorder

type Input struct {
	ReservationID string `json:"reservationId"`
}

type Output struct {
	OrderID          string `json:"orderId"`
	ProviderOrderRef string `json:"providerOrderRef"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	PublishableKey   string `json:"publishableKey"`
}
