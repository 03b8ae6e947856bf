// internal/payment/gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"time"

	"funnel-workers/internal/common/config"
	"funnel-workers/internal/common/errors"
	"funnel-workers/internal/common/http"
	"funnel-workers/internal/common/logger"
)

// Gateway creates orders at the external payment provider.
type Gateway interface {
	// CreateOrder registers an order with the provider and returns the
	// provider's order reference, which the checkout widget needs.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error)
	// PublishableKey is the client-side key embedded in the checkout page.
	PublishableKey() string
}

// razorpayOrderRequest is the provider's order creation payload. Amount is in
// minor units (paise).
type razorpayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// RazorpayGateway talks to the Razorpay Orders API over HTTPS with basic
// auth. Every transport or provider failure maps to GATEWAY_UNAVAILABLE so
// the workflow retries instead of losing the enrollment attempt.
type RazorpayGateway struct {
	client    *http.Client
	baseURL   string
	keyID     string
	keySecret string
	logger    logger.Logger
}

func NewRazorpayGateway(cfg config.PaymentConfig, log logger.Logger) *RazorpayGateway {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RazorpayGateway{
		client:    http.NewClient(timeout),
		baseURL:   cfg.BaseURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		logger:    log.WithFields(map[string]interface{}{"component": "payment_gateway"}),
	}
}

func (g *RazorpayGateway) PublishableKey() string {
	return g.keyID
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	payload, err := json.Marshal(razorpayOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", errors.NewGatewayUnavailableError(fmt.Errorf("marshal order request: %w", err))
	}

	req, err := nethttp.NewRequest(nethttp.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return "", errors.NewGatewayUnavailableError(fmt.Errorf("build order request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.DoWithContext(ctx, req)
	if err != nil {
		g.logger.WithError(err).Error("payment gateway unreachable", nil)
		return "", errors.NewGatewayUnavailableError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.NewGatewayUnavailableError(fmt.Errorf("read order response: %w", err))
	}

	if resp.StatusCode != nethttp.StatusOK {
		var gatewayErr razorpayErrorResponse
		_ = json.Unmarshal(body, &gatewayErr)
		g.logger.Error("payment gateway rejected order", map[string]interface{}{
			"status_code": resp.StatusCode,
			"error_code":  gatewayErr.Error.Code,
		})
		return "", errors.NewGatewayUnavailableError(
			fmt.Errorf("gateway returned %d: %s", resp.StatusCode, gatewayErr.Error.Description))
	}

	var order razorpayOrderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return "", errors.NewGatewayUnavailableError(fmt.Errorf("decode order response: %w", err))
	}
	if order.ID == "" {
		return "", errors.NewGatewayUnavailableError(fmt.Errorf("gateway returned order without id"))
	}

	g.logger.Info("provider order created", map[string]interface{}{
		"provider_order_ref": order.ID,
		"amount":             order.Amount,
		"currency":           order.Currency,
	})
	return order.ID, nil
}
