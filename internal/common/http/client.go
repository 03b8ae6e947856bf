// internal/common/http/client.go
// Package http wraps net/http with the timeout discipline outbound calls to
// the payment gateway rely on: every request carries both a client-level
// timeout and the caller's context deadline.
package http

import (
	"context"
	"net/http"
	"time"
)

type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// DoWithContext sends the request bound to ctx, so a job timeout cancels the
// gateway call rather than leaving it to the transport timeout alone.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}
