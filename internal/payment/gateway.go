// Package payment talks to the external payment gateway. Checkout creates a
// gateway order in minor currency units, the browser completes the payment
// against the gateway directly, and confirmation verifies the charge before
// an order is finalized.
package payment

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Gateway is the payment provider client. Amounts are integer minor units
// (paise for INR).
type Gateway interface {
	// CreateOrder registers a payable order with the provider and returns
	// the provider's order id.
	CreateOrder(ctx context.Context, amount int64, currency string, capture bool) (string, error)
	// CheckStatus reports whether the given provider order has been paid.
	CheckStatus(ctx context.Context, orderID string) (bool, error)
}

// Client implements Gateway over the provider's REST API with basic auth.
type Client struct {
	http      *http.Client
	baseURL   string
	keyID     string
	keySecret string
}

// NewClient returns a Client for the given API base URL and key pair.
func NewClient(baseURL, keyID, keySecret string) *Client {
	return &Client{
		http:      &http.Client{Timeout: 15 * time.Second},
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
	}
}

func (c *Client) CreateOrder(ctx context.Context, amount int64, currency string, capture bool) (string, error) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("amount", func(e *jx.Encoder) { e.Int64(amount) })
		e.Field("currency", func(e *jx.Encoder) { e.Str(currency) })
		e.Field("payment_capture", func(e *jx.Encoder) {
			if capture {
				e.Int(1)
			} else {
				e.Int(0)
			}
		})
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(e.Bytes()))
	if err != nil {
		return "", errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "call gateway")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("gateway order create: status %d: %s", resp.StatusCode, body)
	}

	var orderID string
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "id" {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return err
		}
		orderID = v
		return nil
	}); err != nil {
		return "", errors.Wrap(err, "decode response")
	}
	if orderID == "" {
		return "", errors.New("gateway response missing order id")
	}
	return orderID, nil
}

func (c *Client) CheckStatus(ctx context.Context, orderID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/orders/"+orderID, nil)
	if err != nil {
		return false, errors.Wrap(err, "create request")
	}
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "call gateway")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, errors.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return false, errors.Errorf("gateway order fetch: status %d: %s", resp.StatusCode, body)
	}

	var status string
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "status" {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return err
		}
		status = v
		return nil
	}); err != nil {
		return false, errors.Wrap(err, "decode response")
	}
	return status == "paid", nil
}
