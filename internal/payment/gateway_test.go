package payment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_test", user)
		assert.Equal(t, "secret_test", pass)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var got map[string]any
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, float64(80000), got["amount"])
		assert.Equal(t, "INR", got["currency"])
		assert.Equal(t, float64(1), got["payment_capture"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_abc123","amount":80000,"currency":"INR","status":"created"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key_test", "secret_test")
	id, err := c.CreateOrder(context.Background(), 80000, "INR", true)
	require.NoError(t, err)
	assert.Equal(t, "order_abc123", id)
}

func TestClient_CreateOrder_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key_bad", "secret_bad")
	_, err := c.CreateOrder(context.Background(), 100, "INR", true)
	assert.Error(t, err)
}

func TestClient_CheckStatus(t *testing.T) {
	status := "created"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/orders/order_abc123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_abc123","status":"` + status + `"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key_test", "secret_test")

	paid, err := c.CheckStatus(context.Background(), "order_abc123")
	require.NoError(t, err)
	assert.False(t, paid)

	status = "paid"
	paid, err = c.CheckStatus(context.Background(), "order_abc123")
	require.NoError(t, err)
	assert.True(t, paid)
}

func TestFakeGateway(t *testing.T) {
	ctx := context.Background()
	g := NewFakeGateway()

	id, err := g.CreateOrder(ctx, 80000, "INR", true)
	require.NoError(t, err)
	assert.Equal(t, int64(80000), g.Amount(id))

	paid, err := g.CheckStatus(ctx, id)
	require.NoError(t, err)
	assert.False(t, paid)

	g.MarkPaid(id)
	paid, err = g.CheckStatus(ctx, id)
	require.NoError(t, err)
	assert.True(t, paid)
}
