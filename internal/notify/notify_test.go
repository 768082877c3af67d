package notify

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpro/storefront/internal/domain/order"
)

func TestEncodeEvent(t *testing.T) {
	o := &order.Order{
		OrderID:       "order_1",
		CustomerEmail: "jane@example.com",
		Status:        order.StatusPending,
		GrandTotal:    decimal.RequireFromString("800"),
	}

	raw := encodeEvent("order_placed", o, order.StatusPending)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "order_placed", got["event"])
	assert.Equal(t, "order_1", got["order_id"])
	assert.Equal(t, "jane@example.com", got["customer_email"])
	assert.Equal(t, "pending", got["status"])
	assert.Equal(t, "800", got["grand_total"])
	assert.NotEmpty(t, got["at"])
}
