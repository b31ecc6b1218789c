package messaging

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment/pkg/cart/model"
)

func TestNewOrderMessageWireFormat(t *testing.T) {
	createdAt := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

	msg := NewOrderMessage(model.Order{
		ID:             1000,
		ShoppingCartID: 1,
		CustomerID:     100,
		Items: []model.CartItem{
			{ProductID: 5, Quantity: 2},
		},
		CreatedAt: createdAt,
	})

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(body, &wire))

	assert.Equal(t, float64(1000), wire["order_id"])
	assert.Equal(t, float64(1), wire["shopping_cart_id"])
	assert.Equal(t, float64(100), wire["customer_id"])
	assert.Equal(t, "2025-03-14T15:09:26Z", wire["timestamp"])

	items, ok := wire["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	item, ok := items[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(5), item["product_id"])
	assert.Equal(t, float64(2), item["quantity"])
}

func TestOrderMessageDistinguishesMissingFields(t *testing.T) {
	var msg OrderMessage
	require.NoError(t, json.Unmarshal([]byte(`{"shopping_cart_id":1,"items":[{"product_id":5}]}`), &msg))

	assert.Nil(t, msg.OrderID)
	require.Len(t, msg.Items, 1)
	require.NotNil(t, msg.Items[0].ProductID)
	assert.Equal(t, int64(5), *msg.Items[0].ProductID)
	assert.Nil(t, msg.Items[0].Quantity)
}
