package messaging

import (
	"time"

	"fulfillment/pkg/cart/model"
)

// OrderMessage is the wire projection of an order. Identity fields are
// pointers so the consumer can tell a missing field from a zero value.
type OrderMessage struct {
	OrderID        *int64        `json:"order_id"`
	ShoppingCartID int64         `json:"shopping_cart_id"`
	CustomerID     int64         `json:"customer_id"`
	Items          []MessageItem `json:"items"`
	Timestamp      string        `json:"timestamp,omitempty"`
}

type MessageItem struct {
	ProductID *int64 `json:"product_id"`
	Quantity  *int64 `json:"quantity"`
}

func NewOrderMessage(order model.Order) OrderMessage {
	orderID := order.ID
	items := make([]MessageItem, 0, len(order.Items))
	for _, item := range order.Items {
		productID, quantity := item.ProductID, item.Quantity
		items = append(items, MessageItem{ProductID: &productID, Quantity: &quantity})
	}

	return OrderMessage{
		OrderID:        &orderID,
		ShoppingCartID: order.ShoppingCartID,
		CustomerID:     order.CustomerID,
		Items:          items,
		Timestamp:      order.CreatedAt.Format(time.RFC3339),
	}
}
