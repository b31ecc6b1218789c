package model

import "time"

// Order is the immutable record created at successful checkout. Its ID comes
// from a counter independent of cart IDs.
type Order struct {
	ID             int64
	ShoppingCartID int64
	CustomerID     int64
	Items          []CartItem
	CreatedAt      time.Time
}
