package model

import (
	"errors"
	"time"
)

var ErrCartNotFound = errors.New("shopping cart not found")

type CartState int

const (
	Open CartState = iota
	CheckedOut
)

func (s CartState) String() string {
	switch s {
	case Open:
		return "open"
	case CheckedOut:
		return "checked_out"
	default:
		return "unknown"
	}
}

// ShoppingCart is a read-only snapshot of a cart. Live carts are owned by the
// cart store and mutated only through it.
type ShoppingCart struct {
	ID         int64
	CustomerID int64
	Items      map[int64]int64
	State      CartState
	CreatedAt  time.Time
}

// CartItem is the product/quantity pair used in order snapshots and on the wire.
type CartItem struct {
	ProductID int64
	Quantity  int64
}
