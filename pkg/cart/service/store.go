package service

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"fulfillment/pkg/cart/model"
)

var (
	ErrCartCheckedOut  = errors.New("cart has already been checked out")
	ErrEmptyCart       = errors.New("cannot checkout an empty cart")
	ErrInvalidQuantity = errors.New("item quantity must be positive")
)

type CartStore interface {
	CreateCart(customerID int64) int64
	AddItem(cartID, productID, quantity int64) error
	// TryBeginCheckout atomically verifies the cart is open and non-empty and
	// flips it to checked out, returning a snapshot of its items. Under
	// concurrent calls for the same cart exactly one caller succeeds; the rest
	// get ErrCartCheckedOut.
	TryBeginCheckout(cartID int64) ([]model.CartItem, error)
	Cart(cartID int64) (model.ShoppingCart, error)
}

func NewCartStore() CartStore {
	return &cartStore{}
}

type cartStore struct {
	carts      sync.Map // cartID -> *cartEntry
	nextCartID atomic.Int64
}

// cartEntry is the live, mutable cart. Its mutex serializes item mutation and
// the checkout transition; nothing outside this file touches the fields.
type cartEntry struct {
	mu         sync.Mutex
	id         int64
	customerID int64
	items      map[int64]int64
	state      model.CartState
	createdAt  time.Time
}

func (s *cartStore) CreateCart(customerID int64) int64 {
	id := s.nextCartID.Add(1)
	s.carts.Store(id, &cartEntry{
		id:         id,
		customerID: customerID,
		items:      make(map[int64]int64),
		state:      model.Open,
		createdAt:  time.Now().UTC(),
	})
	return id
}

func (s *cartStore) AddItem(cartID, productID, quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	entry, err := s.entry(cartID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.state != model.Open {
		return ErrCartCheckedOut
	}

	entry.items[productID] += quantity
	return nil
}

func (s *cartStore) TryBeginCheckout(cartID int64) ([]model.CartItem, error) {
	entry, err := s.entry(cartID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.state != model.Open {
		return nil, ErrCartCheckedOut
	}
	if len(entry.items) == 0 {
		return nil, ErrEmptyCart
	}

	snapshot := make([]model.CartItem, 0, len(entry.items))
	for productID, quantity := range entry.items {
		snapshot = append(snapshot, model.CartItem{ProductID: productID, Quantity: quantity})
	}

	entry.state = model.CheckedOut
	return snapshot, nil
}

func (s *cartStore) Cart(cartID int64) (model.ShoppingCart, error) {
	entry, err := s.entry(cartID)
	if err != nil {
		return model.ShoppingCart{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	items := make(map[int64]int64, len(entry.items))
	for productID, quantity := range entry.items {
		items[productID] = quantity
	}

	return model.ShoppingCart{
		ID:         entry.id,
		CustomerID: entry.customerID,
		Items:      items,
		State:      entry.state,
		CreatedAt:  entry.createdAt,
	}, nil
}

func (s *cartStore) entry(cartID int64) (*cartEntry, error) {
	v, ok := s.carts.Load(cartID)
	if !ok {
		return nil, model.ErrCartNotFound
	}
	return v.(*cartEntry), nil
}
