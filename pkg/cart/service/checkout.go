package service

import (
	"context"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"fulfillment/pkg/cart/model"
)

// DefaultFirstOrderID is the order id handed to the first successful checkout
// unless configured otherwise.
const DefaultFirstOrderID = 1000

// CardAuthorizer is the boundary to the credit-card authorization collaborator.
// Authorize returns nil when the payment is authorized; otherwise it returns
// cca.ErrMalformedCard, cca.ErrPaymentDeclined or a transient service error.
type CardAuthorizer interface {
	Authorize(ctx context.Context, cardNumber string) error
}

// OrderPublisher hands a finished order to the warehouse queue.
type OrderPublisher interface {
	Publish(order model.Order) error
}

type CheckoutService interface {
	Checkout(ctx context.Context, cartID int64, cardNumber string) (int64, error)
}

func NewCheckoutService(store CartStore, authorizer CardAuthorizer, publisher OrderPublisher, firstOrderID int64) CheckoutService {
	s := &checkoutService{
		store:      store,
		authorizer: authorizer,
		publisher:  publisher,
	}
	if firstOrderID <= 0 {
		firstOrderID = DefaultFirstOrderID
	}
	s.nextOrderID.Store(firstOrderID - 1)
	return s
}

type checkoutService struct {
	store       CartStore
	authorizer  CardAuthorizer
	publisher   OrderPublisher
	nextOrderID atomic.Int64
}

// Checkout drives the cart through validating, authorizing, persisting and
// publishing. The cart transitions to checked out before the authorization
// outcome is known and is never rolled back: a declined card still consumes
// the cart. Publishing is best effort; a publish failure does not fail the
// checkout and the order id is returned regardless.
func (s *checkoutService) Checkout(ctx context.Context, cartID int64, cardNumber string) (int64, error) {
	items, err := s.store.TryBeginCheckout(cartID)
	if err != nil {
		return 0, err
	}

	if err := s.authorizer.Authorize(ctx, cardNumber); err != nil {
		log.WithFields(log.Fields{"cartID": cartID}).WithError(err).Warn("checkout authorization failed")
		return 0, err
	}

	cart, err := s.store.Cart(cartID)
	if err != nil {
		return 0, err
	}

	order := model.Order{
		ID:             s.nextOrderID.Add(1),
		ShoppingCartID: cartID,
		CustomerID:     cart.CustomerID,
		Items:          items,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.publisher.Publish(order); err != nil {
		log.WithFields(log.Fields{
			"orderID": order.ID,
			"cartID":  cartID,
		}).WithError(err).Error("failed to publish order to warehouse, order is still created")
	}

	log.WithFields(log.Fields{
		"orderID": order.ID,
		"cartID":  cartID,
		"items":   len(order.Items),
	}).Info("checkout completed")

	return order.ID, nil
}
