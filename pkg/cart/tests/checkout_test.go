package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fulfillment/pkg/cart/model"
	"fulfillment/pkg/cart/service"
	"fulfillment/pkg/cca"
)

const validCard = "1234-5678-9012-3456"

func setup(t *testing.T) (service.CheckoutService, service.CartStore, *mockAuthorizer, *mockPublisher) {
	t.Helper()
	store := service.NewCartStore()
	authorizer := &mockAuthorizer{}
	publisher := &mockPublisher{}
	checkout := service.NewCheckoutService(store, authorizer, publisher, 1000)
	return checkout, store, authorizer, publisher
}

func TestCheckout(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		checkout, store, authorizer, publisher := setup(t)
		cartID := store.CreateCart(100)
		require.NoError(t, store.AddItem(cartID, 5, 2))

		orderID, err := checkout.Checkout(context.Background(), cartID, validCard)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, orderID, int64(1000))
		assert.Equal(t, 1, authorizer.calls)

		cart, err := store.Cart(cartID)
		require.NoError(t, err)
		assert.Equal(t, model.CheckedOut, cart.State)

		assert.ErrorIs(t, store.AddItem(cartID, 7, 1), service.ErrCartCheckedOut)

		require.Len(t, publisher.orders, 1)
		order := publisher.orders[0]
		assert.Equal(t, orderID, order.ID)
		assert.Equal(t, cartID, order.ShoppingCartID)
		assert.Equal(t, int64(100), order.CustomerID)
		require.Len(t, order.Items, 1)
		assert.Equal(t, int64(5), order.Items[0].ProductID)
		assert.Equal(t, int64(2), order.Items[0].Quantity)
	})

	t.Run("Order ids are monotonic", func(t *testing.T) {
		checkout, store, _, _ := setup(t)

		first := store.CreateCart(100)
		require.NoError(t, store.AddItem(first, 5, 1))
		second := store.CreateCart(101)
		require.NoError(t, store.AddItem(second, 5, 1))

		firstOrder, err := checkout.Checkout(context.Background(), first, validCard)
		require.NoError(t, err)
		secondOrder, err := checkout.Checkout(context.Background(), second, validCard)
		require.NoError(t, err)

		assert.Equal(t, int64(1000), firstOrder)
		assert.Equal(t, int64(1001), secondOrder)
	})

	t.Run("Fail on unknown cart before authorization", func(t *testing.T) {
		checkout, _, authorizer, _ := setup(t)

		_, err := checkout.Checkout(context.Background(), 42, validCard)

		assert.ErrorIs(t, err, model.ErrCartNotFound)
		assert.Zero(t, authorizer.calls)
	})

	t.Run("Fail on empty cart before authorization", func(t *testing.T) {
		checkout, store, authorizer, _ := setup(t)
		cartID := store.CreateCart(100)

		_, err := checkout.Checkout(context.Background(), cartID, validCard)

		assert.ErrorIs(t, err, service.ErrEmptyCart)
		assert.Zero(t, authorizer.calls)
	})

	t.Run("Declined card consumes the cart", func(t *testing.T) {
		checkout, store, authorizer, publisher := setup(t)
		authorizer.err = cca.ErrPaymentDeclined
		cartID := store.CreateCart(100)
		require.NoError(t, store.AddItem(cartID, 5, 2))

		_, err := checkout.Checkout(context.Background(), cartID, validCard)
		assert.ErrorIs(t, err, cca.ErrPaymentDeclined)

		// The checkout flag flips before the authorization outcome is known
		// and is never rolled back.
		cart, err := store.Cart(cartID)
		require.NoError(t, err)
		assert.Equal(t, model.CheckedOut, cart.State)

		assert.Empty(t, publisher.orders)
	})

	t.Run("Authorizer outage is not a decline", func(t *testing.T) {
		checkout, store, authorizer, publisher := setup(t)
		authorizer.err = cca.ErrServiceUnavailable
		cartID := store.CreateCart(100)
		require.NoError(t, store.AddItem(cartID, 5, 2))

		_, err := checkout.Checkout(context.Background(), cartID, validCard)

		assert.ErrorIs(t, err, cca.ErrServiceUnavailable)
		assert.NotErrorIs(t, err, cca.ErrPaymentDeclined)
		assert.Empty(t, publisher.orders)
	})

	t.Run("Publish failure does not fail the checkout", func(t *testing.T) {
		checkout, store, _, publisher := setup(t)
		publisher.err = errors.New("broker is down")
		cartID := store.CreateCart(100)
		require.NoError(t, store.AddItem(cartID, 5, 2))

		orderID, err := checkout.Checkout(context.Background(), cartID, validCard)

		require.NoError(t, err)
		assert.Equal(t, int64(1000), orderID)
	})
}

var _ service.CardAuthorizer = &mockAuthorizer{}

type mockAuthorizer struct {
	calls int
	err   error
}

func (m *mockAuthorizer) Authorize(_ context.Context, _ string) error {
	m.calls++
	return m.err
}

var _ service.OrderPublisher = &mockPublisher{}

type mockPublisher struct {
	orders []model.Order
	err    error
}

func (m *mockPublisher) Publish(order model.Order) error {
	if m.err != nil {
		return m.err
	}
	m.orders = append(m.orders, order)
	return nil
}
