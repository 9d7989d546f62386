package models_test

import (
	"testing"

	"storefront/apperrors"
	"storefront/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderSnapshotsCartLines(t *testing.T) {
	cart := newCart()
	shirt := newProduct("19.99")
	socks := newProduct("2.50")
	require.NoError(t, cart.AddItem(models.NewCartItem(shirt, 2)))
	require.NoError(t, cart.AddItem(models.NewCartItem(socks, 3)))

	order, err := models.NewOrder(cart)
	require.NoError(t, err)

	assert.Equal(t, cart.ID, order.CartID)
	assert.Equal(t, models.OrderPending, order.Status)
	assertMoney(t, "47.48", order.Total)
	assert.Equal(t, 5, order.ItemCount())
	require.Len(t, order.Items, 2)

	first := order.Items[0]
	assert.Equal(t, order.ID, first.OrderID)
	assert.Equal(t, 0, first.Position)
	assert.Equal(t, shirt.ID, first.ProductID)
	assert.Equal(t, shirt.Name, first.ProductName)
	assertMoney(t, "19.99", first.UnitPrice)
	assertMoney(t, "39.98", first.LineTotal)
	assert.Equal(t, 1, order.Items[1].Position)

	// later price changes do not touch the snapshot
	shirt.Price = shirt.Price.Add(shirt.Price)
	assertMoney(t, "19.99", first.UnitPrice)
	assert.Len(t, cart.Items, 2)
}

func TestNewOrderRejectsEmptyCart(t *testing.T) {
	_, err := models.NewOrder(newCart())

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestNewOrderNeedsLoadedProducts(t *testing.T) {
	cart := newCart()
	require.NoError(t, cart.AddItem(&models.CartItem{ID: uuid.New(), ProductID: uuid.New(), Quantity: 1}))

	_, err := models.NewOrder(cart)

	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestOrderPlaceForAndMarkPaid(t *testing.T) {
	cart := newCart()
	require.NoError(t, cart.AddItem(models.NewCartItem(newProduct("1.00"), 1)))
	order, err := models.NewOrder(cart)
	require.NoError(t, err)
	user := newUser()

	order.PlaceFor(user)
	order.MarkPaid("paypal", "PAYPAL-123")

	require.NotNil(t, order.UserID)
	assert.Equal(t, user.ID, *order.UserID)
	assert.Equal(t, models.OrderPaid, order.Status)
	assert.Equal(t, "paypal", order.PaymentGateway)
	assert.Equal(t, "PAYPAL-123", order.PaymentReference)

	order.PlaceFor(nil)
	assert.Nil(t, order.UserID)
}
