package services

import (
	"context"
	"testing"

	"brewshop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func countOrders(t *testing.T, db *gorm.DB, cartID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Order{}).Where("cart_id = ?", cartID).Count(&n).Error)
	return n
}

// An order row that exists while the cart flag is still open trips the
// unique cart_id on orders.
func TestCheckoutHitsUniqueCartOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := models.UserOwner(1)
	cart, shipping := checkoutFixture(t, env, owner)

	existing := &models.Order{
		CartID:      cart.ID,
		ShippingID:  shipping.ID,
		TotalPrice:  dec("35.00"),
		OrderStatus: models.OrderPending,
	}
	require.NoError(t, env.db.Create(existing).Error)

	_, err := env.orders.Checkout(ctx, owner, CheckoutInput{CartID: cart.ID, ShippingID: shipping.ID})
	assert.ErrorIs(t, err, ErrCartConsumed)
	assert.EqualValues(t, 1, countOrders(t, env.db, cart.ID))
	assert.Empty(t, env.queue.msgs)
}

// A cart consumed between the row lock and the flag flip fails the
// conditional update and rolls the new order back.
func TestCheckoutLosesFlagFlip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := models.UserOwner(1)
	cart, shipping := checkoutFixture(t, env, owner)

	err := env.db.Callback().Create().After("gorm:create").Register("test:consume_cart", func(db *gorm.DB) {
		order, ok := db.Statement.Model.(*models.Order)
		if !ok || db.Error != nil {
			return
		}
		// same transaction as the checkout
		db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Cart{}).Where("id = ?", order.CartID).
			Update("is_order_created", true)
	})
	require.NoError(t, err)
	t.Cleanup(func() { env.db.Callback().Create().Remove("test:consume_cart") })

	_, err = env.orders.Checkout(ctx, owner, CheckoutInput{CartID: cart.ID, ShippingID: shipping.ID})
	assert.ErrorIs(t, err, ErrCartConsumed)
	assert.Zero(t, countOrders(t, env.db, cart.ID))
	assert.Empty(t, env.queue.msgs)
}
