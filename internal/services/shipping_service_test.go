package services

import (
	"context"
	"testing"

	"brewshop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateShipping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := models.SessionOwner("sess-1")

	cart, err := env.carts.ResolveOpenCart(ctx, owner)
	require.NoError(t, err)

	input := shippingInput(cart.ID)
	input.FirstName = "  Ada "
	shipping, err := env.shipping.CreateShipping(ctx, owner, input)
	require.NoError(t, err)
	assert.Equal(t, "Ada", shipping.FirstName)
	assert.Equal(t, models.DefaultCountry, shipping.Country)

	got, err := env.shipping.GetByCart(ctx, owner, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, shipping.ID, got.ID)

	_, err = env.shipping.CreateShipping(ctx, owner, shippingInput(cart.ID))
	assert.ErrorIs(t, err, ErrShippingExists)

	list, err := env.shipping.ListShipping(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateShippingRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := models.SessionOwner("sess-1")
	cart, err := env.carts.ResolveOpenCart(ctx, owner)
	require.NoError(t, err)

	input := shippingInput(cart.ID)
	input.Email = "not-an-address"
	input.City = ""
	_, err = env.shipping.CreateShipping(ctx, owner, input)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "city")

	_, err = env.shipping.CreateShipping(ctx, models.SessionOwner("sess-2"), shippingInput(cart.ID))
	assert.ErrorIs(t, err, ErrInvalidReference)
	assert.ErrorIs(t, err, ErrCartNotFound)

	_, err = env.shipping.CreateShipping(ctx, owner, shippingInput(cart.ID+100))
	assert.ErrorIs(t, err, ErrCartNotFound)

	_, err = env.shipping.GetByCart(ctx, models.SessionOwner("sess-2"), cart.ID)
	assert.ErrorIs(t, err, ErrShippingNotFound)
}
