package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnonymousCartFlow(t *testing.T) {
	s := newTestServer(t)
	ale := s.product("Pale Ale", "5.00")
	stout := s.product("Stout", "6.50")

	w := s.do(http.MethodPost, "/api/v1/cart/add_to_cart/", map[string]interface{}{"product_id": ale.ID, "quantity": 20})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	key := w.Header().Get("X-Session-Key")
	require.NotEmpty(t, key)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "sessionid="+key)

	body := decode(t, w)
	assert.EqualValues(t, 20, body["total_quantity"])

	w = s.do(http.MethodPost, "/api/v1/cart/add_to_cart/", map[string]interface{}{"product_id": stout.ID, "quantity": 5}, withSession(key))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, key, w.Header().Get("X-Session-Key"))
	cart := decode(t, w)["cart"].(map[string]interface{})
	assert.Equal(t, "132.50", money(t, cart["total_price"]))
	assert.EqualValues(t, 25, cart["total_quantity"])
	assert.EqualValues(t, 1, cart["free_cases"])
	assert.Equal(t, key, cart["session_key"])
	cartID := idOf(t, cart)

	w = s.do(http.MethodGet, "/api/v1/cart/", nil, withSession(key))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 1)

	// other shoppers see nothing
	w = s.do(http.MethodGet, "/api/v1/cart/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeList(t, w))

	w = s.do(http.MethodGet, fmt.Sprintf("/api/v1/cart/%d/", cartID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, fmt.Sprintf("/api/v1/cart/%d/", cartID), nil, withSession("stale-key"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/v1/cart/%d/remove_from_cart/", cartID),
		map[string]interface{}{"product_id": stout.ID}, withSession(key))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cart = decode(t, w)["cart"].(map[string]interface{})
	assert.EqualValues(t, 0, cart["free_cases"])
}

func TestUpdateQuantity(t *testing.T) {
	s := newTestServer(t)
	ale := s.product("Pale Ale", "5.00")

	w := s.do(http.MethodPost, "/api/v1/cart/add_to_cart/", map[string]interface{}{"product_id": ale.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	key := w.Header().Get("X-Session-Key")
	cart := decode(t, w)["cart"].(map[string]interface{})
	cartID := idOf(t, cart)
	itemID := idOf(t, cart["items"].([]interface{})[0].(map[string]interface{}))
	path := fmt.Sprintf("/api/v1/cart/%d/update_quantity/", cartID)

	w = s.do(http.MethodPost, path, map[string]interface{}{"item_id": itemID, "quantity": 0}, withSession(key))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Quantity must be greater than 0", decode(t, w)["error"])

	w = s.do(http.MethodPost, path, map[string]interface{}{"item_id": itemID, "quantity": 3}, withSession(key))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Quantity updated successfully", body["message"])
	assert.Equal(t, "15.00", money(t, body["total_price"]))

	w = s.do(http.MethodPost, path, map[string]interface{}{"item_id": 9999, "quantity": 3}, withSession(key))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReplaceAndDeleteCart(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user("ada@example.com", false)
	ale := s.product("Pale Ale", "5.00")
	stout := s.product("Stout", "6.00")

	w := s.do(http.MethodPost, "/api/v1/cart/", nil, withToken(token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cart := decode(t, w)
	cartID := idOf(t, cart)
	assert.Nil(t, cart["session_key"])

	path := fmt.Sprintf("/api/v1/cart/%d/", cartID)
	w = s.do(http.MethodPatch, path, map[string]interface{}{"items": []map[string]interface{}{
		{"product_id": ale.ID, "quantity": 30},
		{"product_id": stout.ID, "quantity": 10},
	}}, withToken(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cart = decode(t, w)
	assert.EqualValues(t, 2, cart["free_cases"])
	assert.Equal(t, "210.00", money(t, cart["total_price"]))

	w = s.do(http.MethodDelete, path, nil, withToken(token))
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodGet, path, nil, withToken(token))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddToCartValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/cart/add_to_cart/", map[string]interface{}{"quantity": 2})
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := decode(t, w)["details"].(map[string]interface{})
	assert.Equal(t, "This field is required.", details["product_id"])

	w = s.do(http.MethodPost, "/api/v1/cart/add_to_cart/", map[string]interface{}{"product_id": 9999})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "product not found", decode(t, w)["error"])
}
