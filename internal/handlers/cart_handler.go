package handlers

import (
	"net/http"

	"brewshop/internal/pricing"
	"brewshop/internal/services"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	carts    services.CartService
	sessions *Sessions
}

func NewCartHandler(carts services.CartService, sessions *Sessions) *CartHandler {
	return &CartHandler{carts: carts, sessions: sessions}
}

type addToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  *int `json:"quantity"`
}

type removeFromCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

type updateQuantityRequest struct {
	ItemID   uint `json:"item_id" binding:"required"`
	Quantity *int `json:"quantity" binding:"required"`
}

type setItemsRequest struct {
	Items []struct {
		ProductID uint `json:"product_id" binding:"required"`
		Quantity  int  `json:"quantity"`
	} `json:"items" binding:"dive"`
}

// owner returns the caller's viewer for operations on an existing cart.
// Anonymous callers without a session own nothing.
func (h *CartHandler) owner(c *gin.Context) (services.Viewer, bool) {
	viewer, ok, err := h.sessions.current(c)
	if err != nil {
		respondError(c, err)
		return viewer, false
	}
	if !ok {
		respondError(c, services.ErrCartNotFound)
		return viewer, false
	}
	return viewer, true
}

func (h *CartHandler) ListCarts(c *gin.Context) {
	viewer, ok, err := h.sessions.current(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, []services.CartView{})
		return
	}

	carts, err := h.carts.ListCarts(c.Request.Context(), viewer.Owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, carts)
}

// CreateCart returns the caller's open cart, creating it when needed.
func (h *CartHandler) CreateCart(c *gin.Context) {
	viewer, err := h.sessions.resolve(c)
	if err != nil {
		respondError(c, err)
		return
	}
	cart, err := h.carts.GetOpenCart(c.Request.Context(), viewer.Owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}

func (h *CartHandler) GetCart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	viewer, ok := h.owner(c)
	if !ok {
		return
	}
	cart, err := h.carts.GetCart(c.Request.Context(), viewer.Owner, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) UpdateCart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req setItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	viewer, ok := h.owner(c)
	if !ok {
		return
	}

	items := make([]services.ItemQuantity, len(req.Items))
	for i, item := range req.Items {
		items[i] = services.ItemQuantity{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	cart, err := h.carts.SetItems(c.Request.Context(), viewer.Owner, id, items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) DeleteCart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	viewer, ok := h.owner(c)
	if !ok {
		return
	}
	if err := h.carts.DeleteCart(c.Request.Context(), viewer.Owner, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	viewer, err := h.sessions.resolve(c)
	if err != nil {
		respondError(c, err)
		return
	}
	cart, item, err := h.carts.AddToCart(c.Request.Context(), viewer.Owner, req.ProductID, quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Item added to cart successfully",
		"total_quantity": item.Quantity,
		"cart":           cart,
	})
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req removeFromCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	viewer, ok := h.owner(c)
	if !ok {
		return
	}

	cart, err := h.carts.RemoveFromCart(c.Request.Context(), viewer.Owner, id, req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"cart":    cart,
	})
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	viewer, ok := h.owner(c)
	if !ok {
		return
	}

	item, cart, err := h.carts.UpdateQuantity(c.Request.Context(), viewer.Owner, id, req.ItemID, *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Quantity updated successfully",
		"total_price": pricing.LineTotal(item.Product.Price, item.Quantity),
		"cart":        cart,
	})
}
