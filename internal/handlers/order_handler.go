package handlers

import (
	"net/http"
	"strconv"
	"time"

	"brewshop/internal/repository"
	"brewshop/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	shipping services.ShippingService
	orders   services.OrderService
	tracking services.TrackingService
	payments services.PaymentService
	sessions *Sessions
}

func NewOrderHandler(
	shipping services.ShippingService,
	orders services.OrderService,
	tracking services.TrackingService,
	payments services.PaymentService,
	sessions *Sessions,
) *OrderHandler {
	return &OrderHandler{
		shipping: shipping,
		orders:   orders,
		tracking: tracking,
		payments: payments,
		sessions: sessions,
	}
}

type shippingRequest struct {
	Cart       uint   `json:"cart" binding:"required"`
	FirstName  string `json:"first_name" binding:"required,max=100"`
	LastName   string `json:"last_name" binding:"required,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone" binding:"required,max=20"`
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required,max=100"`
	State      string `json:"state" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"max=100"`
}

type checkoutRequest struct {
	Cart           uint             `json:"cart" binding:"required"`
	Shipping       uint             `json:"shipping" binding:"required"`
	DeliveryCharge *decimal.Decimal `json:"delivery_charge"`
}

type orderStatusRequest struct {
	OrderStatus string `json:"order_status" binding:"required,oneof=Pending Shipped Delivered"`
}

type trackingRequest struct {
	Order  uint   `json:"order" binding:"required"`
	Status string `json:"status" binding:"required,max=255"`
}

type paymentRequest struct {
	PaymentStatus string          `json:"payment_status"`
	PaymentMethod string          `json:"payment_method" binding:"required,max=50"`
	PaymentDate   *time.Time      `json:"payment_date"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id" binding:"max=100"`
}

// viewer returns the caller for reads and writes on existing records.
// Anonymous callers without a session get a viewer that owns nothing.
func (h *OrderHandler) viewer(c *gin.Context) (services.Viewer, bool) {
	viewer, _, err := h.sessions.current(c)
	if err != nil {
		respondError(c, err)
		return viewer, false
	}
	return viewer, true
}

func (h *OrderHandler) CreateShipping(c *gin.Context) {
	var req shippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}

	shipping, err := h.shipping.CreateShipping(c.Request.Context(), viewer.Owner, services.ShippingInput{
		CartID:     req.Cart,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shipping)
}

func (h *OrderHandler) ListShipping(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	shipping, err := h.shipping.ListShipping(c.Request.Context(), viewer.Owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipping)
}

func (h *OrderHandler) GetShipping(c *gin.Context) {
	cartID, ok := parseID(c, "cart_id")
	if !ok {
		return
	}
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	shipping, err := h.shipping.GetByCart(c.Request.Context(), viewer.Owner, cartID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipping)
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}

	order, err := h.orders.Checkout(c.Request.Context(), viewer.Owner, services.CheckoutInput{
		CartID:         req.Cart,
		ShippingID:     req.Shipping,
		DeliveryCharge: req.DeliveryCharge,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), viewer, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus moves an order through the tracking log so every status
// change leaves a tracking entry.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.tracking.Append(ctx, viewer, id, req.OrderStatus); err != nil {
		respondError(c, err)
		return
	}
	order, err := h.orders.GetOrder(ctx, viewer, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	page := repository.Page{
		Limit:  queryInt(c, "limit", services.DefaultPageSize),
		Offset: queryInt(c, "offset", 0),
	}
	orders, total, err := h.orders.ListOrders(c.Request.Context(), viewer.Owner, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": total, "results": orders})
}

func (h *OrderHandler) Stats(c *gin.Context) {
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	stats, err := h.orders.Stats(c.Request.Context(), viewer.Owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *OrderHandler) CreateTracking(c *gin.Context) {
	var req trackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	tracking, err := h.tracking.Append(c.Request.Context(), viewer, req.Order, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tracking)
}

func (h *OrderHandler) ListTracking(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Query("order"), 10, 64)
	if err != nil || orderID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data provided.", "details": gin.H{"order": "This query parameter is required."}})
		return
	}
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	tracking, err := h.tracking.List(c.Request.Context(), viewer, uint(orderID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tracking)
}

func (h *OrderHandler) CreatePayment(c *gin.Context) {
	id, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}

	payment, err := h.payments.Record(c.Request.Context(), viewer, id, services.PaymentInput{
		Status:        req.PaymentStatus,
		Method:        req.PaymentMethod,
		Date:          req.PaymentDate,
		Amount:        req.Amount,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *OrderHandler) ListPayments(c *gin.Context) {
	id, ok := parseID(c, "order_id")
	if !ok {
		return
	}
	viewer, ok := h.viewer(c)
	if !ok {
		return
	}
	payments, err := h.payments.List(c.Request.Context(), viewer, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}
