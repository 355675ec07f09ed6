package repository

import (
	"context"
	"time"

	"brewshop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderCounts aggregates the orders of one owner over a time window.
type OrderCounts struct {
	Orders int64
	Items  int64
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetDetailed(ctx context.Context, id uint) (*models.Order, error)
	LockByID(ctx context.Context, id uint) (*models.Order, error)
	ListByOwner(ctx context.Context, owner models.Owner, page Page) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error
	CountBetween(ctx context.Context, owner models.Owner, from, to time.Time) (OrderCounts, error)
	WithTx(tx *gorm.DB) OrderRepository
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetDetailed loads the order with its cart lines, shipping and tracking.
func (r *orderRepository) GetDetailed(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Cart").
		Preload("Cart.Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id ASC") }).
		Preload("Cart.Items.Product").
		Preload("Shipping").
		Preload("Tracking", func(db *gorm.DB) *gorm.DB { return db.Order("order_trackings.id ASC") }).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) LockByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := lockForUpdate(r.db.WithContext(ctx)).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ownedBy(ctx context.Context, owner models.Owner) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Joins("JOIN carts ON carts.id = orders.cart_id").
		Where("carts.owner_kind = ? AND carts.owner_key = ?", owner.Kind, owner.Key)
}

func (r *orderRepository) ListByOwner(ctx context.Context, owner models.Owner, page Page) ([]models.Order, int64, error) {
	var count int64
	if err := r.ownedBy(ctx, owner).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := page.apply(r.ownedBy(ctx, owner)).
		Preload("Shipping").
		Order("orders.created_at DESC").
		Find(&orders).Error
	return orders, count, err
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("order_status", status).Error
}

// CountBetween counts orders created in [from, to) and the units they hold.
func (r *orderRepository) CountBetween(ctx context.Context, owner models.Owner, from, to time.Time) (OrderCounts, error) {
	var counts OrderCounts
	err := r.ownedBy(ctx, owner).
		Where("orders.created_at >= ? AND orders.created_at < ?", from, to).
		Count(&counts.Orders).Error
	if err != nil {
		return counts, err
	}

	err = r.ownedBy(ctx, owner).
		Joins("JOIN cart_items ON cart_items.cart_id = carts.id").
		Where("orders.created_at >= ? AND orders.created_at < ?", from, to).
		Select("COALESCE(SUM(cart_items.quantity), 0)").
		Scan(&counts.Items).Error
	return counts, err
}

type ShippingRepository interface {
	Create(ctx context.Context, shipping *models.Shipping) error
	GetByID(ctx context.Context, id uint) (*models.Shipping, error)
	GetByCartID(ctx context.Context, cartID uint) (*models.Shipping, error)
	ListByOwner(ctx context.Context, owner models.Owner) ([]models.Shipping, error)
	WithTx(tx *gorm.DB) ShippingRepository
}

type shippingRepository struct {
	db *gorm.DB
}

func NewShippingRepository(db *gorm.DB) ShippingRepository {
	return &shippingRepository{db: db}
}

func (r *shippingRepository) WithTx(tx *gorm.DB) ShippingRepository {
	return &shippingRepository{db: tx}
}

func (r *shippingRepository) Create(ctx context.Context, shipping *models.Shipping) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(shipping).Error
}

func (r *shippingRepository) GetByID(ctx context.Context, id uint) (*models.Shipping, error) {
	var shipping models.Shipping
	if err := r.db.WithContext(ctx).First(&shipping, id).Error; err != nil {
		return nil, err
	}
	return &shipping, nil
}

func (r *shippingRepository) GetByCartID(ctx context.Context, cartID uint) (*models.Shipping, error) {
	var shipping models.Shipping
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).First(&shipping).Error; err != nil {
		return nil, err
	}
	return &shipping, nil
}

func (r *shippingRepository) ListByOwner(ctx context.Context, owner models.Owner) ([]models.Shipping, error) {
	var shippings []models.Shipping
	err := r.db.WithContext(ctx).
		Joins("JOIN carts ON carts.id = shippings.cart_id").
		Where("carts.owner_kind = ? AND carts.owner_key = ?", owner.Kind, owner.Key).
		Order("shippings.created_at DESC").
		Find(&shippings).Error
	return shippings, err
}

type TrackingRepository interface {
	Create(ctx context.Context, tracking *models.OrderTracking) error
	ListByOrder(ctx context.Context, orderID uint) ([]models.OrderTracking, error)
	WithTx(tx *gorm.DB) TrackingRepository
}

type trackingRepository struct {
	db *gorm.DB
}

func NewTrackingRepository(db *gorm.DB) TrackingRepository {
	return &trackingRepository{db: db}
}

func (r *trackingRepository) WithTx(tx *gorm.DB) TrackingRepository {
	return &trackingRepository{db: tx}
}

func (r *trackingRepository) Create(ctx context.Context, tracking *models.OrderTracking) error {
	return r.db.WithContext(ctx).Create(tracking).Error
}

func (r *trackingRepository) ListByOrder(ctx context.Context, orderID uint) ([]models.OrderTracking, error) {
	var rows []models.OrderTracking
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&rows).Error
	return rows, err
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	ListByOrder(ctx context.Context, orderID uint) ([]models.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) ListByOrder(ctx context.Context, orderID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("payment_date DESC").Find(&payments).Error
	return payments, err
}
