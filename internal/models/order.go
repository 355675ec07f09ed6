package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
)

// ParseOrderStatus reports whether s is one of the order status values.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderPending, OrderShipped, OrderDelivered:
		return OrderStatus(s), true
	}
	return "", false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
)

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return PaymentStatus(s), true
	}
	return "", false
}

const DefaultCountry = "United States"

type Shipping struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CartID     uint      `json:"cart" gorm:"not null;uniqueIndex"`
	Cart       *Cart     `json:"-" gorm:"foreignKey:CartID"`
	FirstName  string    `json:"first_name" gorm:"size:100;not null"`
	LastName   string    `json:"last_name" gorm:"size:100;not null"`
	Email      string    `json:"email" gorm:"size:255;not null"`
	Phone      string    `json:"phone" gorm:"size:20;not null"`
	Address    string    `json:"address" gorm:"type:text;not null"`
	City       string    `json:"city" gorm:"size:100;not null"`
	State      string    `json:"state" gorm:"size:100;not null"`
	PostalCode string    `json:"postal_code" gorm:"size:20;not null"`
	Country    string    `json:"country" gorm:"size:100;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Shipping) FullName() string {
	return s.FirstName + " " + s.LastName
}

type Order struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	CartID         uint            `json:"cart" gorm:"not null;uniqueIndex"`
	Cart           *Cart           `json:"cart_details,omitempty" gorm:"foreignKey:CartID"`
	ShippingID     uint            `json:"shipping" gorm:"not null;uniqueIndex"`
	Shipping       *Shipping       `json:"shipping_details,omitempty" gorm:"foreignKey:ShippingID"`
	TotalPrice     decimal.Decimal `json:"total_price" gorm:"type:numeric(10,2);not null"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge" gorm:"type:numeric(10,2);not null"`
	OrderStatus    OrderStatus     `json:"order_status" gorm:"size:20;not null"`
	Tracking       []OrderTracking `json:"tracking,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt      time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// OrderTracking rows are insert-only.
type OrderTracking struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OrderID   uint      `json:"order" gorm:"not null;index"`
	Status    string    `json:"status" gorm:"size:255;not null"`
	UpdatedBy string    `json:"updated_by" gorm:"size:255"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoCreateTime"`
}

type Payment struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	OrderID       uint            `json:"order" gorm:"not null;index"`
	PaymentStatus PaymentStatus   `json:"payment_status" gorm:"size:20;not null"`
	PaymentMethod string          `json:"payment_method" gorm:"size:50;not null"`
	PaymentDate   time.Time       `json:"payment_date" gorm:"not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(10,2);not null"`
	TransactionID string          `json:"transaction_id" gorm:"size:100;not null;uniqueIndex"`
	CreatedAt     time.Time       `json:"created_at"`
}
