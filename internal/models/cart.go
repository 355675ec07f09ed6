package models

import (
	"time"
)

type Cart struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	OwnerKind      OwnerKind  `json:"owner_kind" gorm:"size:16;not null;uniqueIndex:idx_carts_open_owner,where:is_order_created = false"`
	OwnerKey       string     `json:"-" gorm:"size:64;not null;uniqueIndex:idx_carts_open_owner;index:idx_carts_owner"`
	UserID         *uint      `json:"user,omitempty" gorm:"index"`
	User           *User      `json:"-" gorm:"foreignKey:UserID"`
	IsOrderCreated bool       `json:"is_order_created" gorm:"not null"`
	FreeCases      int        `json:"free_cases" gorm:"not null"`
	Items          []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func NewCart(owner Owner) *Cart {
	return &Cart{OwnerKind: owner.Kind, OwnerKey: owner.Key, UserID: owner.userIDPtr()}
}

func (c *Cart) Owner() Owner {
	return Owner{Kind: c.OwnerKind, Key: c.OwnerKey}
}

// SessionKey is exposed for anonymous carts only.
func (c *Cart) SessionKey() string {
	if c.OwnerKind == OwnerSession {
		return c.OwnerKey
	}
	return ""
}

type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CartID    uint      `json:"cart" gorm:"not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID uint      `json:"product" gorm:"not null;uniqueIndex:idx_cart_items_cart_product"`
	Product   Product   `json:"product_details" gorm:"foreignKey:ProductID"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
