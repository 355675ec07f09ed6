package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductCategory struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"size:255;not null;index"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	CategoryID  uint            `json:"category_id" gorm:"not null;index"`
	Category    ProductCategory `json:"category" gorm:"foreignKey:CategoryID"`
	Stock       int             `json:"stock" gorm:"not null"`
	StockStatus bool            `json:"stock_status" gorm:"not null"`
	Featured    bool            `json:"featured" gorm:"not null;index"`
	Image       string          `json:"image"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Store is a physical retailer carrying the products.
type Store struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"size:255;not null"`
	Address string `json:"address" gorm:"type:text"`
	Link    string `json:"link"`
}
