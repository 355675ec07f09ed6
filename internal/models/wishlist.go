package models

import "time"

type Wishlist struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OwnerKind OwnerKind `json:"owner_kind" gorm:"size:16;not null;uniqueIndex:idx_wishlists_owner"`
	OwnerKey  string    `json:"-" gorm:"size:64;not null;uniqueIndex:idx_wishlists_owner"`
	UserID    *uint     `json:"user,omitempty" gorm:"index"`
	User      *User     `json:"-" gorm:"foreignKey:UserID"`
	Products  []Product `json:"products" gorm:"many2many:wishlist_products"`
	CreatedAt time.Time `json:"created_at"`
}

func NewWishlist(owner Owner) *Wishlist {
	return &Wishlist{OwnerKind: owner.Kind, OwnerKey: owner.Key, UserID: owner.userIDPtr()}
}
