package models

import "time"

const MaxReviewPhotos = 2

type Review struct {
	ID         uint          `json:"id" gorm:"primaryKey"`
	ProductID  uint          `json:"product" gorm:"not null;index"`
	Product    *Product      `json:"-" gorm:"foreignKey:ProductID"`
	Rating     int           `json:"rating" gorm:"not null"`
	ReviewText string        `json:"review_text" gorm:"type:text"`
	Name       string        `json:"name" gorm:"size:100;not null"`
	Email      string        `json:"email" gorm:"size:255;not null"`
	Photos     []ReviewPhoto `json:"photos" gorm:"many2many:review_photo_links"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type ReviewPhoto struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Image      string    `json:"image" gorm:"not null"`
	UploadedAt time.Time `json:"uploaded_at" gorm:"autoCreateTime"`
}
