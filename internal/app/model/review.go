package model

import (
	"github.com/google/uuid"
)

type ProductReview struct {
	Base
	ProductID    uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_review_product_user_order" json:"product_id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_review_product_user_order" json:"user_id"`
	OrderID      *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_review_product_user_order" json:"order_id,omitempty"`
	Rating       int        `gorm:"not null" json:"rating"`
	Title        string     `gorm:"size:255" json:"title,omitempty"`
	Comment      string     `gorm:"type:text" json:"comment,omitempty"`
	IsVerified   bool       `gorm:"default:false" json:"is_verified"`
	IsApproved   bool       `gorm:"default:false" json:"is_approved"`
	HelpfulVotes int        `gorm:"default:0" json:"helpful_votes"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (ProductReview) TableName() string {
	return "product_reviews"
}
