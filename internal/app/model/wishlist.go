package model

import (
	"github.com/google/uuid"
)

type Wishlist struct {
	Base
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_wishlist_user_product" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product" json:"product_id"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (Wishlist) TableName() string {
	return "wishlists"
}
