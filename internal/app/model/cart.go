package model

import (
	"github.com/google/uuid"
)

// Cart belongs to exactly one identity: a user (UserID) or an anonymous
// session (SessionID). The unique indexes make concurrent get-or-create safe.
type Cart struct {
	Base
	UserID    *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id,omitempty"`
	SessionID *string    `gorm:"size:255;uniqueIndex" json:"session_id,omitempty"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem is one (product, variant) line. UnitPrice is captured at add time
// and does not track later product edits.
type CartItem struct {
	Base
	CartID    uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_cart_product_variant" json:"cart_id"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_cart_product_variant" json:"product_id"`
	VariantID *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_product_variant" json:"variant_id,omitempty"`
	Quantity  int        `gorm:"not null" json:"quantity"`
	UnitPrice float64    `gorm:"not null" json:"unit_price"`

	Product Product         `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Variant *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// TotalPrice is the line total at the captured unit price.
func (i *CartItem) TotalPrice() float64 {
	return i.UnitPrice * float64(i.Quantity)
}
