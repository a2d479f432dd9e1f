package model

import (
	"time"
)

type DiscountType string

const (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed_amount"
)

type Coupon struct {
	Base
	Code            string       `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Description     string       `gorm:"size:255" json:"description,omitempty"`
	DiscountType    DiscountType `gorm:"size:20;not null" json:"discount_type"`
	DiscountValue   float64      `gorm:"not null" json:"discount_value"`
	MinimumAmount   *float64     `json:"minimum_amount,omitempty"`
	MaximumDiscount *float64     `json:"maximum_discount,omitempty"`
	UsageLimit      *int         `json:"usage_limit,omitempty"`
	UsedCount       int          `gorm:"default:0" json:"used_count"`
	IsActive        bool         `gorm:"default:true" json:"is_active"`
	ValidFrom       *time.Time   `json:"valid_from,omitempty"`
	ValidUntil      *time.Time   `json:"valid_until,omitempty"`
}

func (Coupon) TableName() string {
	return "coupons"
}

// Validate checks whether the coupon can be applied to an order of the given
// amount. Returns ok plus a user-facing reason when not.
func (c *Coupon) Validate(orderAmount float64, now time.Time) (bool, string) {
	if !c.IsActive {
		return false, "Coupon is not valid"
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false, "Coupon is not valid yet"
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return false, "Coupon has expired"
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return false, "Coupon usage limit reached"
	}
	if c.MinimumAmount != nil && orderAmount < *c.MinimumAmount {
		return false, "Order amount below the coupon minimum"
	}
	return true, ""
}

// CalculateDiscount computes the discount for an order amount. Percentage
// discounts are capped by MaximumDiscount; fixed discounts never exceed the
// order amount.
func (c *Coupon) CalculateDiscount(orderAmount float64) float64 {
	if c.DiscountType == DiscountPercentage {
		discount := orderAmount * (c.DiscountValue / 100)
		if c.MaximumDiscount != nil && discount > *c.MaximumDiscount {
			discount = *c.MaximumDiscount
		}
		return discount
	}
	if c.DiscountValue > orderAmount {
		return orderAmount
	}
	return c.DiscountValue
}
