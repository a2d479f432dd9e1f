package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OrderStatus string
type PaymentStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Order is an immutable snapshot: addresses are stored as JSON blobs and the
// line items freeze product data at creation time.
type Order struct {
	Base
	OrderNumber   string        `gorm:"size:50;uniqueIndex;not null" json:"order_number"`
	UserID        *uuid.UUID    `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Status        OrderStatus   `gorm:"size:20;default:'pending';index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"size:20;default:'pending'" json:"payment_status"`

	Subtotal       float64 `gorm:"not null" json:"subtotal"`
	TaxAmount      float64 `gorm:"default:0" json:"tax_amount"`
	ShippingAmount float64 `gorm:"default:0" json:"shipping_amount"`
	DiscountAmount float64 `gorm:"default:0" json:"discount_amount"`
	TotalAmount    float64 `gorm:"not null" json:"total_amount"`

	ShippingAddress datatypes.JSON `gorm:"not null" json:"shipping_address"`
	BillingAddress  datatypes.JSON `gorm:"not null" json:"billing_address"`
	ShippingMethod  string         `gorm:"size:100" json:"shipping_method,omitempty"`
	TrackingNumber  string         `gorm:"size:100" json:"tracking_number,omitempty"`

	CouponID   *uuid.UUID `gorm:"type:uuid" json:"coupon_id,omitempty"`
	CouponCode string     `gorm:"size:50" json:"coupon_code,omitempty"`

	CustomerNotes string `gorm:"type:text" json:"customer_notes,omitempty"`
	AdminNotes    string `gorm:"type:text" json:"-"`

	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payments []Payment   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	Coupon   *Coupon     `gorm:"foreignKey:CouponID" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem freezes name, SKU and unit price at order-creation time,
// decoupled from subsequent product edits.
type OrderItem struct {
	Base
	OrderID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID         *uuid.UUID     `gorm:"type:uuid" json:"product_id,omitempty"`
	VariantID         *uuid.UUID     `gorm:"type:uuid" json:"variant_id,omitempty"`
	ProductName       string         `gorm:"size:255;not null" json:"product_name"`
	ProductSKU        string         `gorm:"size:100;not null" json:"product_sku"`
	VariantAttributes datatypes.JSON `json:"variant_attributes,omitempty"`
	Quantity          int            `gorm:"not null" json:"quantity"`
	UnitPrice         float64        `gorm:"not null" json:"unit_price"`
	TotalPrice        float64        `gorm:"not null" json:"total_price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Payment is an inert persisted record; no gateway protocol is spoken here.
type Payment struct {
	Base
	OrderID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"order_id"`
	PaymentMethod   string         `gorm:"size:50;not null" json:"payment_method"`
	PaymentProvider string         `gorm:"size:50" json:"payment_provider,omitempty"`
	TransactionID   string         `gorm:"size:255" json:"transaction_id,omitempty"`
	Amount          float64        `gorm:"not null" json:"amount"`
	Currency        string         `gorm:"size:3;default:'ARS'" json:"currency"`
	Status          PaymentStatus  `gorm:"size:20;default:'pending'" json:"status"`
	PaymentData     datatypes.JSON `json:"-"`
	ProcessedAt     *time.Time     `json:"processed_at,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}
