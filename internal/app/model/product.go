package model

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Product struct {
	Base
	Name              string         `gorm:"size:255;not null" json:"name"`
	Slug              string         `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description       string         `gorm:"type:text" json:"description,omitempty"`
	ShortDescription  string         `gorm:"size:500" json:"short_description,omitempty"`
	SKU               string         `gorm:"size:100;uniqueIndex;not null" json:"sku"`
	Price             float64        `gorm:"not null" json:"price"`
	ComparePrice      *float64       `json:"compare_price,omitempty"`
	CostPrice         *float64       `json:"-"`
	Weight            *float64       `json:"weight,omitempty"`
	Dimensions        datatypes.JSON `json:"dimensions,omitempty"`
	IsActive          bool           `gorm:"default:true;index" json:"is_active"`
	IsFeatured        bool           `gorm:"default:false;index" json:"is_featured"`
	StockQuantity     int            `gorm:"default:0" json:"stock_quantity"`
	LowStockThreshold int            `gorm:"default:5" json:"low_stock_threshold"`
	ManageStock       bool           `gorm:"default:true" json:"manage_stock"`
	AllowBackorders   bool           `gorm:"default:false" json:"allow_backorders"`
	MetaTitle         string         `gorm:"size:255" json:"meta_title,omitempty"`
	MetaDescription   string         `gorm:"type:text" json:"meta_description,omitempty"`

	Categories []Category       `gorm:"many2many:product_categories" json:"categories,omitempty"`
	Variants   []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	Images     []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Reviews    []ProductReview  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// IsInStock reports purchasability under the stock management flags.
func (p *Product) IsInStock() bool {
	if !p.ManageStock {
		return true
	}
	return p.StockQuantity > 0 || p.AllowBackorders
}

type ProductVariant struct {
	Base
	ProductID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	SKU           string         `gorm:"size:100;uniqueIndex;not null" json:"sku"`
	Price         *float64       `json:"price,omitempty"`
	ComparePrice  *float64       `json:"compare_price,omitempty"`
	CostPrice     *float64       `json:"-"`
	StockQuantity int            `gorm:"default:0" json:"stock_quantity"`
	Weight        *float64       `json:"weight,omitempty"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	Attributes    datatypes.JSON `json:"attributes,omitempty"`

	Images []ProductImage `gorm:"foreignKey:VariantID" json:"images,omitempty"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}

// EffectivePrice is the variant price when set, otherwise the product price.
func (v *ProductVariant) EffectivePrice(product *Product) float64 {
	if v.Price != nil {
		return *v.Price
	}
	return product.Price
}

type ProductImage struct {
	Base
	ProductID uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	VariantID *uuid.UUID `gorm:"type:uuid;index" json:"variant_id,omitempty"`
	ImageURL  string     `gorm:"size:500;not null" json:"image_url"`
	AltText   string     `gorm:"size:255" json:"alt_text,omitempty"`
	SortOrder int        `gorm:"default:0" json:"sort_order"`
	IsPrimary bool       `gorm:"default:false" json:"is_primary"`
}

func (ProductImage) TableName() string {
	return "product_images"
}
