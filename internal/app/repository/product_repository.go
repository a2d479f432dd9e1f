package repository

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/model"
	"github.com/malvarez-dev/tienda-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductSort string

const (
	ProductSortName      ProductSort = "name"
	ProductSortPrice     ProductSort = "price"
	ProductSortCreatedAt ProductSort = "created_at"
	ProductSortUpdatedAt ProductSort = "updated_at"
)

type ProductFilter struct {
	CategoryID    *uuid.UUID
	CategorySlug  string
	MinPrice      *float64
	MaxPrice      *float64
	IsFeatured    *bool
	InStock       *bool
	Search        string
	RankByName    bool
	SortBy        ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

type ProductStats struct {
	TotalProducts    int64   `json:"total_products"`
	ActiveProducts   int64   `json:"active_products"`
	FeaturedProducts int64   `json:"featured_products"`
	OutOfStock       int64   `json:"out_of_stock"`
	LowStock         int64   `json:"low_stock"`
	AveragePrice     float64 `json:"average_price"`
}

type ProductRepository interface {
	Create(product *model.Product) error
	BulkCreate(products []model.Product, batchSize int) error
	FindWithFilter(filter ProductFilter) ([]model.Product, int64, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	Stats() (ProductStats, error)
	FindVariants(productID uuid.UUID) ([]model.ProductVariant, error)
	FindVariantByID(id uuid.UUID) (*model.ProductVariant, error)
	FindImages(productID uuid.UUID) ([]model.ProductImage, error)
	Update(product *model.Product) error
	Delete(id uuid.UUID) error
	UpdateStock(id uuid.UUID, delta int) error
	UpdateVariantStock(id uuid.UUID, delta int) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name": product.Name,
		"sku":  product.SKU,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
			"sku":  product.SKU,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (r *productRepository) BulkCreate(products []model.Product, batchSize int) error {
	logger.Info("Bulk creating products", map[string]interface{}{
		"count":      len(products),
		"batch_size": batchSize,
	})

	if err := r.db.CreateInBatches(products, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create products", err, map[string]interface{}{
			"count": len(products),
		})
		return err
	}
	return nil
}

func (r *productRepository) baseQuery() *gorm.DB {
	return r.db.Model(&model.Product{}).
		Preload("Categories").
		Preload("Images")
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category_id":   filter.CategoryID,
		"category_slug": filter.CategorySlug,
		"search":        filter.Search,
		"sort_by":       filter.SortBy,
		"ascending":     filter.SortAscending,
		"limit":         filter.Limit,
		"offset":        filter.Offset,
	})

	query := r.baseQuery().Where("products.is_active = ?", true)

	// The category join can duplicate product rows, so those queries go
	// through DISTINCT below. Un-joined queries must not: Postgres rejects
	// DISTINCT combined with ORDER BY expressions missing from the select
	// list, which the ranked search ordering relies on.
	joinedCategories := false
	if filter.CategoryID != nil {
		query = query.
			Joins("JOIN product_categories ON product_categories.product_id = products.id").
			Where("product_categories.category_id = ?", *filter.CategoryID)
		joinedCategories = true
	} else if filter.CategorySlug != "" {
		query = query.
			Joins("JOIN product_categories ON product_categories.product_id = products.id").
			Joins("JOIN categories ON categories.id = product_categories.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
		joinedCategories = true
	}

	if filter.MinPrice != nil {
		query = query.Where("products.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("products.price <= ?", *filter.MaxPrice)
	}
	if filter.IsFeatured != nil {
		query = query.Where("products.is_featured = ?", *filter.IsFeatured)
	}
	if filter.InStock != nil && *filter.InStock {
		query = query.Where("products.stock_quantity > 0 OR products.allow_backorders = ?", true)
	}

	like := ""
	if filter.Search != "" {
		like = fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where(
			"LOWER(products.name) LIKE LOWER(?) OR LOWER(products.short_description) LIKE LOWER(?) OR LOWER(products.description) LIKE LOWER(?) OR LOWER(products.sku) LIKE LOWER(?)",
			like, like, like, like,
		)
	}

	var total int64
	countQuery := query.Session(&gorm.Session{})
	if err := countQuery.Distinct("products.id").Count(&total).Error; err != nil {
		logger.Error("Failed to count products with filter", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, 0, err
	}

	if filter.RankByName && like != "" {
		// Name matches rank ahead of description/SKU matches.
		query = query.Order(clause.OrderBy{
			Expression: clause.Expr{
				SQL:                "CASE WHEN LOWER(products.name) LIKE LOWER(?) THEN 0 ELSE 1 END, products.created_at DESC",
				Vars:               []interface{}{like},
				WithoutParentheses: true,
			},
		})
	} else {
		direction := "DESC"
		if filter.SortAscending {
			direction = "ASC"
		}
		switch filter.SortBy {
		case ProductSortName:
			query = query.Order("products.name " + direction)
		case ProductSortPrice:
			query = query.Order("products.price " + direction)
		case ProductSortUpdatedAt:
			query = query.Order("products.updated_at " + direction)
		case ProductSortCreatedAt:
			fallthrough
		default:
			query = query.Order("products.created_at " + direction)
		}
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if joinedCategories {
		query = query.Distinct("products.*")
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, 0, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

func (r *productRepository) FindByID(id uuid.UUID) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	err := r.baseQuery().
		Preload("Variants").
		First(&product, "products.id = ?", id).Error
	if err != nil {
		return nil, err
	}

	logger.Debug("Product found by ID in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return &product, nil
}

func (r *productRepository) FindBySlug(slug string) (*model.Product, error) {
	logger.Debug("Finding product by slug in database", map[string]interface{}{
		"slug": slug,
	})

	var product model.Product
	err := r.baseQuery().
		Preload("Variants").
		Where("products.slug = ?", slug).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.Where("sku = ?", sku).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Stats() (ProductStats, error) {
	logger.Debug("Computing product stats")

	stats := ProductStats{}

	if err := r.db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return stats, err
	}
	if err := r.db.Model(&model.Product{}).Where("is_active = ?", true).Count(&stats.ActiveProducts).Error; err != nil {
		return stats, err
	}
	if err := r.db.Model(&model.Product{}).
		Where("is_active = ? AND is_featured = ?", true, true).
		Count(&stats.FeaturedProducts).Error; err != nil {
		return stats, err
	}
	if err := r.db.Model(&model.Product{}).
		Where("is_active = ? AND stock_quantity <= 0", true).
		Count(&stats.OutOfStock).Error; err != nil {
		return stats, err
	}
	if err := r.db.Model(&model.Product{}).
		Where("is_active = ? AND stock_quantity > 0 AND stock_quantity <= low_stock_threshold", true).
		Count(&stats.LowStock).Error; err != nil {
		return stats, err
	}

	var avg *float64
	if err := r.db.Model(&model.Product{}).
		Where("is_active = ?", true).
		Select("AVG(price)").
		Scan(&avg).Error; err != nil {
		return stats, err
	}
	if avg != nil {
		stats.AveragePrice = *avg
	}

	return stats, nil
}

func (r *productRepository) FindVariants(productID uuid.UUID) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	err := r.db.Where("product_id = ? AND is_active = ?", productID, true).
		Order("created_at ASC").
		Find(&variants).Error
	if err != nil {
		logger.Error("Failed to find product variants in database", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return variants, nil
}

func (r *productRepository) FindVariantByID(id uuid.UUID) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	err := r.db.First(&variant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *productRepository) FindImages(productID uuid.UUID) ([]model.ProductImage, error) {
	var images []model.ProductImage
	err := r.db.Where("product_id = ?", productID).
		Order("sort_order ASC, created_at ASC").
		Find(&images).Error
	if err != nil {
		logger.Error("Failed to find product images in database", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return images, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id uuid.UUID) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	if err := r.db.Delete(&model.Product{}, "id = ?", id).Error; err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}

func (r *productRepository) UpdateStock(id uuid.UUID, delta int) error {
	logger.Debug("Updating product stock in database", map[string]interface{}{
		"product_id": id,
		"delta":      delta,
	})

	if err := r.db.Model(&model.Product{}).Where("id = ?", id).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta)).Error; err != nil {
		logger.Error("Failed to update product stock in database", err, map[string]interface{}{
			"product_id": id,
			"delta":      delta,
		})
		return err
	}
	return nil
}

func (r *productRepository) UpdateVariantStock(id uuid.UUID, delta int) error {
	logger.Debug("Updating variant stock in database", map[string]interface{}{
		"variant_id": id,
		"delta":      delta,
	})

	if err := r.db.Model(&model.ProductVariant{}).Where("id = ?", id).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta)).Error; err != nil {
		logger.Error("Failed to update variant stock in database", err, map[string]interface{}{
			"variant_id": id,
			"delta":      delta,
		})
		return err
	}
	return nil
}
