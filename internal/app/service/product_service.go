package service

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/model"
	"github.com/malvarez-dev/tienda-backend/internal/app/repository"
	"github.com/malvarez-dev/tienda-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrVariantNotFound  = errors.New("variant not found or does not belong to the product")
	ErrCategoryNotFound = errors.New("category not found")
)

// Pagination is the metadata block returned alongside every product page.
type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

type ProductPage struct {
	Products   []model.Product `json:"products"`
	Pagination Pagination      `json:"pagination"`
}

type ProductListParams struct {
	CategoryID   *uuid.UUID
	CategorySlug string
	MinPrice     *float64
	MaxPrice     *float64
	IsFeatured   *bool
	InStock      *bool
	Search       string
	SortBy       string
	SortOrder    string
	Page         int
	PerPage      int
}

type ProductService interface {
	ListProducts(params ProductListParams) (*ProductPage, error)
	SearchProducts(query string, page, perPage int) (*ProductPage, error)
	FeaturedProducts(limit int) ([]model.Product, error)
	ProductsByCategorySlug(slug string, page, perPage int) (*ProductPage, error)
	GetProductByID(id uuid.UUID) (*model.Product, error)
	GetProductBySlug(slug string) (*model.Product, error)
	GetVariants(productID uuid.UUID) ([]model.ProductVariant, error)
	GetImages(productID uuid.UUID) ([]model.ProductImage, error)
	Stats() (repository.ProductStats, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// normalizePagination clamps page to >= 1 and per_page to [1, MaxPerPage],
// defaulting per_page when unset.
func normalizePagination(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

func buildPagination(page, perPage int, total int64) Pagination {
	pages := 0
	if total > 0 {
		pages = int(math.Ceil(float64(total) / float64(perPage)))
	}
	return Pagination{
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1 && total > 0,
	}
}

// normalizeSort maps unknown sort keys to created_at without erroring.
func normalizeSort(sortBy, sortOrder string) (repository.ProductSort, bool) {
	var sort repository.ProductSort
	switch sortBy {
	case "name":
		sort = repository.ProductSortName
	case "price":
		sort = repository.ProductSortPrice
	case "updated_at":
		sort = repository.ProductSortUpdatedAt
	default:
		sort = repository.ProductSortCreatedAt
	}
	return sort, sortOrder == "asc"
}

func (s *productService) ListProducts(params ProductListParams) (*ProductPage, error) {
	logger.Debug("Listing products", map[string]interface{}{
		"category_id":   params.CategoryID,
		"category_slug": params.CategorySlug,
		"search":        params.Search,
		"sort_by":       params.SortBy,
		"page":          params.Page,
		"per_page":      params.PerPage,
	})

	page, perPage := normalizePagination(params.Page, params.PerPage)
	sortBy, ascending := normalizeSort(params.SortBy, params.SortOrder)

	filter := repository.ProductFilter{
		CategoryID:    params.CategoryID,
		CategorySlug:  params.CategorySlug,
		MinPrice:      params.MinPrice,
		MaxPrice:      params.MaxPrice,
		IsFeatured:    params.IsFeatured,
		InStock:       params.InStock,
		Search:        params.Search,
		SortBy:        sortBy,
		SortAscending: ascending,
		Limit:         perPage,
		Offset:        (page - 1) * perPage,
	}

	products, total, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list products", err, map[string]interface{}{
			"search": params.Search,
		})
		return nil, err
	}

	logger.Info("Products listed successfully", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return &ProductPage{
		Products:   products,
		Pagination: buildPagination(page, perPage, total),
	}, nil
}

// SearchProducts runs a free-text search; products whose name matches rank
// ahead of description or SKU matches, newest first within each group.
func (s *productService) SearchProducts(query string, page, perPage int) (*ProductPage, error) {
	logger.Debug("Searching products", map[string]interface{}{
		"query":    query,
		"page":     page,
		"per_page": perPage,
	})

	page, perPage = normalizePagination(page, perPage)

	filter := repository.ProductFilter{
		Search:     query,
		RankByName: true,
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	}

	products, total, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to search products", err, map[string]interface{}{
			"query": query,
		})
		return nil, err
	}

	return &ProductPage{
		Products:   products,
		Pagination: buildPagination(page, perPage, total),
	}, nil
}

func (s *productService) FeaturedProducts(limit int) ([]model.Product, error) {
	logger.Debug("Fetching featured products", map[string]interface{}{
		"limit": limit,
	})

	if limit < 1 || limit > MaxPerPage {
		limit = DefaultPerPage
	}

	featured := true
	products, _, err := s.productRepo.FindWithFilter(repository.ProductFilter{
		IsFeatured: &featured,
		Limit:      limit,
	})
	if err != nil {
		logger.Error("Failed to fetch featured products", err)
		return nil, err
	}
	return products, nil
}

func (s *productService) ProductsByCategorySlug(slug string, page, perPage int) (*ProductPage, error) {
	logger.Debug("Listing products by category slug", map[string]interface{}{
		"slug": slug,
	})

	category, err := s.categoryRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Category not found", map[string]interface{}{
				"slug": slug,
			})
			return nil, ErrCategoryNotFound
		}
		logger.Error("Failed to fetch category by slug", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}

	page, perPage = normalizePagination(page, perPage)

	products, total, err := s.productRepo.FindWithFilter(repository.ProductFilter{
		CategoryID: &category.ID,
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	})
	if err != nil {
		logger.Error("Failed to list products by category", err, map[string]interface{}{
			"category_id": category.ID,
		})
		return nil, err
	}

	return &ProductPage{
		Products:   products,
		Pagination: buildPagination(page, perPage, total),
	}, nil
}

func (s *productService) GetProductByID(id uuid.UUID) (*model.Product, error) {
	logger.Debug("Fetching product by ID", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *productService) GetProductBySlug(slug string) (*model.Product, error) {
	logger.Debug("Fetching product by slug", map[string]interface{}{
		"slug": slug,
	})

	product, err := s.productRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found by slug", map[string]interface{}{
				"slug": slug,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product by slug", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *productService) GetVariants(productID uuid.UUID) ([]model.ProductVariant, error) {
	if _, err := s.GetProductByID(productID); err != nil {
		return nil, err
	}
	return s.productRepo.FindVariants(productID)
}

func (s *productService) GetImages(productID uuid.UUID) ([]model.ProductImage, error) {
	if _, err := s.GetProductByID(productID); err != nil {
		return nil, err
	}
	return s.productRepo.FindImages(productID)
}

func (s *productService) Stats() (repository.ProductStats, error) {
	logger.Debug("Fetching product stats")

	stats, err := s.productRepo.Stats()
	if err != nil {
		logger.Error("Failed to compute product stats", err)
		return stats, err
	}

	stats.AveragePrice = math.Round(stats.AveragePrice*100) / 100
	return stats, nil
}
