package controller

import (
	goerrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/service"
	"github.com/malvarez-dev/tienda-backend/internal/errors"
	"github.com/malvarez-dev/tienda-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func queryFloat(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryBool(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// ListProducts returns the filtered, sorted, paginated catalog
// GET /api/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	params := service.ProductListParams{
		CategorySlug: c.Query("category"),
		MinPrice:     queryFloat(c, "min_price"),
		MaxPrice:     queryFloat(c, "max_price"),
		IsFeatured:   queryBool(c, "featured"),
		InStock:      queryBool(c, "in_stock"),
		Search:       c.Query("search"),
		SortBy:       c.Query("sort_by"),
		SortOrder:    c.Query("sort_order"),
		Page:         queryInt(c, "page", 1),
		PerPage:      queryInt(c, "per_page", service.DefaultPerPage),
	}

	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			errors.BadRequest(c, errors.ValidationInvalidID, "Invalid UUID")
			return
		}
		params.CategoryID = &id
	}

	page, err := ctrl.productService.ListProducts(params)
	if err != nil {
		if goerrors.Is(err, service.ErrCategoryNotFound) {
			errors.NotFound(c, errors.CategoryNotFound, "Category not found")
			return
		}
		log.Error("Failed to list products", err)
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   page.Products,
		"pagination": page.Pagination,
	})
}

// SearchProducts ranks products whose name matches the query first
// GET /api/products/search
func (ctrl *ProductController) SearchProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query := c.Query("q")
	if query == "" {
		errors.BadRequest(c, errors.ValidationRequired, "Search query is required")
		return
	}

	page, err := ctrl.productService.SearchProducts(
		query,
		queryInt(c, "page", 1),
		queryInt(c, "per_page", service.DefaultPerPage),
	)
	if err != nil {
		log.Error("Failed to search products", err, map[string]interface{}{
			"query": query,
		})
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":      query,
		"products":   page.Products,
		"pagination": page.Pagination,
	})
}

// FeaturedProducts returns the featured subset of the catalog
// GET /api/products/featured
func (ctrl *ProductController) FeaturedProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	products, err := ctrl.productService.FeaturedProducts(queryInt(c, "limit", 8))
	if err != nil {
		log.Error("Failed to fetch featured products", err)
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
	})
}

// ProductsByCategory lists active products under a category slug
// GET /api/products/category/:slug
func (ctrl *ProductController) ProductsByCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	slug := c.Param("slug")

	page, err := ctrl.productService.ProductsByCategorySlug(
		slug,
		queryInt(c, "page", 1),
		queryInt(c, "per_page", service.DefaultPerPage),
	)
	if err != nil {
		if goerrors.Is(err, service.ErrCategoryNotFound) {
			errors.NotFound(c, errors.CategoryNotFound, "Category not found")
			return
		}
		log.Error("Failed to list products by category", err, map[string]interface{}{
			"slug": slug,
		})
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   page.Products,
		"pagination": page.Pagination,
	})
}

// GetProduct returns a single active product by ID
// GET /api/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid UUID")
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		if goerrors.Is(err, service.ErrProductNotFound) {
			errors.NotFound(c, errors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// GetProductBySlug returns a single active product by slug
// GET /api/products/slug/:slug
func (ctrl *ProductController) GetProductBySlug(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	slug := c.Param("slug")

	product, err := ctrl.productService.GetProductBySlug(slug)
	if err != nil {
		if goerrors.Is(err, service.ErrProductNotFound) {
			errors.NotFound(c, errors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product by slug", err, map[string]interface{}{
			"slug": slug,
		})
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// GetVariants lists the active variants of a product
// GET /api/products/:id/variants
func (ctrl *ProductController) GetVariants(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid UUID")
		return
	}

	variants, err := ctrl.productService.GetVariants(id)
	if err != nil {
		if goerrors.Is(err, service.ErrProductNotFound) {
			errors.NotFound(c, errors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product variants", err, map[string]interface{}{
			"product_id": id,
		})
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"variants": variants,
	})
}

// GetImages lists a product's images ordered by sort order
// GET /api/products/:id/images
func (ctrl *ProductController) GetImages(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid UUID")
		return
	}

	images, err := ctrl.productService.GetImages(id)
	if err != nil {
		if goerrors.Is(err, service.ErrProductNotFound) {
			errors.NotFound(c, errors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product images", err, map[string]interface{}{
			"product_id": id,
		})
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"images": images,
	})
}

// GetStats returns catalog-wide aggregates
// GET /api/products/stats
func (ctrl *ProductController) GetStats(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stats, err := ctrl.productService.Stats()
	if err != nil {
		log.Error("Failed to compute product stats", err)
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
	})
}
