package controller

import (
	goerrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/malvarez-dev/tienda-backend/internal/app/service"
	"github.com/malvarez-dev/tienda-backend/internal/errors"
	"github.com/malvarez-dev/tienda-backend/internal/middleware"
)

type CategoryController struct {
	categoryService service.CategoryService
}

func NewCategoryController(categoryService service.CategoryService) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
	}
}

// ListCategories returns active categories, optionally only roots
// GET /api/categories
func (ctrl *CategoryController) ListCategories(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	list := ctrl.categoryService.ListCategories
	if c.Query("roots") == "true" {
		list = ctrl.categoryService.ListRootCategories
	}

	categories, err := list()
	if err != nil {
		log.Error("Failed to list categories", err)
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
	})
}

// GetCategory returns a category by slug
// GET /api/categories/:slug
func (ctrl *CategoryController) GetCategory(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	slug := c.Param("slug")

	category, err := ctrl.categoryService.GetCategoryBySlug(slug)
	if err != nil {
		if goerrors.Is(err, service.ErrCategoryNotFound) {
			errors.NotFound(c, errors.CategoryNotFound, "Category not found")
			return
		}
		log.Error("Failed to fetch category", err, map[string]interface{}{
			"slug": slug,
		})
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
	})
}

// GetChildren lists the active child categories of a category
// GET /api/categories/:slug/children
func (ctrl *CategoryController) GetChildren(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	slug := c.Param("slug")

	category, err := ctrl.categoryService.GetCategoryBySlug(slug)
	if err != nil {
		if goerrors.Is(err, service.ErrCategoryNotFound) {
			errors.NotFound(c, errors.CategoryNotFound, "Category not found")
			return
		}
		log.Error("Failed to fetch category", err, map[string]interface{}{
			"slug": slug,
		})
		errors.InternalError(c, "")
		return
	}

	children, err := ctrl.categoryService.GetChildren(category.ID)
	if err != nil {
		log.Error("Failed to fetch category children", err, map[string]interface{}{
			"category_id": category.ID,
		})
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category":   category,
		"categories": children,
	})
}
