package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/model"
	"github.com/malvarez-dev/tienda-backend/internal/app/repository"
	"github.com/malvarez-dev/tienda-backend/internal/app/service"
	"github.com/malvarez-dev/tienda-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductControllerTest(t *testing.T) (*ProductController, *gin.Engine, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	productService := service.NewProductService(productRepo, categoryRepo)
	productController := NewProductController(productService)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return productController, router, testDB
}

func createControllerTestProduct(t *testing.T, testDB *gorm.DB, name, slug, sku string, price float64, active bool) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:          name,
		Slug:          slug,
		SKU:           sku,
		Price:         price,
		StockQuantity: 10,
		IsActive:      active,
		ManageStock:   true,
	}
	require.NoError(t, testDB.Create(product).Error)
	if !active {
		// IsActive carries `gorm:"default:true"`, so Create drops the
		// zero-value false; flip it with an explicit update instead.
		require.NoError(t, testDB.Model(product).Update("is_active", false).Error)
		product.IsActive = false
	}
	return product
}

func TestProductController_ListProducts(t *testing.T) {
	controller, router, testDB := setupProductControllerTest(t)
	router.GET("/products", controller.ListProducts)

	createControllerTestProduct(t, testDB, "Visible", "visible", "SKU-V", 100, true)
	createControllerTestProduct(t, testDB, "Hidden", "hidden", "SKU-H", 100, false)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	products := response["products"].([]interface{})
	assert.Len(t, products, 1)

	pagination := response["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["total"])
	assert.Equal(t, float64(1), pagination["page"])
}

func TestProductController_ListProducts_InvalidCategoryID(t *testing.T) {
	controller, router, _ := setupProductControllerTest(t)
	router.GET("/products", controller.ListProducts)

	req := httptest.NewRequest(http.MethodGet, "/products?category_id=not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid UUID")
}

func TestProductController_ListProducts_PerPageClamp(t *testing.T) {
	controller, router, testDB := setupProductControllerTest(t)
	router.GET("/products", controller.ListProducts)

	createControllerTestProduct(t, testDB, "Visible", "visible", "SKU-V", 100, true)

	req := httptest.NewRequest(http.MethodGet, "/products?page=-5&per_page=5000", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	pagination := response["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["page"])
	assert.Equal(t, float64(service.MaxPerPage), pagination["per_page"])
}

func TestProductController_SearchProducts_MissingQuery(t *testing.T) {
	controller, router, _ := setupProductControllerTest(t)
	router.GET("/products/search", controller.SearchProducts)

	req := httptest.NewRequest(http.MethodGet, "/products/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Search query is required")
}

func TestProductController_SearchProducts(t *testing.T) {
	controller, router, testDB := setupProductControllerTest(t)
	router.GET("/products/search", controller.SearchProducts)

	createControllerTestProduct(t, testDB, "Coffee Beans", "coffee-beans", "SKU-CB", 120, true)
	createControllerTestProduct(t, testDB, "Chair", "chair", "SKU-CH", 300, true)

	req := httptest.NewRequest(http.MethodGet, "/products/search?q=coffee", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "coffee", response["query"])

	products := response["products"].([]interface{})
	require.Len(t, products, 1)
}

func TestProductController_GetProduct(t *testing.T) {
	controller, router, testDB := setupProductControllerTest(t)
	router.GET("/products/:id", controller.GetProduct)

	product := createControllerTestProduct(t, testDB, "Alpha", "alpha", "SKU-A", 100, true)

	req := httptest.NewRequest(http.MethodGet, "/products/"+product.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alpha")
}

func TestProductController_GetProduct_InvalidUUID(t *testing.T) {
	controller, router, _ := setupProductControllerTest(t)
	router.GET("/products/:id", controller.GetProduct)

	req := httptest.NewRequest(http.MethodGet, "/products/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid UUID")
}

func TestProductController_GetProduct_NotFound(t *testing.T) {
	controller, router, _ := setupProductControllerTest(t)
	router.GET("/products/:id", controller.GetProduct)

	req := httptest.NewRequest(http.MethodGet, "/products/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Product not found")
}

func TestProductController_FeaturedProducts(t *testing.T) {
	controller, router, testDB := setupProductControllerTest(t)
	router.GET("/products/featured", controller.FeaturedProducts)

	star := createControllerTestProduct(t, testDB, "Star", "star", "SKU-S", 100, true)
	require.NoError(t, testDB.Model(star).Update("is_featured", true).Error)
	createControllerTestProduct(t, testDB, "Normal", "normal", "SKU-N", 100, true)

	req := httptest.NewRequest(http.MethodGet, "/products/featured", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	products := response["products"].([]interface{})
	require.Len(t, products, 1)
}

func TestProductController_ProductsByCategory_NotFound(t *testing.T) {
	controller, router, _ := setupProductControllerTest(t)
	router.GET("/products/category/:slug", controller.ProductsByCategory)

	req := httptest.NewRequest(http.MethodGet, "/products/category/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Category not found")
}

func TestProductController_GetStats(t *testing.T) {
	controller, router, testDB := setupProductControllerTest(t)
	router.GET("/products/stats", controller.GetStats)

	createControllerTestProduct(t, testDB, "Alpha", "alpha", "SKU-A", 100, true)

	req := httptest.NewRequest(http.MethodGet, "/products/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	stats := response["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["total_products"])
}
