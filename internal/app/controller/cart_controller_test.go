package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/model"
	"github.com/malvarez-dev/tienda-backend/internal/app/repository"
	"github.com/malvarez-dev/tienda-backend/internal/app/service"
	"github.com/malvarez-dev/tienda-backend/internal/db"
	"github.com/malvarez-dev/tienda-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartControllerTest(t *testing.T) (*CartController, *gin.Engine, *gorm.DB, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartService := service.NewCartService(testDB, cartRepo, productRepo)
	cartController := NewCartController(cartService)

	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
	}
	testDB.Create(user)

	product := &model.Product{
		Name:          "Test Product",
		Slug:          "test-product",
		SKU:           "SKU-001",
		Price:         1500,
		StockQuantity: 10,
		IsActive:      true,
		ManageStock:   true,
	}
	testDB.Create(product)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return cartController, router, testDB, user, product
}

// Helper to inject the authenticated user the way the auth middleware does
func setUserIDInContext(c *gin.Context, userID uuid.UUID) {
	c.Set(middleware.UserIDKey, userID)
}

func jsonBody(t *testing.T, payload interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

func TestCartController_GetCart_GuestGetsSessionCookie(t *testing.T) {
	controller, router, _, _, _ := setupCartControllerTest(t)

	router.GET("/cart", controller.GetCart)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response["cart_id"])
	assert.NotEmpty(t, response["session_id"])
	assert.Nil(t, response["user_id"])

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, CartSessionCookie, cookies[0].Name)
	assert.Equal(t, response["session_id"], cookies[0].Value)
}

func TestCartController_AddToCart_Success(t *testing.T) {
	controller, router, _, user, product := setupCartControllerTest(t)

	router.POST("/cart/add", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.AddToCart(c)
	})

	body := jsonBody(t, gin.H{"product_id": product.ID.String(), "quantity": 2})
	req := httptest.NewRequest(http.MethodPost, "/cart/add", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Product successfully added to cart", response["message"])
	assert.Equal(t, "Test Product", response["product_name"])
	assert.Equal(t, float64(2), response["quantity_added"])

	totals := response["totals"].(map[string]interface{})
	assert.Equal(t, float64(3000), totals["subtotal"]) // 1500 * 2
}

func TestCartController_AddToCart_InvalidUUID(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)

	router.POST("/cart/add", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.AddToCart(c)
	})

	body := jsonBody(t, gin.H{"product_id": "not-a-uuid"})
	req := httptest.NewRequest(http.MethodPost, "/cart/add", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid UUID")
}

func TestCartController_AddToCart_MissingProductID(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)

	router.POST("/cart/add", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.AddToCart(c)
	})

	body := jsonBody(t, gin.H{"quantity": 1})
	req := httptest.NewRequest(http.MethodPost, "/cart/add", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "product_id is required")
}

func TestCartController_AddToCart_QuantityCeiling(t *testing.T) {
	controller, router, _, user, product := setupCartControllerTest(t)

	router.POST("/cart/add", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.AddToCart(c)
	})

	body := jsonBody(t, gin.H{"product_id": product.ID.String(), "quantity": 11})
	req := httptest.NewRequest(http.MethodPost, "/cart/add", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Maximum quantity allowed: 10")
}

func TestCartController_AddToCart_InsufficientStock(t *testing.T) {
	controller, router, testDB, user, product := setupCartControllerTest(t)

	require.NoError(t, testDB.Model(product).Update("stock_quantity", 3).Error)

	router.POST("/cart/add", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.AddToCart(c)
	})

	body := jsonBody(t, gin.H{"product_id": product.ID.String(), "quantity": 5})
	req := httptest.NewRequest(http.MethodPost, "/cart/add", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Not enough stock available", response["error"])
	assert.Equal(t, float64(3), response["available_stock"])
}

func TestCartController_UpdateCartItem_ZeroRemoves(t *testing.T) {
	controller, router, _, user, product := setupCartControllerTest(t)

	_, err := controller.cartService.AddItem(service.CartIdentity{UserID: &user.ID}, product.ID, nil, 2)
	require.NoError(t, err)

	detail, err := controller.cartService.GetCart(service.CartIdentity{UserID: &user.ID})
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)

	router.PUT("/cart/update", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.UpdateCartItem(c)
	})

	body := jsonBody(t, gin.H{"item_id": detail.Items[0].ID.String(), "quantity": 0})
	req := httptest.NewRequest(http.MethodPut, "/cart/update", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Removed 'Test Product' from cart")
}

func TestCartController_RemoveFromCart_NotFound(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)

	router.DELETE("/cart/remove/:item_id", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.RemoveFromCart(c)
	})

	req := httptest.NewRequest(http.MethodDelete, "/cart/remove/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Item not found")
}

func TestCartController_MergeCart_Success(t *testing.T) {
	controller, router, _, user, product := setupCartControllerTest(t)

	sessionID := uuid.NewString()
	_, err := controller.cartService.AddItem(service.CartIdentity{SessionID: sessionID}, product.ID, nil, 3)
	require.NoError(t, err)

	router.POST("/cart/merge", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.MergeCart(c)
	})

	body := jsonBody(t, gin.H{"guest_session_id": sessionID})
	req := httptest.NewRequest(http.MethodPost, "/cart/merge", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cart merged successfully. 1 items processed")

	// Merging the same session again fails: the guest cart is gone
	body = jsonBody(t, gin.H{"guest_session_id": sessionID})
	req = httptest.NewRequest(http.MethodPost, "/cart/merge", body)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Guest cart not found")
}

func TestCartController_MergeCart_GuestCartNotFound(t *testing.T) {
	controller, router, _, user, _ := setupCartControllerTest(t)

	router.POST("/cart/merge", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.MergeCart(c)
	})

	body := jsonBody(t, gin.H{"guest_session_id": uuid.NewString()})
	req := httptest.NewRequest(http.MethodPost, "/cart/merge", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Guest cart not found")
}

func TestCartController_GetCartCount(t *testing.T) {
	controller, router, _, user, product := setupCartControllerTest(t)

	_, err := controller.cartService.AddItem(service.CartIdentity{UserID: &user.ID}, product.ID, nil, 4)
	require.NoError(t, err)

	router.GET("/cart/count", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.GetCartCount(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/cart/count", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["items_count"])
	assert.Equal(t, float64(4), response["total_quantity"])
	assert.NotEmpty(t, response["cart_id"])
}

func TestCartController_ClearCart(t *testing.T) {
	controller, router, _, user, product := setupCartControllerTest(t)

	_, err := controller.cartService.AddItem(service.CartIdentity{UserID: &user.ID}, product.ID, nil, 2)
	require.NoError(t, err)

	router.DELETE("/cart/clear", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.ClearCart(c)
	})

	req := httptest.NewRequest(http.MethodDelete, "/cart/clear", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), fmt.Sprintf("Cart cleared successfully. %d items removed", 1))
}
