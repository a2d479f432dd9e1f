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

type orderControllerFixture struct {
	controller  *OrderController
	cartService service.CartService
	router      *gin.Engine
	db          *gorm.DB
	user        *model.User
	product     *model.Product
	address     *model.Address
}

func setupOrderControllerTest(t *testing.T) *orderControllerFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	addressRepo := repository.NewAddressRepository(testDB)
	couponRepo := repository.NewCouponRepository(testDB)

	orderService := service.NewOrderService(testDB, orderRepo, cartRepo, productRepo, addressRepo, couponRepo)
	cartService := service.NewCartService(testDB, cartRepo, productRepo)
	orderController := NewOrderController(orderService)

	user := &model.User{
		Email:        "buyer@example.com",
		PasswordHash: "hash",
		FirstName:    "Buyer",
		LastName:     "User",
		IsActive:     true,
	}
	testDB.Create(user)

	product := &model.Product{
		Name:          "Test Product",
		Slug:          "test-product",
		SKU:           "SKU-001",
		Price:         1000,
		StockQuantity: 10,
		IsActive:      true,
		ManageStock:   true,
	}
	testDB.Create(product)

	address := &model.Address{
		UserID:        user.ID,
		StreetAddress: "Av. Corrientes 1234",
		City:          "Buenos Aires",
		State:         "CABA",
		PostalCode:    "C1043",
		Country:       "Argentina",
	}
	testDB.Create(address)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return &orderControllerFixture{
		controller:  orderController,
		cartService: cartService,
		router:      router,
		db:          testDB,
		user:        user,
		product:     product,
		address:     address,
	}
}

func (f *orderControllerFixture) fillCart(t *testing.T, quantity int) {
	t.Helper()
	_, err := f.cartService.AddItem(service.CartIdentity{UserID: &f.user.ID}, f.product.ID, nil, quantity)
	require.NoError(t, err)
}

func (f *orderControllerFixture) checkout(t *testing.T, payload gin.H) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/orders/checkout", jsonBody(t, payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestOrderController_Checkout_Success(t *testing.T) {
	f := setupOrderControllerTest(t)
	f.fillCart(t, 2)

	f.router.POST("/orders/checkout", func(c *gin.Context) {
		setUserIDInContext(c, f.user.ID)
		f.controller.Checkout(c)
	})

	w := f.checkout(t, gin.H{
		"shipping_address_id": f.address.ID.String(),
		"payment_method":      "credit_card",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Order created successfully", response["message"])

	order := response["order"].(map[string]interface{})
	assert.NotEmpty(t, order["order_number"])
	assert.Equal(t, float64(2000), order["total_amount"])
}

func TestOrderController_Checkout_EmptyCart(t *testing.T) {
	f := setupOrderControllerTest(t)

	f.router.POST("/orders/checkout", func(c *gin.Context) {
		setUserIDInContext(c, f.user.ID)
		f.controller.Checkout(c)
	})

	w := f.checkout(t, gin.H{
		"shipping_address_id": f.address.ID.String(),
		"payment_method":      "credit_card",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Cart is empty")
}

func TestOrderController_Checkout_MissingFields(t *testing.T) {
	f := setupOrderControllerTest(t)

	f.router.POST("/orders/checkout", func(c *gin.Context) {
		setUserIDInContext(c, f.user.ID)
		f.controller.Checkout(c)
	})

	w := f.checkout(t, gin.H{"payment_method": "credit_card"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "shipping_address_id and payment_method are required")
}

func TestOrderController_Checkout_InvalidAddressUUID(t *testing.T) {
	f := setupOrderControllerTest(t)
	f.fillCart(t, 1)

	f.router.POST("/orders/checkout", func(c *gin.Context) {
		setUserIDInContext(c, f.user.ID)
		f.controller.Checkout(c)
	})

	w := f.checkout(t, gin.H{
		"shipping_address_id": "not-a-uuid",
		"payment_method":      "credit_card",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid UUID")
}

func TestOrderController_Checkout_InsufficientStock(t *testing.T) {
	f := setupOrderControllerTest(t)
	f.fillCart(t, 8)

	require.NoError(t, f.db.Model(f.product).Update("stock_quantity", 5).Error)

	f.router.POST("/orders/checkout", func(c *gin.Context) {
		setUserIDInContext(c, f.user.ID)
		f.controller.Checkout(c)
	})

	w := f.checkout(t, gin.H{
		"shipping_address_id": f.address.ID.String(),
		"payment_method":      "credit_card",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(5), response["available_stock"])
}

func TestOrderController_ListOrders(t *testing.T) {
	f := setupOrderControllerTest(t)
	f.fillCart(t, 1)

	f.router.POST("/orders/checkout", func(c *gin.Context) {
		setUserIDInContext(c, f.user.ID)
		f.controller.Checkout(c)
	})
	f.router.GET("/orders", func(c *gin.Context) {
		setUserIDInContext(c, f.user.ID)
		f.controller.ListOrders(c)
	})

	w := f.checkout(t, gin.H{
		"shipping_address_id": f.address.ID.String(),
		"payment_method":      "credit_card",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	orders := response["orders"].([]interface{})
	assert.Len(t, orders, 1)
}

func TestOrderController_GetOrder_Forbidden(t *testing.T) {
	f := setupOrderControllerTest(t)
	f.fillCart(t, 1)

	f.router.POST("/orders/checkout", func(c *gin.Context) {
		setUserIDInContext(c, f.user.ID)
		f.controller.Checkout(c)
	})

	w := f.checkout(t, gin.H{
		"shipping_address_id": f.address.ID.String(),
		"payment_method":      "credit_card",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	orderID := response["order"].(map[string]interface{})["id"].(string)

	intruder := &model.User{
		Email:        "intruder@example.com",
		PasswordHash: "hash",
		FirstName:    "In",
		LastName:     "Truder",
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(intruder).Error)

	f.router.GET("/orders/:id", func(c *gin.Context) {
		setUserIDInContext(c, intruder.ID)
		f.controller.GetOrder(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/orders/"+orderID, nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrderController_GetOrder_NotFound(t *testing.T) {
	f := setupOrderControllerTest(t)

	f.router.GET("/orders/:id", func(c *gin.Context) {
		setUserIDInContext(c, f.user.ID)
		f.controller.GetOrder(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Order not found")
}

func TestOrderController_CancelOrder_OnlyPending(t *testing.T) {
	f := setupOrderControllerTest(t)
	f.fillCart(t, 1)

	f.router.POST("/orders/checkout", func(c *gin.Context) {
		setUserIDInContext(c, f.user.ID)
		f.controller.Checkout(c)
	})
	f.router.POST("/orders/:id/cancel", func(c *gin.Context) {
		setUserIDInContext(c, f.user.ID)
		f.controller.CancelOrder(c)
	})

	w := f.checkout(t, gin.H{
		"shipping_address_id": f.address.ID.String(),
		"payment_method":      "credit_card",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	orderID := response["order"].(map[string]interface{})["id"].(string)

	require.NoError(t, f.db.Model(&model.Order{}).Where("id = ?", orderID).
		Update("status", model.OrderStatusShipped).Error)

	req := httptest.NewRequest(http.MethodPost, "/orders/"+orderID+"/cancel", nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Only pending orders can be cancelled")
}
