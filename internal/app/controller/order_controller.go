package controller

import (
	goerrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/service"
	"github.com/malvarez-dev/tienda-backend/internal/errors"
	"github.com/malvarez-dev/tienda-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type CheckoutRequest struct {
	ShippingAddressID string  `json:"shipping_address_id" binding:"required"`
	BillingAddressID  *string `json:"billing_address_id"`
	ShippingMethod    string  `json:"shipping_method"`
	PaymentMethod     string  `json:"payment_method" binding:"required"`
	CouponCode        string  `json:"coupon_code"`
	CustomerNotes     string  `json:"customer_notes"`
}

// Checkout converts the user's cart into an order
// POST /api/orders/checkout
func (ctrl *OrderController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, errors.ValidationRequired, "shipping_address_id and payment_method are required")
		return
	}

	shippingAddressID, err := uuid.Parse(req.ShippingAddressID)
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid UUID")
		return
	}

	input := service.CheckoutInput{
		UserID:            userID,
		ShippingAddressID: shippingAddressID,
		ShippingMethod:    req.ShippingMethod,
		PaymentMethod:     req.PaymentMethod,
		CouponCode:        req.CouponCode,
		CustomerNotes:     req.CustomerNotes,
	}

	if req.BillingAddressID != nil && *req.BillingAddressID != "" {
		id, err := uuid.Parse(*req.BillingAddressID)
		if err != nil {
			errors.BadRequest(c, errors.ValidationInvalidID, "Invalid UUID")
			return
		}
		input.BillingAddressID = &id
	}

	order, err := ctrl.orderService.Checkout(input)
	if err != nil {
		ctrl.respondCheckoutError(c, err)
		return
	}

	log.Info("Order created successfully", map[string]interface{}{
		"user_id":      userID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"order":   order,
	})
}

// ListOrders returns the user's orders, newest first
// GET /api/orders
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	page, err := ctrl.orderService.GetUserOrders(
		userID,
		queryInt(c, "page", 1),
		queryInt(c, "per_page", service.DefaultPerPage),
	)
	if err != nil {
		log.Error("Failed to list orders", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":     page.Orders,
		"pagination": page.Pagination,
	})
}

// GetOrder returns one of the user's orders with its items and payments
// GET /api/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid UUID")
		return
	}

	order, err := ctrl.orderService.GetOrderByID(userID, orderID)
	if err != nil {
		switch {
		case goerrors.Is(err, service.ErrOrderNotFound):
			errors.NotFound(c, errors.OrderNotFound, "Order not found")
		case goerrors.Is(err, service.ErrOrderAccessDenied):
			errors.Forbidden(c, "")
		default:
			log.Error("Failed to fetch order", err, map[string]interface{}{
				"user_id":  userID,
				"order_id": orderID,
			})
			errors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// CancelOrder cancels a pending order and restores its stock
// POST /api/orders/:id/cancel
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid UUID")
		return
	}

	order, err := ctrl.orderService.CancelOrder(userID, orderID)
	if err != nil {
		switch {
		case goerrors.Is(err, service.ErrOrderNotFound):
			errors.NotFound(c, errors.OrderNotFound, "Order not found")
		case goerrors.Is(err, service.ErrOrderAccessDenied):
			errors.Forbidden(c, "")
		case goerrors.Is(err, service.ErrOrderNotCancellable):
			errors.BadRequest(c, errors.OrderInvalidStatus, "Only pending orders can be cancelled")
		default:
			log.Error("Failed to cancel order", err, map[string]interface{}{
				"user_id":  userID,
				"order_id": orderID,
			})
			errors.InternalError(c, "")
		}
		return
	}

	log.Info("Order cancelled successfully", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
		"order":   order,
	})
}

func (ctrl *OrderController) respondCheckoutError(c *gin.Context, err error) {
	log := middleware.GetLoggerFromContext(c)

	var stockErr *service.InsufficientStockError
	var couponErr *service.CouponInvalidError
	switch {
	case goerrors.Is(err, service.ErrEmptyCart):
		errors.BadRequest(c, errors.OrderEmptyCart, "Cart is empty")
	case goerrors.Is(err, service.ErrCartNotFound):
		errors.BadRequest(c, errors.OrderEmptyCart, "Cart is empty")
	case goerrors.Is(err, service.ErrAddressNotFound):
		errors.NotFound(c, errors.ResourceNotFound, "Address not found")
	case goerrors.Is(err, service.ErrProductNotFound):
		errors.BadRequest(c, errors.ProductUnavailable, "A product in the cart is no longer available")
	case goerrors.Is(err, service.ErrCouponNotFound):
		errors.NotFound(c, errors.CouponNotFound, "Coupon not found")
	case goerrors.As(err, &couponErr):
		errors.BadRequest(c, errors.CouponInvalid, couponErr.Reason)
	case goerrors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           errors.InsufficientStock,
			"message":         "Not enough stock available",
			"available_stock": stockErr.Available,
		})
	default:
		log.Error("Checkout failed", err)
		errors.InternalError(c, "")
	}
}
