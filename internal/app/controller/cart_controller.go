package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/service"
	"github.com/malvarez-dev/tienda-backend/internal/middleware"
)

// CartSessionCookie is the cookie carrying the anonymous cart session ID.
const CartSessionCookie = "cart_session"

const cartSessionMaxAge = 30 * 24 * 60 * 60

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	VariantID *string `json:"variant_id"`
	Quantity  *int    `json:"quantity"`
}

type UpdateCartRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity *int   `json:"quantity" binding:"required"`
}

type MergeCartRequest struct {
	GuestSessionID string `json:"guest_session_id" binding:"required"`
}

// resolveIdentity picks the caller's cart identity: the authenticated user,
// or the session cookie. When create is true a missing cookie is issued.
func (ctrl *CartController) resolveIdentity(c *gin.Context, create bool) service.CartIdentity {
	if userID, ok := middleware.GetUserID(c); ok {
		return service.CartIdentity{UserID: &userID}
	}

	sessionID, err := c.Cookie(CartSessionCookie)
	if err != nil || sessionID == "" {
		if !create {
			return service.CartIdentity{}
		}
		sessionID = uuid.NewString()
		c.SetCookie(CartSessionCookie, sessionID, cartSessionMaxAge, "/", "", false, true)
	}
	return service.CartIdentity{SessionID: sessionID}
}

// GetCart returns the caller's cart, creating it on first access
// GET /api/cart/get_cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	identity := ctrl.resolveIdentity(c, true)

	detail, err := ctrl.cartService.GetCart(identity)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": identity.UserID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart_id":    detail.CartID,
		"user_id":    detail.UserID,
		"session_id": detail.SessionID,
		"items":      detail.Items,
		"totals":     detail.Totals,
		"updated_at": detail.UpdatedAt,
	})
}

// AddToCart adds a product (and optional variant) to the cart
// POST /api/cart/add
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "product_id is required",
		})
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid UUID",
		})
		return
	}

	var variantID *uuid.UUID
	if req.VariantID != nil && *req.VariantID != "" {
		id, err := uuid.Parse(*req.VariantID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid UUID",
			})
			return
		}
		variantID = &id
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	identity := ctrl.resolveIdentity(c, true)

	result, err := ctrl.cartService.AddItem(identity, productID, variantID, quantity)
	if err != nil {
		ctrl.respondCartError(c, err)
		return
	}

	log.Info("Item added to cart successfully", map[string]interface{}{
		"cart_id":    result.CartID,
		"product_id": productID,
		"quantity":   quantity,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":        "Product successfully added to cart",
		"cart_id":        result.CartID,
		"product_name":   result.ProductName,
		"quantity_added": result.QuantityAdded,
		"totals":         result.Totals,
	})
}

// UpdateCartItem updates the quantity of a cart item; zero removes it
// PUT /api/cart/cart/update
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update cart request", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "item_id and quantity are required",
		})
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid UUID",
		})
		return
	}

	identity := ctrl.resolveIdentity(c, false)

	result, err := ctrl.cartService.UpdateItem(identity, itemID, *req.Quantity)
	if err != nil {
		ctrl.respondCartError(c, err)
		return
	}

	if result.Removed {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Removed '%s' from cart", result.ProductName),
			"totals":  result.Totals,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Quantity updated successfully",
		"item_id":      result.ItemID,
		"new_quantity": result.NewQuantity,
		"product_name": result.ProductName,
		"totals":       result.Totals,
	})
}

// RemoveFromCart deletes a specific item from the cart
// DELETE /api/cart/cart/remove/:item_id
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	itemID, err := uuid.Parse(c.Param("item_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid UUID",
		})
		return
	}

	identity := ctrl.resolveIdentity(c, false)

	result, err := ctrl.cartService.RemoveItem(identity, itemID)
	if err != nil {
		ctrl.respondCartError(c, err)
		return
	}

	log.Info("Cart item removed successfully", map[string]interface{}{
		"cart_item_id": itemID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":         fmt.Sprintf("Product '%s' deleted from cart", result.ProductName),
		"removed_item_id": result.RemovedItemID,
		"totals":          result.Totals,
	})
}

// ClearCart removes every item from the cart
// DELETE /api/cart/cart/clear
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	identity := ctrl.resolveIdentity(c, false)

	result, err := ctrl.cartService.ClearCart(identity)
	if err != nil {
		ctrl.respondCartError(c, err)
		return
	}

	log.Info("Cart cleared successfully", map[string]interface{}{
		"cart_id": result.CartID,
		"removed": result.RemovedCount,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Cart cleared successfully. %d items removed", result.RemovedCount),
		"cart_id": result.CartID,
	})
}

// MergeCart folds a guest session cart into the authenticated user's cart
// POST /api/cart/cart/merge
func (ctrl *CartController) MergeCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req MergeCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "guest_session_id is required",
		})
		return
	}

	result, err := ctrl.cartService.MergeGuestCart(userID, req.GuestSessionID)
	if err != nil {
		if errors.Is(err, service.ErrCartNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Guest cart not found",
			})
			return
		}
		log.Error("Failed to merge guest cart", err, map[string]interface{}{
			"user_id": userID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to merge cart",
		})
		return
	}

	log.Info("Guest cart merged successfully", map[string]interface{}{
		"user_id":      userID,
		"cart_id":      result.CartID,
		"merged_items": result.MergedItems,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Cart merged successfully. %d items processed", result.MergedItems),
		"cart_id": result.CartID,
		"totals":  result.Totals,
	})
}

// GetCartCount returns the line count and total quantity held in the cart
// GET /api/cart/cart/count
func (ctrl *CartController) GetCartCount(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	identity := ctrl.resolveIdentity(c, false)

	counts, err := ctrl.cartService.CountItems(identity)
	if err != nil {
		log.Error("Failed to count cart items", err, map[string]interface{}{
			"user_id": identity.UserID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count cart items",
		})
		return
	}

	c.JSON(http.StatusOK, counts)
}

func (ctrl *CartController) respondCartError(c *gin.Context, err error) {
	log := middleware.GetLoggerFromContext(c)

	var stockErr *service.InsufficientStockError
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	case errors.Is(err, service.ErrVariantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Variant not found or does not belong to the product"})
	case errors.Is(err, service.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	case errors.Is(err, service.ErrCartNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
	case errors.Is(err, service.ErrCartAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Do not have permission to modify this cart"})
	case errors.Is(err, service.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be an integer and greater than 0"})
	case errors.Is(err, service.ErrQuantityCeiling):
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Maximum quantity allowed: %d", service.MaxItemQuantity)})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":           "Not enough stock available",
			"available_stock": stockErr.Available,
		})
	default:
		log.Error("Cart operation failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
