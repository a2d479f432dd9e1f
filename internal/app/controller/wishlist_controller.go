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

type WishlistController struct {
	wishlistService service.WishlistService
}

func NewWishlistController(wishlistService service.WishlistService) *WishlistController {
	return &WishlistController{
		wishlistService: wishlistService,
	}
}

type AddToWishlistRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// GetWishlist returns the user's wishlist with product details
// GET /api/wishlist
func (ctrl *WishlistController) GetWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	entries, err := ctrl.wishlistService.ListWishlist(userID)
	if err != nil {
		log.Error("Failed to fetch wishlist", err, map[string]interface{}{
			"user_id": userID,
		})
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wishlist": entries,
	})
}

// AddToWishlist saves a product to the user's wishlist
// POST /api/wishlist
func (ctrl *WishlistController) AddToWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	var req AddToWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, errors.ValidationRequired, "product_id is required")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid UUID")
		return
	}

	entry, err := ctrl.wishlistService.AddToWishlist(userID, productID)
	if err != nil {
		switch {
		case goerrors.Is(err, service.ErrProductNotFound):
			errors.NotFound(c, errors.ProductNotFound, "Product not found")
		case goerrors.Is(err, service.ErrAlreadyInWishlist):
			errors.Conflict(c, errors.ResourceAlreadyExists, "Product is already in the wishlist")
		default:
			log.Error("Failed to add product to wishlist", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			errors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Product added to wishlist",
		"wishlist": entry,
	})
}

// RemoveFromWishlist deletes a product from the user's wishlist
// DELETE /api/wishlist/:product_id
func (ctrl *WishlistController) RemoveFromWishlist(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid UUID")
		return
	}

	if err := ctrl.wishlistService.RemoveFromWishlist(userID, productID); err != nil {
		if goerrors.Is(err, service.ErrWishlistEntryNotFound) {
			errors.NotFound(c, errors.ResourceNotFound, "Product is not in the wishlist")
			return
		}
		log.Error("Failed to remove product from wishlist", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product removed from wishlist",
	})
}
