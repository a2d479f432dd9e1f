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

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

type CreateReviewRequest struct {
	Rating  int     `json:"rating" binding:"required"`
	Title   string  `json:"title"`
	Comment string  `json:"comment"`
	OrderID *string `json:"order_id"`
}

// ListReviews returns a product's approved reviews with the rating summary
// GET /api/products/:id/reviews
func (ctrl *ReviewController) ListReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid UUID")
		return
	}

	page, err := ctrl.reviewService.ListProductReviews(
		productID,
		queryInt(c, "page", 1),
		queryInt(c, "per_page", service.DefaultPerPage),
	)
	if err != nil {
		if goerrors.Is(err, service.ErrProductNotFound) {
			errors.NotFound(c, errors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to list reviews", err, map[string]interface{}{
			"product_id": productID,
		})
		errors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":        page.Reviews,
		"average_rating": page.AverageRating,
		"review_count":   page.ReviewCount,
		"pagination":     page.Pagination,
	})
}

// CreateReview posts a review for a product
// POST /api/products/:id/reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid UUID")
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, errors.ValidationRequired, "rating is required")
		return
	}

	var orderID *uuid.UUID
	if req.OrderID != nil && *req.OrderID != "" {
		id, err := uuid.Parse(*req.OrderID)
		if err != nil {
			errors.BadRequest(c, errors.ValidationInvalidID, "Invalid UUID")
			return
		}
		orderID = &id
	}

	review, err := ctrl.reviewService.CreateReview(userID, productID, orderID, req.Rating, req.Title, req.Comment)
	if err != nil {
		switch {
		case goerrors.Is(err, service.ErrInvalidRating):
			errors.BadRequest(c, errors.ReviewInvalidRating, "Rating must be between 1 and 5")
		case goerrors.Is(err, service.ErrProductNotFound):
			errors.NotFound(c, errors.ProductNotFound, "Product not found")
		case goerrors.Is(err, service.ErrReviewAlreadyExists):
			errors.Conflict(c, errors.ReviewAlreadyExists, "You have already reviewed this product")
		default:
			log.Error("Failed to create review", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
			errors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Review created successfully",
		"review":  review,
	})
}

// DeleteReview removes the caller's own review
// DELETE /api/reviews/:id
func (ctrl *ReviewController) DeleteReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errors.BadRequest(c, errors.ValidationInvalidID, "Invalid UUID")
		return
	}

	if err := ctrl.reviewService.DeleteReview(userID, reviewID); err != nil {
		switch {
		case goerrors.Is(err, service.ErrReviewNotFound):
			errors.NotFound(c, errors.ReviewNotFound, "Review not found")
		case goerrors.Is(err, service.ErrReviewAccessDenied):
			errors.Forbidden(c, "")
		default:
			log.Error("Failed to delete review", err, map[string]interface{}{
				"user_id":   userID,
				"review_id": reviewID,
			})
			errors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Review deleted successfully",
	})
}
