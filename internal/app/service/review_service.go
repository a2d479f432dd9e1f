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

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("you have already reviewed this product")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrReviewAccessDenied  = errors.New("review access denied")
)

type ReviewPage struct {
	Reviews       []model.ProductReview `json:"reviews"`
	AverageRating float64               `json:"average_rating"`
	ReviewCount   int64                 `json:"review_count"`
	Pagination    Pagination            `json:"pagination"`
}

type ReviewService interface {
	ListProductReviews(productID uuid.UUID, page, perPage int) (*ReviewPage, error)
	CreateReview(userID, productID uuid.UUID, orderID *uuid.UUID, rating int, title, comment string) (*model.ProductReview, error)
	DeleteReview(userID, reviewID uuid.UUID) error
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

func (s *reviewService) ListProductReviews(productID uuid.UUID, page, perPage int) (*ReviewPage, error) {
	logger.Debug("Listing product reviews", map[string]interface{}{
		"product_id": productID,
	})

	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	page, perPage = normalizePagination(page, perPage)

	reviews, total, err := s.reviewRepo.FindByProductID(productID, perPage, (page-1)*perPage)
	if err != nil {
		logger.Error("Failed to list product reviews", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}

	avg, count, err := s.reviewRepo.AverageRating(productID)
	if err != nil {
		return nil, err
	}

	return &ReviewPage{
		Reviews:       reviews,
		AverageRating: math.Round(avg*10) / 10,
		ReviewCount:   count,
		Pagination:    buildPagination(page, perPage, total),
	}, nil
}

func (s *reviewService) CreateReview(userID, productID uuid.UUID, orderID *uuid.UUID, rating int, title, comment string) (*model.ProductReview, error) {
	logger.Info("Creating product review", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"rating":     rating,
	})

	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}

	existing, err := s.reviewRepo.FindByUserAndProduct(userID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrReviewAlreadyExists
	}

	review := &model.ProductReview{
		ProductID:  productID,
		UserID:     userID,
		OrderID:    orderID,
		Rating:     rating,
		Title:      title,
		Comment:    comment,
		IsVerified: orderID != nil,
		IsApproved: true,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		logger.Error("Failed to create review", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}
	return review, nil
}

func (s *reviewService) DeleteReview(userID, reviewID uuid.UUID) error {
	logger.Info("Deleting review", map[string]interface{}{
		"user_id":   userID,
		"review_id": reviewID,
	})

	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}

	if review.UserID != userID {
		logger.Warn("Review deletion denied: ownership mismatch", map[string]interface{}{
			"user_id":   userID,
			"review_id": reviewID,
		})
		return ErrReviewAccessDenied
	}

	return s.reviewRepo.Delete(review.ID)
}
