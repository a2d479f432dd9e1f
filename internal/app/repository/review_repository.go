package repository

import (
	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/model"
	"github.com/malvarez-dev/tienda-backend/pkg/logger"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(review *model.ProductReview) error
	FindByID(id uuid.UUID) (*model.ProductReview, error)
	FindByProductID(productID uuid.UUID, limit, offset int) ([]model.ProductReview, int64, error)
	FindByUserAndProduct(userID, productID uuid.UUID) (*model.ProductReview, error)
	AverageRating(productID uuid.UUID) (float64, int64, error)
	Update(review *model.ProductReview) error
	Delete(id uuid.UUID) error
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(review *model.ProductReview) error {
	logger.Debug("Creating product review in database", map[string]interface{}{
		"product_id": review.ProductID,
		"user_id":    review.UserID,
		"rating":     review.Rating,
	})

	if err := r.db.Create(review).Error; err != nil {
		logger.Error("Failed to create product review in database", err, map[string]interface{}{
			"product_id": review.ProductID,
			"user_id":    review.UserID,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) FindByID(id uuid.UUID) (*model.ProductReview, error) {
	var review model.ProductReview
	err := r.db.First(&review, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByProductID(productID uuid.UUID, limit, offset int) ([]model.ProductReview, int64, error) {
	var total int64
	if err := r.db.Model(&model.ProductReview{}).
		Where("product_id = ? AND is_approved = ?", productID, true).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.Where("product_id = ? AND is_approved = ?", productID, true).
		Preload("User").
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var reviews []model.ProductReview
	if err := query.Find(&reviews).Error; err != nil {
		logger.Error("Failed to find product reviews in database", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *reviewRepository) FindByUserAndProduct(userID, productID uuid.UUID) (*model.ProductReview, error) {
	var review model.ProductReview
	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) AverageRating(productID uuid.UUID) (float64, int64, error) {
	var count int64
	if err := r.db.Model(&model.ProductReview{}).
		Where("product_id = ? AND is_approved = ?", productID, true).
		Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	var avg *float64
	if err := r.db.Model(&model.ProductReview{}).
		Where("product_id = ? AND is_approved = ?", productID, true).
		Select("AVG(rating)").
		Scan(&avg).Error; err != nil {
		return 0, 0, err
	}
	if avg == nil {
		return 0, count, nil
	}
	return *avg, count, nil
}

func (r *reviewRepository) Update(review *model.ProductReview) error {
	if err := r.db.Save(review).Error; err != nil {
		logger.Error("Failed to update product review in database", err, map[string]interface{}{
			"review_id": review.ID,
		})
		return err
	}
	return nil
}

func (r *reviewRepository) Delete(id uuid.UUID) error {
	if err := r.db.Delete(&model.ProductReview{}, "id = ?", id).Error; err != nil {
		logger.Error("Failed to delete product review from database", err, map[string]interface{}{
			"review_id": id,
		})
		return err
	}
	return nil
}
