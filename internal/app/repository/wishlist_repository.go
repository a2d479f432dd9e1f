package repository

import (
	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/model"
	"github.com/malvarez-dev/tienda-backend/pkg/logger"
	"gorm.io/gorm"
)

type WishlistRepository interface {
	Create(entry *model.Wishlist) error
	FindByUserID(userID uuid.UUID) ([]model.Wishlist, error)
	FindByUserAndProduct(userID, productID uuid.UUID) (*model.Wishlist, error)
	Delete(id uuid.UUID) error
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) Create(entry *model.Wishlist) error {
	logger.Debug("Creating wishlist entry in database", map[string]interface{}{
		"user_id":    entry.UserID,
		"product_id": entry.ProductID,
	})

	if err := r.db.Create(entry).Error; err != nil {
		logger.Error("Failed to create wishlist entry in database", err, map[string]interface{}{
			"user_id":    entry.UserID,
			"product_id": entry.ProductID,
		})
		return err
	}
	return nil
}

func (r *wishlistRepository) FindByUserID(userID uuid.UUID) ([]model.Wishlist, error) {
	var entries []model.Wishlist
	err := r.db.Where("user_id = ?", userID).
		Preload("Product").
		Preload("Product.Images").
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		logger.Error("Failed to find wishlist entries in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return entries, nil
}

func (r *wishlistRepository) FindByUserAndProduct(userID, productID uuid.UUID) (*model.Wishlist, error) {
	var entry model.Wishlist
	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *wishlistRepository) Delete(id uuid.UUID) error {
	if err := r.db.Delete(&model.Wishlist{}, "id = ?", id).Error; err != nil {
		logger.Error("Failed to delete wishlist entry from database", err, map[string]interface{}{
			"wishlist_id": id,
		})
		return err
	}
	return nil
}
