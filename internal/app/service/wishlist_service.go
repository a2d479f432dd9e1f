package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/model"
	"github.com/malvarez-dev/tienda-backend/internal/app/repository"
	"github.com/malvarez-dev/tienda-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrWishlistEntryNotFound = errors.New("wishlist entry not found")
	ErrAlreadyInWishlist     = errors.New("product is already in the wishlist")
)

type WishlistService interface {
	ListWishlist(userID uuid.UUID) ([]model.Wishlist, error)
	AddToWishlist(userID, productID uuid.UUID) (*model.Wishlist, error)
	RemoveFromWishlist(userID, productID uuid.UUID) error
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

func NewWishlistService(
	wishlistRepo repository.WishlistRepository,
	productRepo repository.ProductRepository,
) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

func (s *wishlistService) ListWishlist(userID uuid.UUID) ([]model.Wishlist, error) {
	logger.Debug("Listing wishlist", map[string]interface{}{
		"user_id": userID,
	})
	return s.wishlistRepo.FindByUserID(userID)
}

func (s *wishlistService) AddToWishlist(userID, productID uuid.UUID) (*model.Wishlist, error) {
	logger.Info("Adding product to wishlist", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

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

	existing, err := s.wishlistRepo.FindByUserAndProduct(userID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyInWishlist
	}

	entry := &model.Wishlist{
		UserID:    userID,
		ProductID: productID,
	}
	if err := s.wishlistRepo.Create(entry); err != nil {
		logger.Error("Failed to add product to wishlist", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}
	return entry, nil
}

func (s *wishlistService) RemoveFromWishlist(userID, productID uuid.UUID) error {
	logger.Info("Removing product from wishlist", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	entry, err := s.wishlistRepo.FindByUserAndProduct(userID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWishlistEntryNotFound
		}
		return err
	}
	return s.wishlistRepo.Delete(entry.ID)
}
