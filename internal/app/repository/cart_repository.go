package repository

import (
	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/model"
	"github.com/malvarez-dev/tienda-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	CreateCart(cart *model.Cart) error
	FindCartByID(id uuid.UUID) (*model.Cart, error)
	FindCartByUserID(userID uuid.UUID) (*model.Cart, error)
	FindCartBySessionID(sessionID string) (*model.Cart, error)
	DeleteCart(id uuid.UUID) error

	CreateItem(item *model.CartItem) error
	FindItemByID(id uuid.UUID) (*model.CartItem, error)
	FindItem(cartID, productID uuid.UUID, variantID *uuid.UUID) (*model.CartItem, error)
	FindItemsByCart(cartID uuid.UUID) ([]model.CartItem, error)
	UpdateItem(item *model.CartItem) error
	DeleteItem(id uuid.UUID) error
	DeleteItemsByCart(cartID uuid.UUID) (int64, error)
	CountItems(cartID uuid.UUID) (itemsCount, totalQuantity int64, err error)

	WithTx(tx *gorm.DB) CartRepository
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

func (r *cartRepository) CreateCart(cart *model.Cart) error {
	logger.Debug("Creating cart in database", map[string]interface{}{
		"user_id":    cart.UserID,
		"session_id": cart.SessionID,
	})

	if err := r.db.Create(cart).Error; err != nil {
		logger.Error("Failed to create cart in database", err, map[string]interface{}{
			"user_id":    cart.UserID,
			"session_id": cart.SessionID,
		})
		return err
	}

	logger.Debug("Cart created in database", map[string]interface{}{
		"cart_id": cart.ID,
	})
	return nil
}

func (r *cartRepository) FindCartByID(id uuid.UUID) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.Preload("Items").First(&cart, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) FindCartByUserID(userID uuid.UUID) (*model.Cart, error) {
	logger.Debug("Finding cart by user ID in database", map[string]interface{}{
		"user_id": userID,
	})

	var cart model.Cart
	err := r.db.Preload("Items").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}

	logger.Debug("Cart found by user ID in database", map[string]interface{}{
		"cart_id": cart.ID,
		"user_id": userID,
	})
	return &cart, nil
}

func (r *cartRepository) FindCartBySessionID(sessionID string) (*model.Cart, error) {
	logger.Debug("Finding cart by session ID in database", map[string]interface{}{
		"session_id": sessionID,
	})

	var cart model.Cart
	err := r.db.Preload("Items").
		Where("session_id = ?", sessionID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}

	logger.Debug("Cart found by session ID in database", map[string]interface{}{
		"cart_id":    cart.ID,
		"session_id": sessionID,
	})
	return &cart, nil
}

func (r *cartRepository) DeleteCart(id uuid.UUID) error {
	logger.Debug("Deleting cart from database", map[string]interface{}{
		"cart_id": id,
	})

	if err := r.db.Where("cart_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to delete cart items from database", err, map[string]interface{}{
			"cart_id": id,
		})
		return err
	}

	if err := r.db.Delete(&model.Cart{}, "id = ?", id).Error; err != nil {
		logger.Error("Failed to delete cart from database", err, map[string]interface{}{
			"cart_id": id,
		})
		return err
	}

	logger.Debug("Cart deleted from database", map[string]interface{}{
		"cart_id": id,
	})
	return nil
}

func (r *cartRepository) CreateItem(item *model.CartItem) error {
	logger.Debug("Creating cart item in database", map[string]interface{}{
		"cart_id":    item.CartID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	})

	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create cart item in database", err, map[string]interface{}{
			"cart_id":    item.CartID,
			"product_id": item.ProductID,
			"quantity":   item.Quantity,
		})
		return err
	}

	logger.Debug("Cart item created in database", map[string]interface{}{
		"cart_item_id": item.ID,
		"cart_id":      item.CartID,
		"product_id":   item.ProductID,
	})
	return nil
}

func (r *cartRepository) FindItemByID(id uuid.UUID) (*model.CartItem, error) {
	logger.Debug("Finding cart item by ID in database", map[string]interface{}{
		"cart_item_id": id,
	})

	var item model.CartItem
	err := r.db.Preload("Product").Preload("Variant").
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) FindItem(cartID, productID uuid.UUID, variantID *uuid.UUID) (*model.CartItem, error) {
	query := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID)
	if variantID != nil {
		query = query.Where("variant_id = ?", *variantID)
	} else {
		query = query.Where("variant_id IS NULL")
	}

	var item model.CartItem
	if err := query.First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) FindItemsByCart(cartID uuid.UUID) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.Where("cart_id = ?", cartID).
		Preload("Product").
		Preload("Variant").
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find cart items in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) UpdateItem(item *model.CartItem) error {
	logger.Debug("Updating cart item in database", map[string]interface{}{
		"cart_item_id": item.ID,
		"quantity":     item.Quantity,
	})

	if err := r.db.Save(item).Error; err != nil {
		logger.Error("Failed to update cart item in database", err, map[string]interface{}{
			"cart_item_id": item.ID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteItem(id uuid.UUID) error {
	logger.Debug("Deleting cart item from database", map[string]interface{}{
		"cart_item_id": id,
	})

	if err := r.db.Delete(&model.CartItem{}, "id = ?", id).Error; err != nil {
		logger.Error("Failed to delete cart item from database", err, map[string]interface{}{
			"cart_item_id": id,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteItemsByCart(cartID uuid.UUID) (int64, error) {
	logger.Debug("Deleting cart items by cart ID from database", map[string]interface{}{
		"cart_id": cartID,
	})

	result := r.db.Where("cart_id = ?", cartID).Delete(&model.CartItem{})
	if result.Error != nil {
		logger.Error("Failed to delete cart items by cart ID from database", result.Error, map[string]interface{}{
			"cart_id": cartID,
		})
		return 0, result.Error
	}

	logger.Debug("Cart items deleted from database", map[string]interface{}{
		"cart_id": cartID,
		"count":   result.RowsAffected,
	})
	return result.RowsAffected, nil
}

// CountItems reports both the number of distinct cart lines and the
// summed quantity across them.
func (r *cartRepository) CountItems(cartID uuid.UUID) (int64, int64, error) {
	var counts struct {
		ItemsCount    int64
		TotalQuantity int64
	}
	err := r.db.Model(&model.CartItem{}).
		Where("cart_id = ?", cartID).
		Select("COUNT(*) AS items_count, COALESCE(SUM(quantity), 0) AS total_quantity").
		Scan(&counts).Error
	if err != nil {
		logger.Error("Failed to count cart items in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return 0, 0, err
	}
	return counts.ItemsCount, counts.TotalQuantity, nil
}
