package repository

import (
	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/model"
	"github.com/malvarez-dev/tienda-backend/pkg/logger"
	"gorm.io/gorm"
)

type AddressRepository interface {
	Create(address *model.Address) error
	FindByID(id uuid.UUID) (*model.Address, error)
	FindByUserID(userID uuid.UUID) ([]model.Address, error)
	Update(address *model.Address) error
	Delete(id uuid.UUID) error
	ClearDefault(userID uuid.UUID, addressType string) error
}

type addressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) Create(address *model.Address) error {
	logger.Debug("Creating address in database", map[string]interface{}{
		"user_id": address.UserID,
		"city":    address.City,
	})

	if err := r.db.Create(address).Error; err != nil {
		logger.Error("Failed to create address in database", err, map[string]interface{}{
			"user_id": address.UserID,
		})
		return err
	}
	return nil
}

func (r *addressRepository) FindByID(id uuid.UUID) (*model.Address, error) {
	var address model.Address
	err := r.db.First(&address, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *addressRepository) FindByUserID(userID uuid.UUID) ([]model.Address, error) {
	var addresses []model.Address
	err := r.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error
	if err != nil {
		logger.Error("Failed to find addresses by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return addresses, nil
}

func (r *addressRepository) Update(address *model.Address) error {
	if err := r.db.Save(address).Error; err != nil {
		logger.Error("Failed to update address in database", err, map[string]interface{}{
			"address_id": address.ID,
		})
		return err
	}
	return nil
}

func (r *addressRepository) Delete(id uuid.UUID) error {
	if err := r.db.Delete(&model.Address{}, "id = ?", id).Error; err != nil {
		logger.Error("Failed to delete address from database", err, map[string]interface{}{
			"address_id": id,
		})
		return err
	}
	return nil
}

func (r *addressRepository) ClearDefault(userID uuid.UUID, addressType string) error {
	if err := r.db.Model(&model.Address{}).
		Where("user_id = ? AND address_type = ?", userID, addressType).
		Update("is_default", false).Error; err != nil {
		logger.Error("Failed to clear default addresses in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	return nil
}
