package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/model"
	"github.com/malvarez-dev/tienda-backend/pkg/logger"
	"gorm.io/gorm"
)

type CouponRepository interface {
	Create(coupon *model.Coupon) error
	FindByID(id uuid.UUID) (*model.Coupon, error)
	FindByCode(code string) (*model.Coupon, error)
	IncrementUsage(id uuid.UUID) error
	DeactivateExpired(now time.Time) (int64, error)

	WithTx(tx *gorm.DB) CouponRepository
}

type couponRepository struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *couponRepository) WithTx(tx *gorm.DB) CouponRepository {
	return &couponRepository{db: tx}
}

func (r *couponRepository) Create(coupon *model.Coupon) error {
	logger.Debug("Creating coupon in database", map[string]interface{}{
		"code": coupon.Code,
	})

	if err := r.db.Create(coupon).Error; err != nil {
		logger.Error("Failed to create coupon in database", err, map[string]interface{}{
			"code": coupon.Code,
		})
		return err
	}
	return nil
}

func (r *couponRepository) FindByID(id uuid.UUID) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.First(&coupon, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) FindByCode(code string) (*model.Coupon, error) {
	logger.Debug("Finding coupon by code in database", map[string]interface{}{
		"code": code,
	})

	var coupon model.Coupon
	err := r.db.Where("code = ?", code).First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) IncrementUsage(id uuid.UUID) error {
	logger.Debug("Incrementing coupon usage in database", map[string]interface{}{
		"coupon_id": id,
	})

	if err := r.db.Model(&model.Coupon{}).Where("id = ?", id).
		Update("used_count", gorm.Expr("used_count + ?", 1)).Error; err != nil {
		logger.Error("Failed to increment coupon usage in database", err, map[string]interface{}{
			"coupon_id": id,
		})
		return err
	}
	return nil
}

func (r *couponRepository) DeactivateExpired(now time.Time) (int64, error) {
	logger.Debug("Deactivating expired coupons in database", map[string]interface{}{
		"now": now,
	})

	result := r.db.Model(&model.Coupon{}).
		Where("is_active = ? AND valid_until IS NOT NULL AND valid_until < ?", true, now).
		Update("is_active", false)
	if result.Error != nil {
		logger.Error("Failed to deactivate expired coupons in database", result.Error)
		return 0, result.Error
	}

	logger.Debug("Expired coupons deactivated in database", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
