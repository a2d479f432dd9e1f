package scheduler

import (
	"time"

	"github.com/malvarez-dev/tienda-backend/internal/app/repository"
	"github.com/malvarez-dev/tienda-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CouponScheduler deactivates coupons whose validity window has passed.
type CouponScheduler struct {
	cron       *cron.Cron
	couponRepo repository.CouponRepository
}

func NewCouponScheduler(couponRepo repository.CouponRepository) *CouponScheduler {
	return &CouponScheduler{
		cron:       cron.New(),
		couponRepo: couponRepo,
	}
}

// Start registers the daily expiry sweep at 3:00 AM.
func (s *CouponScheduler) Start() error {
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		logger.Info("Starting scheduled coupon expiry sweep", nil)

		deactivated, err := s.couponRepo.DeactivateExpired(time.Now())
		if err != nil {
			logger.Error("Failed to deactivate expired coupons", err)
			return
		}

		logger.Info("Coupon expiry sweep finished", map[string]interface{}{
			"deactivated": deactivated,
		})
	})

	if err != nil {
		logger.Error("Failed to add cron job for coupon expiry", err)
		return err
	}

	s.cron.Start()
	logger.Info("Coupon scheduler started successfully (daily at 3:00 AM)", nil)

	return nil
}

// Stop halts the scheduler.
func (s *CouponScheduler) Stop() {
	logger.Info("Stopping coupon scheduler...", nil)
	s.cron.Stop()
	logger.Info("Coupon scheduler stopped", nil)
}
