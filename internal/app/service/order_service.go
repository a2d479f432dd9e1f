package service

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/model"
	"github.com/malvarez-dev/tienda-backend/internal/app/repository"
	"github.com/malvarez-dev/tienda-backend/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderAccessDenied   = errors.New("order access denied")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")
	ErrAddressNotFound     = errors.New("address not found")
	ErrCouponNotFound      = errors.New("coupon not found")
)

// CouponInvalidError carries the user-facing reason a coupon was rejected.
type CouponInvalidError struct {
	Reason string
}

func (e *CouponInvalidError) Error() string {
	return e.Reason
}

type CheckoutInput struct {
	UserID            uuid.UUID
	ShippingAddressID uuid.UUID
	BillingAddressID  *uuid.UUID
	ShippingMethod    string
	PaymentMethod     string
	CouponCode        string
	CustomerNotes     string
}

type OrderPage struct {
	Orders     []model.Order `json:"orders"`
	Pagination Pagination    `json:"pagination"`
}

type OrderService interface {
	Checkout(input CheckoutInput) (*model.Order, error)
	GetUserOrders(userID uuid.UUID, page, perPage int) (*OrderPage, error)
	GetOrderByID(userID, orderID uuid.UUID) (*model.Order, error)
	CancelOrder(userID, orderID uuid.UUID) (*model.Order, error)
}

type orderService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	addressRepo repository.AddressRepository
	couponRepo  repository.CouponRepository
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	addressRepo repository.AddressRepository,
	couponRepo repository.CouponRepository,
) OrderService {
	return &orderService{
		db:          db,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		addressRepo: addressRepo,
		couponRepo:  couponRepo,
	}
}

// generateOrderNumber builds a unique human-readable order number.
func generateOrderNumber() string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Sprintf("ORD-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), hex.EncodeToString(suffix))
}

func (s *orderService) addressSnapshot(userID, addressID uuid.UUID) (datatypes.JSON, error) {
	address, err := s.addressRepo.FindByID(addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	if address.UserID != userID {
		return nil, ErrAddressNotFound
	}

	snapshot, err := json.Marshal(map[string]interface{}{
		"street_address": address.StreetAddress,
		"apartment":      address.Apartment,
		"city":           address.City,
		"state":          address.State,
		"postal_code":    address.PostalCode,
		"country":        address.Country,
	})
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(snapshot), nil
}

// Checkout turns the user's cart into an order: line items are frozen copies
// of the cart contents, stock is decremented, the optional coupon is applied
// and a pending payment record is written, all in one transaction.
func (s *orderService) Checkout(input CheckoutInput) (*model.Order, error) {
	logger.Info("Creating order from cart", map[string]interface{}{
		"user_id":        input.UserID,
		"payment_method": input.PaymentMethod,
		"coupon_code":    input.CouponCode,
	})

	cart, err := s.cartRepo.FindCartByUserID(input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmptyCart
		}
		logger.Error("Failed to fetch cart for checkout", err, map[string]interface{}{
			"user_id": input.UserID,
		})
		return nil, err
	}

	cartItems, err := s.cartRepo.FindItemsByCart(cart.ID)
	if err != nil {
		logger.Error("Failed to fetch cart items for checkout", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return nil, err
	}
	if len(cartItems) == 0 {
		logger.Warn("Cannot create order: cart is empty", map[string]interface{}{
			"user_id": input.UserID,
		})
		return nil, ErrEmptyCart
	}

	shippingAddress, err := s.addressSnapshot(input.UserID, input.ShippingAddressID)
	if err != nil {
		return nil, err
	}
	billingAddress := shippingAddress
	if input.BillingAddressID != nil {
		billingAddress, err = s.addressSnapshot(input.UserID, *input.BillingAddressID)
		if err != nil {
			return nil, err
		}
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during checkout, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": input.UserID,
			})
		}
	}()

	var (
		subtotal   float64
		orderItems []model.OrderItem
	)

	for _, item := range cartItems {
		if !item.Product.IsActive {
			tx.Rollback()
			logger.Warn("Product no longer available during checkout", map[string]interface{}{
				"product_id": item.ProductID,
			})
			return nil, ErrProductNotFound
		}

		availableStock := item.Product.StockQuantity
		if item.VariantID != nil && item.Variant != nil {
			availableStock = item.Variant.StockQuantity
		}
		if availableStock < item.Quantity {
			tx.Rollback()
			logger.Warn("Insufficient stock during checkout", map[string]interface{}{
				"product_id": item.ProductID,
				"requested":  item.Quantity,
				"available":  availableStock,
			})
			return nil, &InsufficientStockError{Available: availableStock}
		}

		productID := item.ProductID
		orderItem := model.OrderItem{
			ProductID:   &productID,
			VariantID:   item.VariantID,
			ProductName: item.Product.Name,
			ProductSKU:  item.Product.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice(),
		}
		if item.VariantID != nil && item.Variant != nil {
			orderItem.ProductSKU = item.Variant.SKU
			orderItem.VariantAttributes = item.Variant.Attributes
		}
		orderItems = append(orderItems, orderItem)
		subtotal += item.TotalPrice()

		// Stock was checked above; the decrement is not atomic with the
		// check, so concurrent checkouts can still race past each other.
		// Variant lines hold their own stock, so only the matching counter
		// is decremented.
		if item.VariantID != nil {
			if err := tx.Model(&model.ProductVariant{}).Where("id = ?", *item.VariantID).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity)).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		} else {
			if err := tx.Model(&model.Product{}).Where("id = ?", item.ProductID).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity)).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}

	var (
		discount   float64
		couponID   *uuid.UUID
		couponCode string
	)
	if input.CouponCode != "" {
		coupon, err := s.couponRepo.FindByCode(input.CouponCode)
		if err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCouponNotFound
			}
			return nil, err
		}

		if ok, reason := coupon.Validate(subtotal, time.Now()); !ok {
			tx.Rollback()
			logger.Warn("Coupon rejected during checkout", map[string]interface{}{
				"code":   coupon.Code,
				"reason": reason,
			})
			return nil, &CouponInvalidError{Reason: reason}
		}

		discount = coupon.CalculateDiscount(subtotal)
		couponID = &coupon.ID
		couponCode = coupon.Code

		if err := s.couponRepo.WithTx(tx).IncrementUsage(coupon.ID); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	userID := input.UserID
	order := &model.Order{
		OrderNumber:     generateOrderNumber(),
		UserID:          &userID,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		Subtotal:        subtotal,
		DiscountAmount:  discount,
		TotalAmount:     subtotal - discount,
		ShippingAddress: shippingAddress,
		BillingAddress:  billingAddress,
		ShippingMethod:  input.ShippingMethod,
		CouponID:        couponID,
		CouponCode:      couponCode,
		CustomerNotes:   input.CustomerNotes,
		Items:           orderItems,
	}

	if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id": input.UserID,
		})
		return nil, err
	}

	payment := &model.Payment{
		OrderID:       order.ID,
		PaymentMethod: input.PaymentMethod,
		Amount:        order.TotalAmount,
		Status:        model.PaymentStatusPending,
	}
	if err := s.orderRepo.WithTx(tx).CreatePayment(payment); err != nil {
		tx.Rollback()
		return nil, err
	}

	if _, err := s.cartRepo.WithTx(tx).DeleteItemsByCart(cart.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit checkout transaction", err, map[string]interface{}{
			"user_id": input.UserID,
		})
		return nil, err
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount,
		"items":        len(orderItems),
	})
	return order, nil
}

func (s *orderService) GetUserOrders(userID uuid.UUID, page, perPage int) (*OrderPage, error) {
	logger.Debug("Fetching user orders", map[string]interface{}{
		"user_id": userID,
	})

	page, perPage = normalizePagination(page, perPage)

	orders, total, err := s.orderRepo.FindByUserID(userID, perPage, (page-1)*perPage)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	return &OrderPage{
		Orders:     orders,
		Pagination: buildPagination(page, perPage, total),
	}, nil
}

func (s *orderService) GetOrderByID(userID, orderID uuid.UUID) (*model.Order, error) {
	logger.Debug("Fetching order by ID", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	if order.UserID == nil || *order.UserID != userID {
		logger.Warn("Order access denied: ownership mismatch", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return nil, ErrOrderAccessDenied
	}

	return order, nil
}

// CancelOrder cancels a pending order and restores the reserved stock.
func (s *orderService) CancelOrder(userID, orderID uuid.UUID) (*model.Order, error) {
	logger.Info("Cancelling order", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	order, err := s.GetOrderByID(userID, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != model.OrderStatusPending {
		logger.Warn("Order cannot be cancelled in its current status", map[string]interface{}{
			"order_id": orderID,
			"status":   order.Status,
		})
		return nil, ErrOrderNotCancellable
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order cancellation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"order_id": orderID,
			})
		}
	}()

	// Mirror of the checkout decrement: variant lines restore variant
	// stock, everything else restores product stock.
	for _, item := range order.Items {
		if item.VariantID != nil {
			if err := tx.Model(&model.ProductVariant{}).Where("id = ?", *item.VariantID).
				Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		} else if item.ProductID != nil {
			if err := tx.Model(&model.Product{}).Where("id = ?", *item.ProductID).
				Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}

	order.Status = model.OrderStatusCancelled
	if err := s.orderRepo.WithTx(tx).Update(order); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit cancellation transaction", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	logger.Info("Order cancelled", map[string]interface{}{
		"order_id": orderID,
	})
	return order, nil
}
