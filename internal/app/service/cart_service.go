package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/model"
	"github.com/malvarez-dev/tienda-backend/internal/app/repository"
	"github.com/malvarez-dev/tienda-backend/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaxItemQuantity is the per-request quantity ceiling for cart mutations.
const MaxItemQuantity = 10

var (
	ErrCartNotFound         = errors.New("cart not found")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrCartIdentityRequired = errors.New("cart identity required")
	ErrCartAccessDenied     = errors.New("cart access denied")
	ErrInvalidQuantity      = errors.New("quantity must be an integer and greater than 0")
	ErrQuantityCeiling      = fmt.Errorf("maximum quantity allowed: %d", MaxItemQuantity)
)

// InsufficientStockError reports how much stock remains so the caller can
// surface it to the client.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return "not enough stock available"
}

// CartIdentity names the owner of a cart: an authenticated user or an
// anonymous session, never both.
type CartIdentity struct {
	UserID    *uuid.UUID
	SessionID string
}

func (id CartIdentity) valid() bool {
	return id.UserID != nil || id.SessionID != ""
}

type CartTotals struct {
	Subtotal   float64 `json:"subtotal"`
	TotalItems int     `json:"total_items"`
	ItemsCount int     `json:"items_count"`
}

type CartProductSummary struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	IsActive      bool      `json:"is_active"`
}

type CartVariantSummary struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Price         float64        `json:"price"`
	StockQuantity int            `json:"stock_quantity"`
	Attributes    datatypes.JSON `json:"attributes,omitempty"`
}

type CartItemDetail struct {
	ID             uuid.UUID           `json:"id"`
	ProductID      uuid.UUID           `json:"product_id"`
	VariantID      *uuid.UUID          `json:"variant_id,omitempty"`
	Quantity       int                 `json:"quantity"`
	UnitPrice      float64             `json:"unit_price"`
	TotalPrice     float64             `json:"total_price"`
	Product        CartProductSummary  `json:"product"`
	Variant        *CartVariantSummary `json:"variant,omitempty"`
	CurrentPrice   float64             `json:"current_price"`
	IsAvailable    bool                `json:"is_available"`
	AvailableStock int                 `json:"available_stock"`
}

type CartDetail struct {
	CartID    uuid.UUID        `json:"cart_id"`
	UserID    *uuid.UUID       `json:"user_id"`
	SessionID *string          `json:"session_id"`
	Items     []CartItemDetail `json:"items"`
	Totals    CartTotals       `json:"totals"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type CartAddResult struct {
	CartID        uuid.UUID  `json:"cart_id"`
	ProductName   string     `json:"product_name"`
	QuantityAdded int        `json:"quantity_added"`
	Totals        CartTotals `json:"totals"`
}

type CartUpdateResult struct {
	ItemID      uuid.UUID  `json:"item_id"`
	ProductName string     `json:"product_name"`
	NewQuantity int        `json:"new_quantity"`
	Removed     bool       `json:"-"`
	Totals      CartTotals `json:"totals"`
}

type CartRemoveResult struct {
	RemovedItemID uuid.UUID  `json:"removed_item_id"`
	ProductName   string     `json:"product_name"`
	Totals        CartTotals `json:"totals"`
}

type CartClearResult struct {
	CartID       uuid.UUID `json:"cart_id"`
	RemovedCount int64     `json:"removed_count"`
}

type CartMergeResult struct {
	CartID      uuid.UUID  `json:"cart_id"`
	MergedItems int        `json:"merged_items"`
	Totals      CartTotals `json:"totals"`
}

// CartCountResult is the lightweight badge payload: distinct lines and
// summed quantity. CartID is nil when the identity has no cart yet.
type CartCountResult struct {
	CartID        *uuid.UUID `json:"cart_id"`
	ItemsCount    int64      `json:"items_count"`
	TotalQuantity int64      `json:"total_quantity"`
}

type CartService interface {
	GetCart(identity CartIdentity) (*CartDetail, error)
	AddItem(identity CartIdentity, productID uuid.UUID, variantID *uuid.UUID, quantity int) (*CartAddResult, error)
	UpdateItem(identity CartIdentity, itemID uuid.UUID, quantity int) (*CartUpdateResult, error)
	RemoveItem(identity CartIdentity, itemID uuid.UUID) (*CartRemoveResult, error)
	ClearCart(identity CartIdentity) (*CartClearResult, error)
	MergeGuestCart(userID uuid.UUID, guestSessionID string) (*CartMergeResult, error)
	CountItems(identity CartIdentity) (*CartCountResult, error)
}

type cartService struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
) CartService {
	return &cartService{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique failed")
}

// getOrCreateCart finds the identity's cart or creates it. A concurrent
// create losing the unique-index race falls back to re-fetching.
func (s *cartService) getOrCreateCart(repo repository.CartRepository, identity CartIdentity) (*model.Cart, error) {
	if !identity.valid() {
		return nil, ErrCartIdentityRequired
	}

	find := func() (*model.Cart, error) {
		if identity.UserID != nil {
			return repo.FindCartByUserID(*identity.UserID)
		}
		return repo.FindCartBySessionID(identity.SessionID)
	}

	cart, err := find()
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = &model.Cart{}
	if identity.UserID != nil {
		cart.UserID = identity.UserID
	} else {
		sessionID := identity.SessionID
		cart.SessionID = &sessionID
	}

	if err := repo.CreateCart(cart); err != nil {
		if isDuplicateKey(err) {
			logger.Debug("Cart create lost race, refetching", map[string]interface{}{
				"user_id":    identity.UserID,
				"session_id": identity.SessionID,
			})
			return find()
		}
		return nil, err
	}
	return cart, nil
}

// findCart locates the identity's cart without creating one.
func (s *cartService) findCart(identity CartIdentity) (*model.Cart, error) {
	if !identity.valid() {
		return nil, ErrCartIdentityRequired
	}
	if identity.UserID != nil {
		return s.cartRepo.FindCartByUserID(*identity.UserID)
	}
	return s.cartRepo.FindCartBySessionID(identity.SessionID)
}

func (s *cartService) computeTotals(repo repository.CartRepository, cartID uuid.UUID) (CartTotals, error) {
	items, err := repo.FindItemsByCart(cartID)
	if err != nil {
		return CartTotals{}, err
	}

	totals := CartTotals{}
	for _, item := range items {
		totals.Subtotal += item.TotalPrice()
		totals.TotalItems += item.Quantity
	}
	totals.ItemsCount = len(items)
	return totals, nil
}

func (s *cartService) GetCart(identity CartIdentity) (*CartDetail, error) {
	logger.Debug("Fetching cart", map[string]interface{}{
		"user_id":    identity.UserID,
		"session_id": identity.SessionID,
	})

	cart, err := s.getOrCreateCart(s.cartRepo, identity)
	if err != nil {
		logger.Error("Failed to fetch or create cart", err, map[string]interface{}{
			"user_id":    identity.UserID,
			"session_id": identity.SessionID,
		})
		return nil, err
	}

	items, err := s.cartRepo.FindItemsByCart(cart.ID)
	if err != nil {
		logger.Error("Failed to fetch cart items", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return nil, err
	}

	detail := &CartDetail{
		CartID:    cart.ID,
		UserID:    cart.UserID,
		SessionID: cart.SessionID,
		Items:     []CartItemDetail{},
		UpdatedAt: cart.UpdatedAt,
	}

	for _, item := range items {
		// Totals cover every row; the visible item list skips inactive products.
		detail.Totals.Subtotal += item.TotalPrice()
		detail.Totals.TotalItems += item.Quantity
		detail.Totals.ItemsCount++

		if !item.Product.IsActive {
			continue
		}

		itemDetail := CartItemDetail{
			ID:         item.ID,
			ProductID:  item.ProductID,
			VariantID:  item.VariantID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice(),
			Product: CartProductSummary{
				ID:            item.Product.ID,
				Name:          item.Product.Name,
				Slug:          item.Product.Slug,
				Price:         item.Product.Price,
				StockQuantity: item.Product.StockQuantity,
				IsActive:      item.Product.IsActive,
			},
		}

		availableStock := item.Product.StockQuantity
		currentPrice := item.Product.Price

		if item.VariantID != nil && item.Variant != nil {
			variantPrice := item.Variant.EffectivePrice(&item.Product)
			itemDetail.Variant = &CartVariantSummary{
				ID:            item.Variant.ID,
				Name:          item.Variant.Name,
				Price:         variantPrice,
				StockQuantity: item.Variant.StockQuantity,
				Attributes:    item.Variant.Attributes,
			}
			availableStock = item.Variant.StockQuantity
			currentPrice = variantPrice
		}

		itemDetail.CurrentPrice = currentPrice
		itemDetail.AvailableStock = availableStock
		itemDetail.IsAvailable = availableStock >= item.Quantity

		detail.Items = append(detail.Items, itemDetail)
	}

	logger.Info("Cart fetched successfully", map[string]interface{}{
		"cart_id": cart.ID,
		"items":   len(detail.Items),
	})
	return detail, nil
}

func (s *cartService) AddItem(identity CartIdentity, productID uuid.UUID, variantID *uuid.UUID, quantity int) (*CartAddResult, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    identity.UserID,
		"session_id": identity.SessionID,
		"product_id": productID,
		"variant_id": variantID,
		"quantity":   quantity,
	})

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity > MaxItemQuantity {
		return nil, ErrQuantityCeiling
	}

	product, variant, err := s.resolveProductAndVariant(productID, variantID)
	if err != nil {
		return nil, err
	}

	availableStock := product.StockQuantity
	if variant != nil {
		availableStock = variant.StockQuantity
	}
	if availableStock < quantity {
		logger.Warn("Cannot add to cart: insufficient stock", map[string]interface{}{
			"product_id": productID,
			"requested":  quantity,
			"available":  availableStock,
		})
		return nil, &InsufficientStockError{Available: availableStock}
	}

	var result *CartAddResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)

		cart, err := s.getOrCreateCart(repo, identity)
		if err != nil {
			return err
		}

		existing, err := repo.FindItem(cart.ID, productID, variantID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if existing != nil {
			newQuantity := existing.Quantity + quantity
			if availableStock < newQuantity {
				logger.Warn("Cannot add to cart: insufficient stock for combined quantity", map[string]interface{}{
					"cart_item_id":    existing.ID,
					"current_in_cart": existing.Quantity,
					"available":       availableStock,
				})
				return &InsufficientStockError{Available: availableStock}
			}
			existing.Quantity = newQuantity
			if err := repo.UpdateItem(existing); err != nil {
				return err
			}
		} else {
			unitPrice := product.Price
			if variant != nil {
				unitPrice = variant.EffectivePrice(product)
			}
			item := &model.CartItem{
				CartID:    cart.ID,
				ProductID: productID,
				VariantID: variantID,
				Quantity:  quantity,
				UnitPrice: unitPrice,
			}
			if err := repo.CreateItem(item); err != nil {
				return err
			}
		}

		if err := touchCart(tx, cart.ID); err != nil {
			return err
		}

		totals, err := s.computeTotals(repo, cart.ID)
		if err != nil {
			return err
		}

		result = &CartAddResult{
			CartID:        cart.ID,
			ProductName:   product.Name,
			QuantityAdded: quantity,
			Totals:        totals,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Cart item added successfully", map[string]interface{}{
		"cart_id":    result.CartID,
		"product_id": productID,
	})
	return result, nil
}

func (s *cartService) UpdateItem(identity CartIdentity, itemID uuid.UUID, quantity int) (*CartUpdateResult, error) {
	logger.Info("Updating cart item", map[string]interface{}{
		"user_id":      identity.UserID,
		"session_id":   identity.SessionID,
		"cart_item_id": itemID,
		"quantity":     quantity,
	})

	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity > MaxItemQuantity {
		return nil, ErrQuantityCeiling
	}

	var result *CartUpdateResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)

		item, err := repo.FindItemByID(itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartItemNotFound
			}
			return err
		}

		cart, err := repo.FindCartByID(item.CartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartItemNotFound
			}
			return err
		}

		if !identityOwnsCart(identity, cart) {
			logger.Warn("Cart item update denied: ownership mismatch", map[string]interface{}{
				"cart_item_id": itemID,
				"cart_id":      cart.ID,
			})
			return ErrCartAccessDenied
		}

		if quantity == 0 {
			if err := repo.DeleteItem(item.ID); err != nil {
				return err
			}
			if err := touchCart(tx, cart.ID); err != nil {
				return err
			}
			totals, err := s.computeTotals(repo, cart.ID)
			if err != nil {
				return err
			}
			result = &CartUpdateResult{
				ItemID:      item.ID,
				ProductName: item.Product.Name,
				NewQuantity: 0,
				Removed:     true,
				Totals:      totals,
			}
			return nil
		}

		availableStock := item.Product.StockQuantity
		if item.VariantID != nil && item.Variant != nil {
			availableStock = item.Variant.StockQuantity
		}
		if availableStock < quantity {
			logger.Warn("Cannot update cart item: insufficient stock", map[string]interface{}{
				"cart_item_id": itemID,
				"requested":    quantity,
				"available":    availableStock,
			})
			return &InsufficientStockError{Available: availableStock}
		}

		item.Quantity = quantity
		if err := repo.UpdateItem(item); err != nil {
			return err
		}
		if err := touchCart(tx, cart.ID); err != nil {
			return err
		}

		totals, err := s.computeTotals(repo, cart.ID)
		if err != nil {
			return err
		}
		result = &CartUpdateResult{
			ItemID:      item.ID,
			ProductName: item.Product.Name,
			NewQuantity: quantity,
			Totals:      totals,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Cart item updated successfully", map[string]interface{}{
		"cart_item_id": itemID,
		"new_quantity": quantity,
	})
	return result, nil
}

func (s *cartService) RemoveItem(identity CartIdentity, itemID uuid.UUID) (*CartRemoveResult, error) {
	logger.Info("Removing cart item", map[string]interface{}{
		"user_id":      identity.UserID,
		"session_id":   identity.SessionID,
		"cart_item_id": itemID,
	})

	var result *CartRemoveResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)

		item, err := repo.FindItemByID(itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartItemNotFound
			}
			return err
		}

		cart, err := repo.FindCartByID(item.CartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartItemNotFound
			}
			return err
		}

		if !identityOwnsCart(identity, cart) {
			logger.Warn("Cart item removal denied: ownership mismatch", map[string]interface{}{
				"cart_item_id": itemID,
				"cart_id":      cart.ID,
			})
			return ErrCartAccessDenied
		}

		if err := repo.DeleteItem(item.ID); err != nil {
			return err
		}
		if err := touchCart(tx, cart.ID); err != nil {
			return err
		}

		totals, err := s.computeTotals(repo, cart.ID)
		if err != nil {
			return err
		}
		result = &CartRemoveResult{
			RemovedItemID: item.ID,
			ProductName:   item.Product.Name,
			Totals:        totals,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Cart item removed", map[string]interface{}{
		"cart_item_id": itemID,
	})
	return result, nil
}

func (s *cartService) ClearCart(identity CartIdentity) (*CartClearResult, error) {
	logger.Info("Clearing cart", map[string]interface{}{
		"user_id":    identity.UserID,
		"session_id": identity.SessionID,
	})

	var result *CartClearResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)

		cart, err := findCartTx(repo, identity)
		if err != nil {
			return err
		}

		removed, err := repo.DeleteItemsByCart(cart.ID)
		if err != nil {
			return err
		}
		if err := touchCart(tx, cart.ID); err != nil {
			return err
		}

		result = &CartClearResult{
			CartID:       cart.ID,
			RemovedCount: removed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Cart cleared", map[string]interface{}{
		"cart_id": result.CartID,
		"removed": result.RemovedCount,
	})
	return result, nil
}

// MergeGuestCart folds a guest session's cart into the user's cart in one
// transaction. Quantities for matching (product, variant) rows are summed
// without a stock re-check; the guest cart is deleted afterward.
func (s *cartService) MergeGuestCart(userID uuid.UUID, guestSessionID string) (*CartMergeResult, error) {
	logger.Info("Merging guest cart into user cart", map[string]interface{}{
		"user_id":          userID,
		"guest_session_id": guestSessionID,
	})

	if guestSessionID == "" {
		return nil, ErrCartIdentityRequired
	}

	var result *CartMergeResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.cartRepo.WithTx(tx)

		guestCart, err := repo.FindCartBySessionID(guestSessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartNotFound
			}
			return err
		}

		userCart, err := s.getOrCreateCart(repo, CartIdentity{UserID: &userID})
		if err != nil {
			return err
		}

		guestItems, err := repo.FindItemsByCart(guestCart.ID)
		if err != nil {
			return err
		}

		merged := 0
		for _, guestItem := range guestItems {
			existing, err := repo.FindItem(userCart.ID, guestItem.ProductID, guestItem.VariantID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			if existing != nil {
				existing.Quantity += guestItem.Quantity
				if err := repo.UpdateItem(existing); err != nil {
					return err
				}
			} else {
				item := &model.CartItem{
					CartID:    userCart.ID,
					ProductID: guestItem.ProductID,
					VariantID: guestItem.VariantID,
					Quantity:  guestItem.Quantity,
					UnitPrice: guestItem.UnitPrice,
				}
				if err := repo.CreateItem(item); err != nil {
					return err
				}
			}
			merged++
		}

		if err := repo.DeleteCart(guestCart.ID); err != nil {
			return err
		}
		if err := touchCart(tx, userCart.ID); err != nil {
			return err
		}

		totals, err := s.computeTotals(repo, userCart.ID)
		if err != nil {
			return err
		}
		result = &CartMergeResult{
			CartID:      userCart.ID,
			MergedItems: merged,
			Totals:      totals,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Guest cart merged successfully", map[string]interface{}{
		"cart_id":      result.CartID,
		"merged_items": result.MergedItems,
	})
	return result, nil
}

func (s *cartService) CountItems(identity CartIdentity) (*CartCountResult, error) {
	logger.Debug("Counting cart items", map[string]interface{}{
		"user_id":    identity.UserID,
		"session_id": identity.SessionID,
	})

	cart, err := s.findCart(identity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrCartIdentityRequired) {
			return &CartCountResult{}, nil
		}
		return nil, err
	}

	itemsCount, totalQuantity, err := s.cartRepo.CountItems(cart.ID)
	if err != nil {
		return nil, err
	}

	cartID := cart.ID
	return &CartCountResult{
		CartID:        &cartID,
		ItemsCount:    itemsCount,
		TotalQuantity: totalQuantity,
	}, nil
}

func (s *cartService) resolveProductAndVariant(productID uuid.UUID, variantID *uuid.UUID) (*model.Product, *model.ProductVariant, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found for cart operation", map[string]interface{}{
				"product_id": productID,
			})
			return nil, nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product for cart operation", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, nil, err
	}
	if !product.IsActive {
		return nil, nil, ErrProductNotFound
	}

	var variant *model.ProductVariant
	if variantID != nil {
		v, err := s.productRepo.FindVariantByID(*variantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, ErrVariantNotFound
			}
			logger.Error("Failed to fetch variant for cart operation", err, map[string]interface{}{
				"variant_id": *variantID,
			})
			return nil, nil, err
		}
		if v.ProductID != productID || !v.IsActive {
			logger.Warn("Variant does not belong to product or is inactive", map[string]interface{}{
				"product_id": productID,
				"variant_id": *variantID,
			})
			return nil, nil, ErrVariantNotFound
		}
		variant = v
	}

	return product, variant, nil
}

func findCartTx(repo repository.CartRepository, identity CartIdentity) (*model.Cart, error) {
	if !identity.valid() {
		return nil, ErrCartNotFound
	}

	var cart *model.Cart
	var err error
	if identity.UserID != nil {
		cart, err = repo.FindCartByUserID(*identity.UserID)
	} else {
		cart, err = repo.FindCartBySessionID(identity.SessionID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return cart, nil
}

func identityOwnsCart(identity CartIdentity, cart *model.Cart) bool {
	if identity.UserID != nil {
		return cart.UserID != nil && *cart.UserID == *identity.UserID
	}
	if identity.SessionID != "" {
		return cart.SessionID != nil && *cart.SessionID == identity.SessionID
	}
	return false
}

func touchCart(tx *gorm.DB, cartID uuid.UUID) error {
	return tx.Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("updated_at", time.Now()).Error
}

