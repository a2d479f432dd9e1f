package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/model"
	"github.com/malvarez-dev/tienda-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartTest(t *testing.T) (*gorm.DB, CartRepository, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewCartRepository(testDB)

	// Create test user
	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
	}
	testDB.Create(user)

	// Create test product
	product := &model.Product{
		Name:          "Test Product",
		Slug:          "test-product",
		SKU:           "SKU-001",
		Price:         1500,
		StockQuantity: 10,
		IsActive:      true,
		ManageStock:   true,
	}
	testDB.Create(product)

	return testDB, repo, user, product
}

func TestCartRepository_CreateCart(t *testing.T) {
	testDB, repo, user, _ := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart := &model.Cart{UserID: &user.ID}
	err := repo.CreateCart(cart)
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, cart.ID)
}

func TestCartRepository_FindCartByUserID(t *testing.T) {
	testDB, repo, user, _ := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart := &model.Cart{UserID: &user.ID}
	require.NoError(t, repo.CreateCart(cart))

	found, err := repo.FindCartByUserID(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, cart.ID, found.ID)

	_, err = repo.FindCartByUserID(uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_FindCartBySessionID(t *testing.T) {
	testDB, repo, _, _ := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	sessionID := uuid.NewString()
	cart := &model.Cart{SessionID: &sessionID}
	require.NoError(t, repo.CreateCart(cart))

	found, err := repo.FindCartBySessionID(sessionID)
	assert.NoError(t, err)
	assert.Equal(t, cart.ID, found.ID)

	_, err = repo.FindCartBySessionID(uuid.NewString())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_CreateItem(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart := &model.Cart{UserID: &user.ID}
	require.NoError(t, repo.CreateCart(cart))

	item := &model.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  2,
	}
	err := repo.CreateItem(item)
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, item.ID)
}

func TestCartRepository_FindItem(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart := &model.Cart{UserID: &user.ID}
	require.NoError(t, repo.CreateCart(cart))

	item := &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 2}
	require.NoError(t, repo.CreateItem(item))

	found, err := repo.FindItem(cart.ID, product.ID, nil)
	assert.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)

	// A variant line is a separate row
	_, err = repo.FindItem(cart.ID, product.ID, &product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_FindItemsByCart(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	other := &model.Product{
		Name:          "Other Product",
		Slug:          "other-product",
		SKU:           "SKU-002",
		Price:         500,
		StockQuantity: 5,
		IsActive:      true,
		ManageStock:   true,
	}
	require.NoError(t, testDB.Create(other).Error)

	cart := &model.Cart{UserID: &user.ID}
	require.NoError(t, repo.CreateCart(cart))

	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1}))
	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: other.ID, Quantity: 3}))

	items, err := repo.FindItemsByCart(cart.ID)
	assert.NoError(t, err)
	assert.Len(t, items, 2)

	// Product data is preloaded for totals
	assert.NotEmpty(t, items[0].Product.Name)
}

func TestCartRepository_UpdateItem(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart := &model.Cart{UserID: &user.ID}
	require.NoError(t, repo.CreateCart(cart))

	item := &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, repo.CreateItem(item))

	item.Quantity = 5
	assert.NoError(t, repo.UpdateItem(item))

	found, err := repo.FindItemByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.Quantity)
}

func TestCartRepository_DeleteItem(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart := &model.Cart{UserID: &user.ID}
	require.NoError(t, repo.CreateCart(cart))

	item := &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, repo.CreateItem(item))

	assert.NoError(t, repo.DeleteItem(item.ID))

	_, err := repo.FindItemByID(item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepository_DeleteItemsByCart(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart := &model.Cart{UserID: &user.ID}
	require.NoError(t, repo.CreateCart(cart))

	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 2}))

	removed, err := repo.DeleteItemsByCart(cart.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	itemsCount, totalQuantity, err := repo.CountItems(cart.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), itemsCount)
	assert.Equal(t, int64(0), totalQuantity)
}

func TestCartRepository_CountItems(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart := &model.Cart{UserID: &user.ID}
	require.NoError(t, repo.CreateCart(cart))

	// One line of quantity 4: one distinct line, four units
	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 4}))

	itemsCount, totalQuantity, err := repo.CountItems(cart.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), itemsCount)
	assert.Equal(t, int64(4), totalQuantity)
}

func TestCartRepository_DeleteCart(t *testing.T) {
	testDB, repo, user, product := setupCartTest(t)
	defer db.CleanupTestDB(testDB)

	cart := &model.Cart{UserID: &user.ID}
	require.NoError(t, repo.CreateCart(cart))
	require.NoError(t, repo.CreateItem(&model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1}))

	assert.NoError(t, repo.DeleteCart(cart.ID))

	_, err := repo.FindCartByID(cart.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
