package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/malvarez-dev/tienda-backend/internal/app/repository"
	"github.com/malvarez-dev/tienda-backend/internal/db"
	"github.com/malvarez-dev/tienda-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRevoker is an in-memory TokenRevoker for tests.
type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newMemoryRevoker() *memoryRevoker {
	return &memoryRevoker{revoked: make(map[string]bool)}
}

func (m *memoryRevoker) Revoke(_ context.Context, jti string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = true
	return nil
}

func (m *memoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[jti], nil
}

func setupAuthServiceTest(t *testing.T) (AuthService, *memoryRevoker) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	revoker := newMemoryRevoker()
	authService := NewAuthService(userRepo, revoker, "test-secret", time.Hour, 24*time.Hour)
	return authService, revoker
}

func TestAuthService_Register_Success(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, tokens, err := authService.Register("new@example.com", "Password1!", "New", "User", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.True(t, user.IsActive)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	// The password never survives in clear text
	assert.NotEqual(t, "Password1!", user.PasswordHash)
}

func TestAuthService_Register_StoresDateOfBirth(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	dob := time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC)
	user, _, err := authService.Register("dob@example.com", "Password1!", "Dob", "User", "", &dob)
	require.NoError(t, err)

	fetched, err := authService.GetUserByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.DateOfBirth)
	assert.True(t, fetched.DateOfBirth.Equal(dob))
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Register("dup@example.com", "Password1!", "First", "User", "", nil)
	require.NoError(t, err)

	_, _, err = authService.Register("dup@example.com", "Password1!", "Second", "User", "", nil)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestAuthService_Login_Success(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Register("login@example.com", "Password1!", "Login", "User", "", nil)
	require.NoError(t, err)

	user, tokens, err := authService.Login("login@example.com", "Password1!")
	require.NoError(t, err)
	assert.Equal(t, "login@example.com", user.Email)
	assert.NotEmpty(t, tokens.AccessToken)

	claims, err := util.ValidateToken(tokens.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, util.TokenTypeAccess, claims.Type)
	assert.NotEmpty(t, claims.ID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Register("login@example.com", "Password1!", "Login", "User", "", nil)
	require.NoError(t, err)

	_, _, err = authService.Login("login@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, _, err := authService.Login("ghost@example.com", "Password1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	authService, revoker := setupAuthServiceTest(t)

	err := authService.Logout(context.Background(), "some-jti", time.Now().Add(time.Hour))
	require.NoError(t, err)

	revoked, err := revoker.IsRevoked(context.Background(), "some-jti")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthService_Logout_ExpiredTokenIsNoop(t *testing.T) {
	authService, revoker := setupAuthServiceTest(t)

	err := authService.Logout(context.Background(), "old-jti", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	revoked, err := revoker.IsRevoked(context.Background(), "old-jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, _, err := authService.Register("profile@example.com", "Password1!", "Old", "Name", "", nil)
	require.NoError(t, err)

	updated, err := authService.UpdateProfile(user.ID, "New", "", "+5491155551234")
	require.NoError(t, err)
	assert.Equal(t, "New", updated.FirstName)
	assert.Equal(t, "Name", updated.LastName)
	assert.Equal(t, "+5491155551234", updated.Phone)
}

func TestAuthService_ChangePassword(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	user, _, err := authService.Register("pw@example.com", "Password1!", "Pw", "User", "", nil)
	require.NoError(t, err)

	err = authService.ChangePassword(user.ID, "wrong", "NewPassword1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = authService.ChangePassword(user.ID, "Password1!", "NewPassword1!")
	require.NoError(t, err)

	_, _, err = authService.Login("pw@example.com", "NewPassword1!")
	assert.NoError(t, err)
}

func TestAuthService_GetUserByID_NotFound(t *testing.T) {
	authService, _ := setupAuthServiceTest(t)

	_, err := authService.GetUserByID(uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
