package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/malvarez-dev/tienda-backend/config"
	"github.com/malvarez-dev/tienda-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes the Redis connection.
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance.
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection.
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// TokenStore records revoked token identifiers until their natural expiry.
type TokenStore struct {
	client *redis.Client
}

// NewTokenStore builds a TokenStore on the given Redis client.
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

func revokedKey(jti string) string {
	return fmt.Sprintf("revoked:%s", jti)
}

// Revoke marks a token identifier as revoked for the remaining token lifetime.
func (s *TokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	logger.Debug("Revoking token", map[string]interface{}{
		"ttl": ttl.String(),
	})

	if err := s.client.Set(ctx, revokedKey(jti), "revoked", ttl).Err(); err != nil {
		logger.Error("Failed to revoke token", err, nil)
		return err
	}
	return nil
}

// IsRevoked reports whether a token identifier has been revoked.
func (s *TokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	val, err := s.client.Get(ctx, revokedKey(jti)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token revocation", err, nil)
		return false, err
	}
	return val == "revoked", nil
}
