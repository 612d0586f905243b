package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "portal:revoked:"

// RedisRevoker stores revoked token ids in redis with a TTL matching the token expiry
type RedisRevoker struct {
	Client *redis.Client
}

// NewRedisRevoker connects to redis with short timeouts
func NewRedisRevoker(addr, password string, db int) *RedisRevoker {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &RedisRevoker{Client: client}
}

// Healthy verifies redis connectivity
func (r *RedisRevoker) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// Revoke marks tokenID as revoked until expiresAt
func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.Client.Set(ctx, keyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID is on the denylist
func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := r.Client.Get(ctx, keyPrefix+tokenID).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("check revoked token: %w", err)
	}
}

// Close releases the redis connection pool
func (r *RedisRevoker) Close() error {
	return r.Client.Close()
}
