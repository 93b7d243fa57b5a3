// internal/services/token_blacklist.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sealtrace/sealtrace-backend/internal/config"
)

// TokenBlacklist invalidates access tokens before their natural expiry,
// backed by Redis. When Redis is disabled the blacklist is inert: logout
// still succeeds and tokens simply age out.
type TokenBlacklist struct {
	client *redis.Client
}

func NewTokenBlacklist(cfg *config.Config) *TokenBlacklist {
	if !cfg.Redis.Enabled {
		return &TokenBlacklist{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis unreachable, token blacklist disabled")
		return &TokenBlacklist{}
	}

	return &TokenBlacklist{client: client}
}

// Revoke records a token ID until the token would have expired anyway.
func (b *TokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if b.client == nil || jti == "" {
		return nil
	}
	if ttl <= 0 {
		return nil
	}

	if err := b.client.Set(ctx, blacklistKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	return nil
}

// IsRevoked reports whether a token ID has been revoked. Redis errors fail
// open: an unreachable blacklist must not lock every user out.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, jti string) bool {
	if b.client == nil || jti == "" {
		return false
	}

	exists, err := b.client.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		logrus.WithError(err).Warn("Token blacklist check failed")
		return false
	}

	return exists > 0
}

func (b *TokenBlacklist) Close() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

func blacklistKey(jti string) string {
	return "blacklist:token:" + jti
}
