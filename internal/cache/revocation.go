package cache

import (
	"context"
	"errors"
	"time"

	"agora/internal/observability"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:"

// ErrNoRedis is returned when a revocation is requested without a Redis client.
var ErrNoRedis = errors.New("redis is not configured")

// RevokeToken blacklists a token ID until it would have expired anyway.
func RevokeToken(ctx context.Context, rdb *redis.Client, jti string, expiresAt time.Time) error {
	if rdb == nil {
		return ErrNoRedis
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "revoke_token")
	defer span.End()
	if err := rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err(); err != nil {
		observability.RecordErrorInContext(ctx, err)
		return err
	}
	return nil
}

// IsTokenRevoked reports whether the token ID is blacklisted.
// Without Redis no token is considered revoked.
func IsTokenRevoked(ctx context.Context, rdb *redis.Client, jti string) (bool, error) {
	if rdb == nil || jti == "" {
		return false, nil
	}
	n, err := rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RevocationChecker adapts IsTokenRevoked to the auth middleware signature.
func RevocationChecker(rdb *redis.Client) func(context.Context, string) (bool, error) {
	return func(ctx context.Context, jti string) (bool, error) {
		return IsTokenRevoked(ctx, rdb, jti)
	}
}
