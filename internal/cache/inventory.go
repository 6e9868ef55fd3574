package cache

import (
	"context"
	"time"
)

const (
	TrendingKey        = "trending:hashtags"
	RevokedTokenPrefix = "revoked:jti:"
)

const (
	TrendingTTL = 5 * time.Minute
)

// RevokedTokenKey is set for a logged-out token until the token would expire.
func RevokedTokenKey(jti string) string {
	return RevokedTokenPrefix + jti
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateTrending(ctx context.Context) {
	Invalidate(ctx, TrendingKey)
}
