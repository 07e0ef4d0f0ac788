package cache

import (
	"context"
	"time"

	"hitstream/internal/hits/usecase"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	dedupPrefix = "hitstream:dedup:"
	// DefaultDedupTTL bounds how long a hit key is remembered.
	DefaultDedupTTL = 24 * time.Hour
)

// Compile-time interface checks
var (
	_ usecase.DedupGuard = (*RedisDedupGuard)(nil)
	_ usecase.DedupGuard = (*noopDedupGuard)(nil)
)

// RedisDedupGuard remembers recently seen hits with SET NX.
type RedisDedupGuard struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewDedupGuard creates a Redis-backed guard.
// Returns a guard that admits every hit if the Redis client is nil.
func NewDedupGuard(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) usecase.DedupGuard {
	if rdb == nil {
		return &noopDedupGuard{}
	}
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &RedisDedupGuard{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// Claim reports whether key has not been seen within the TTL, marking it
// as seen. Redis errors admit the hit.
func (g *RedisDedupGuard) Claim(ctx context.Context, key string) (bool, error) {
	fresh, err := g.rdb.SetNX(ctx, dedupPrefix+key, 1, g.ttl).Result()
	if err != nil {
		g.logger.Warn("dedup check failed, admitting hit", zap.String("key", key), zap.Error(err))
		return true, nil
	}
	return fresh, nil
}

// Release deletes key.
func (g *RedisDedupGuard) Release(ctx context.Context, key string) error {
	return g.rdb.Del(ctx, dedupPrefix+key).Err()
}

// noopDedupGuard is used when Redis is not configured.
type noopDedupGuard struct{}

func (noopDedupGuard) Claim(context.Context, string) (bool, error) {
	return true, nil
}

func (noopDedupGuard) Release(context.Context, string) error {
	return nil
}
