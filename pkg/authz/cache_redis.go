package authz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisGenerationKey = "authz:permissions:generation"
	redisEntryPrefix   = "authz:permissions"
)

// RedisCache is a PermissionCache shared across instances. Wholesale
// invalidation is O(1): entries are namespaced by a generation counter and
// InvalidateAll just increments it, leaving stale generations to expire via
// their TTLs instead of scanning the keyspace.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Ensure RedisCache implements PermissionCache.
var _ PermissionCache = (*RedisCache)(nil)

// NewRedisCache creates a Redis-backed permission cache. A non-positive ttl
// falls back to DefaultCacheTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) generation(ctx context.Context) int64 {
	gen, err := c.client.Get(ctx, redisGenerationKey).Int64()
	if err != nil {
		return 0
	}
	return gen
}

func (c *RedisCache) key(gen int64, userID uuid.UUID) string {
	return fmt.Sprintf("%s:%d:%s", redisEntryPrefix, gen, userID)
}

func (c *RedisCache) Get(ctx context.Context, userID uuid.UUID) ([]string, bool) {
	perms, err := c.client.SMembers(ctx, c.key(c.generation(ctx), userID)).Result()
	if err != nil || len(perms) == 0 {
		return nil, false
	}
	// The sentinel marks a cached-but-empty permission set.
	if len(perms) == 1 && perms[0] == emptySetSentinel {
		return []string{}, true
	}
	return perms, true
}

// emptySetSentinel lets an empty permission set be cached, since Redis
// cannot hold an empty set.
const emptySetSentinel = "\x00none"

func (c *RedisCache) Set(ctx context.Context, userID uuid.UUID, permissions []string) {
	key := c.key(c.generation(ctx), userID)
	members := make([]any, 0, len(permissions)+1)
	for _, p := range permissions {
		members = append(members, p)
	}
	if len(members) == 0 {
		members = append(members, emptySetSentinel)
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, c.ttl)
	// Cache writes are best-effort; a failed pipeline only costs a re-read.
	_, _ = pipe.Exec(ctx)
}

func (c *RedisCache) InvalidateAll(ctx context.Context) error {
	return c.client.Incr(ctx, redisGenerationKey).Err()
}
