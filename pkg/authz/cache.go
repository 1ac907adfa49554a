package authz

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// DefaultCacheTTL bounds how stale an effective permission set may get when
// no explicit invalidation happens.
const DefaultCacheTTL = 15 * time.Minute

// PermissionCache memoizes effective permission sets per user. It is a
// process-wide keyed store with bulk invalidation only: there is no
// per-entry dependency tracking, so readers may observe at most one cache
// generation of staleness, bounded by the TTL or an InvalidateAll call.
type PermissionCache interface {
	Get(ctx context.Context, userID uuid.UUID) ([]string, bool)
	Set(ctx context.Context, userID uuid.UUID, permissions []string)
	// InvalidateAll drops every entry. Called on any permission, role or
	// policy mutation.
	InvalidateAll(ctx context.Context) error
}

// MemoryCache is the in-process PermissionCache backed by go-cache, which
// provides per-entry TTL expiry and a native flush.
type MemoryCache struct {
	inner *gocache.Cache
}

// Ensure MemoryCache implements PermissionCache.
var _ PermissionCache = (*MemoryCache)(nil)

// NewMemoryCache creates an in-memory permission cache. A non-positive ttl
// falls back to DefaultCacheTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{inner: gocache.New(ttl, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, userID uuid.UUID) ([]string, bool) {
	v, ok := c.inner.Get(userID.String())
	if !ok {
		return nil, false
	}
	perms, ok := v.([]string)
	return perms, ok
}

func (c *MemoryCache) Set(_ context.Context, userID uuid.UUID, permissions []string) {
	c.inner.SetDefault(userID.String(), permissions)
}

func (c *MemoryCache) InvalidateAll(_ context.Context) error {
	c.inner.Flush()
	return nil
}
