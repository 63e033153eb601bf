package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	dom "github.com/sylvain-bouchard/capture-api/internal/domain"
)

const keyUserList = "users:list"

// UserCache caches the user list in Redis with invalidate-on-write.
type UserCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewUserCache returns a new UserCache.
func NewUserCache(rdb *redis.Client, ttl time.Duration) *UserCache {
	return &UserCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list, or nil on miss.
func (c *UserCache) GetList(ctx context.Context) ([]dom.User, error) {
	b, err := c.rdb.Get(ctx, keyUserList).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.User
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the list in cache.
func (c *UserCache) SetList(ctx context.Context, list []dom.User) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyUserList, b, c.ttl).Err()
}

// Invalidate removes the cached list (called after create/delete).
func (c *UserCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, keyUserList).Err()
}
