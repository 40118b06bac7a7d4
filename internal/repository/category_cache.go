package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ErrCacheMiss is returned by a ByteStore for an absent key.
var ErrCacheMiss = errors.New("cache miss")

// ByteStore is the key/value store behind the category cache.
type ByteStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// RedisStore implements ByteStore on a Redis client.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	bs, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return bs, err
}

func (s *RedisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, val, ttl).Err()
}

// CategoryReader loads a category by id.
type CategoryReader interface {
	GetByID(ctx context.Context, id uint64) (model.RoomCategory, error)
}

// CachedCategories is a read-through cache in front of the category
// store.  An entry may be stale for up to the TTL.  Cache errors fall back
// to the store and misses are not cached.
type CachedCategories struct {
	next  CategoryReader
	store ByteStore
	ttl   time.Duration
	pref  string
}

// NewCachedCategories wraps next.  With caching disabled or without a
// store, next is returned as is.
func NewCachedCategories(next CategoryReader, store ByteStore, cfg config.CategoryCacheConfig) CategoryReader {
	if !cfg.Enabled || store == nil {
		return next
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedCategories{next: next, store: store, ttl: ttl, pref: cfg.Prefix}
}

func (c *CachedCategories) key(id uint64) string { return fmt.Sprintf("%s:%d", c.pref, id) }

// GetByID serves the category from the cache or loads and stores it.
func (c *CachedCategories) GetByID(ctx context.Context, id uint64) (model.RoomCategory, error) {
	key := c.key(id)
	if bs, err := c.store.Get(ctx, key); err == nil {
		var cat model.RoomCategory
		if json.Unmarshal(bs, &cat) == nil {
			return cat, nil
		}
	}

	cat, err := c.next.GetByID(ctx, id)
	if err != nil {
		return model.RoomCategory{}, err
	}
	if bs, err := json.Marshal(cat); err == nil {
		_ = c.store.Set(ctx, key, bs, c.ttl)
	}
	return cat, nil
}
