package config

import "time"

// CategoryCacheConfig defines settings for the Redis category cache.
// When Enabled is false or no Redis client is configured, categories are
// read from MySQL on every request.  Prefix namespaces the cache keys.
type CategoryCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCategoryCacheConfig reads CATEGORY_CACHE_* variables.
func LoadCategoryCacheConfig() CategoryCacheConfig {
	return CategoryCacheConfig{
		Enabled: envBool("CATEGORY_CACHE_ENABLED", true),
		TTL:     envDur("CATEGORY_CACHE_TTL", 5*time.Minute),
		Prefix:  envStr("CATEGORY_CACHE_PREFIX", "category"),
	}
}
