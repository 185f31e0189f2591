package config

import (
	"strconv"
	"time"
)

// CacheConfig configures the Redis read-through cache. An empty Addr disables it.
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Enabled reports whether a Redis address was configured.
func (c CacheConfig) Enabled() bool {
	return c.Addr != ""
}

func loadCache() CacheConfig {
	return CacheConfig{
		Addr:     envOrDefault(envRedisAddr, ""),
		Password: envOrDefault(envRedisPassword, ""),
		DB:       redisDB(),
		TTL:      durationEnvOrDefault(envCacheTTL, defaultCacheTTL),
	}
}

// redisDB accepts 0, which intEnvOrDefault treats as unset.
func redisDB() int {
	return parsedEnvOrDefault(envRedisDB, 0, func(raw string) (int, bool) {
		n, err := strconv.Atoi(raw)
		return n, err == nil && n >= 0
	})
}
