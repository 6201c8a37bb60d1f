// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"basketly/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client (slot catalog cache).
	CacheClient *redis.Client
	// SelectionClient is the dedicated client for persisted slot selections.
	SelectionClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB, "Cache")
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitSelectionCache initializes the Redis client that persists slot selections.
func InitSelectionCache() {
	SelectionClient = newRedisClient(config.AppConfig.RedisSelectionDB, "Selection")
}

// GetSelectionClient returns the Redis client for persisted slot selections.
func GetSelectionClient() *redis.Client {
	if SelectionClient == nil {
		InitSelectionCache()
	}
	return SelectionClient
}

// InitRedis initializes every Redis client used by the service.
func InitRedis() {
	GetCacheClient()
	GetSelectionClient()
}
