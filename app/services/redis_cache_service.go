package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/address-resolver/app/models"
)

// RedisCacheService shares resolution results between instances.
type RedisCacheService struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCacheService connects to Redis and verifies the connection.
func NewRedisCacheService(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCacheService{
		client: client,
		logger: logger,
		prefix: "addr_resolver:",
		ttl:    ttl,
	}, nil
}

// Get returns the cached results for a key.
func (r *RedisCacheService) Get(ctx context.Context, key string) ([]models.AddressMatch, bool, error) {
	cacheKey := r.prefix + key

	val, err := r.client.Get(ctx, cacheKey).Result()
	if err == redis.Nil {
		r.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		r.logger.Error("redis get failed", zap.Error(err), zap.String("key", cacheKey))
		return nil, false, err
	}

	var results []models.AddressMatch
	if err := json.Unmarshal([]byte(val), &results); err != nil {
		r.logger.Error("unmarshaling cached results failed", zap.Error(err))
		return nil, false, err
	}

	r.hits.Add(1)
	r.logger.Debug("redis cache hit", zap.String("key", key))
	return results, true, nil
}

// Set stores results under a key with the configured TTL.
func (r *RedisCacheService) Set(ctx context.Context, key string, results []models.AddressMatch) error {
	cacheKey := r.prefix + key

	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshaling cache results: %w", err)
	}
	if err := r.client.Set(ctx, cacheKey, data, r.ttl).Err(); err != nil {
		r.logger.Error("redis set failed", zap.Error(err), zap.String("key", cacheKey))
		return err
	}
	return nil
}

// Delete removes one key.
func (r *RedisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Clear removes every key under the service prefix.
func (r *RedisCacheService) Clear(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, r.prefix+"*").Result()
	if err != nil {
		return fmt.Errorf("listing cache keys: %w", err)
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("deleting cache keys: %w", err)
		}
	}
	r.logger.Info("redis cache cleared", zap.Int("keys_deleted", len(keys)))
	return nil
}

// GetStats reports hit counters and the keyspace size under the prefix.
func (r *RedisCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits, misses := r.hits.Load(), r.misses.Load()
	total := hits + misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	var totalItems int64
	if keys, err := r.client.Keys(ctx, r.prefix+"*").Result(); err == nil {
		totalItems = int64(len(keys))
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: totalItems,
	}, nil
}

// Close closes the Redis connection.
func (r *RedisCacheService) Close() error {
	return r.client.Close()
}
