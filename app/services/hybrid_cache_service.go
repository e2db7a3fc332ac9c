package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/address-resolver/app/models"
)

// HybridCacheService layers the in-process memory cache (L1) over Redis
// (L2). L1 answers repeat queries on the same instance without a network
// round trip; L2 shares results across instances and survives restarts.
type HybridCacheService struct {
	memory *MemoryCacheService
	redis  *RedisCacheService
	logger *zap.Logger
}

// NewHybridCacheService combines a memory cache and a Redis cache.
func NewHybridCacheService(memory *MemoryCacheService, redis *RedisCacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{memory: memory, redis: redis, logger: logger}
}

// Get tries L1 first, then L2, backfilling L1 on an L2 hit.
func (h *HybridCacheService) Get(ctx context.Context, key string) ([]models.AddressMatch, bool, error) {
	results, found, err := h.memory.Get(ctx, key)
	if err == nil && found {
		h.logger.Debug("l1 cache hit", zap.String("key", key))
		return results, true, nil
	}

	results, found, err = h.redis.Get(ctx, key)
	if err != nil {
		// Redis trouble must not fail the request; resolve instead.
		h.logger.Warn("l2 cache unavailable", zap.Error(err))
		return nil, false, nil
	}
	if !found {
		return nil, false, nil
	}

	if err := h.memory.Set(ctx, key, results); err != nil {
		h.logger.Warn("l1 backfill failed", zap.Error(err), zap.String("key", key))
	}
	h.logger.Debug("l2 cache hit", zap.String("key", key))
	return results, true, nil
}

// Set writes both tiers. The L2 write runs in the background so the
// response is not held up by Redis latency.
func (h *HybridCacheService) Set(ctx context.Context, key string, results []models.AddressMatch) error {
	if err := h.memory.Set(ctx, key, results); err != nil {
		return err
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.redis.Set(bgCtx, key, results); err != nil {
			h.logger.Warn("l2 write failed", zap.Error(err), zap.String("key", key))
		}
	}()
	return nil
}

// Delete removes the key from both tiers.
func (h *HybridCacheService) Delete(ctx context.Context, key string) error {
	memErr := h.memory.Delete(ctx, key)
	redisErr := h.redis.Delete(ctx, key)
	if memErr != nil || redisErr != nil {
		return fmt.Errorf("hybrid delete: memory=%v redis=%v", memErr, redisErr)
	}
	return nil
}

// Clear empties both tiers.
func (h *HybridCacheService) Clear(ctx context.Context) error {
	memErr := h.memory.Clear(ctx)
	redisErr := h.redis.Clear(ctx)
	if memErr != nil || redisErr != nil {
		return fmt.Errorf("hybrid clear: memory=%v redis=%v", memErr, redisErr)
	}
	h.logger.Info("hybrid cache cleared")
	return nil
}

// GetStats combines counters from both tiers.
func (h *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	memStats, memErr := h.memory.GetStats(ctx)
	redisStats, redisErr := h.redis.GetStats(ctx)

	if memErr != nil && redisErr != nil {
		return nil, fmt.Errorf("both cache tiers failed: %v, %v", memErr, redisErr)
	}
	if redisErr != nil {
		return memStats, nil
	}
	if memErr != nil {
		return redisStats, nil
	}

	combined := &CacheStats{
		TotalHits:  memStats.TotalHits + redisStats.TotalHits,
		TotalMiss:  memStats.TotalMiss + redisStats.TotalMiss,
		TotalItems: memStats.TotalItems + redisStats.TotalItems,
	}
	if total := combined.TotalHits + combined.TotalMiss; total > 0 {
		combined.HitRate = float64(combined.TotalHits) / float64(total)
	}
	return combined, nil
}

// Close closes both tiers.
func (h *HybridCacheService) Close() error {
	memErr := h.memory.Close()
	redisErr := h.redis.Close()
	if memErr != nil || redisErr != nil {
		return fmt.Errorf("hybrid close: memory=%v redis=%v", memErr, redisErr)
	}
	return nil
}
