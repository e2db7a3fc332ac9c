package services

import (
	"context"
	"sync"
	"time"

	"github.com/address-resolver/app/models"
)

// MemoryCacheService keeps results in-process with a TTL. Used standalone
// in single-instance deployments and as the L1 tier of the hybrid cache.
type MemoryCacheService struct {
	cache      map[string][]models.AddressMatch
	timestamps map[string]time.Time
	mu         sync.RWMutex
	ttl        time.Duration

	hits   int64
	misses int64
}

// NewMemoryCacheService creates an in-memory cache with the given TTL.
func NewMemoryCacheService(ttl time.Duration) *MemoryCacheService {
	return &MemoryCacheService{
		cache:      make(map[string][]models.AddressMatch),
		timestamps: make(map[string]time.Time),
		ttl:        ttl,
	}
}

// Get returns the cached results for a key if present and not expired.
func (m *MemoryCacheService) Get(ctx context.Context, key string) ([]models.AddressMatch, bool, error) {
	m.mu.RLock()
	results, exists := m.cache[key]
	expired := exists && m.isExpired(key)
	m.mu.RUnlock()

	if !exists || expired {
		m.mu.Lock()
		if expired {
			delete(m.cache, key)
			delete(m.timestamps, key)
		}
		m.misses++
		m.mu.Unlock()
		return nil, false, nil
	}

	m.mu.Lock()
	m.hits++
	m.mu.Unlock()
	return results, true, nil
}

// Set stores results under a key.
func (m *MemoryCacheService) Set(ctx context.Context, key string, results []models.AddressMatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[key] = results
	m.timestamps[key] = time.Now()
	return nil
}

// Delete removes one key.
func (m *MemoryCacheService) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, key)
	delete(m.timestamps, key)
	return nil
}

// Clear removes every entry.
func (m *MemoryCacheService) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string][]models.AddressMatch)
	m.timestamps = make(map[string]time.Time)
	return nil
}

// GetStats reports hit counters and the live item count.
func (m *MemoryCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := m.hits + m.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(m.hits) / float64(total)
	}
	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  m.hits,
		TotalMiss:  m.misses,
		TotalItems: int64(len(m.cache)),
	}, nil
}

// CleanupExpired drops expired entries. Called by the background sweeper.
func (m *MemoryCacheService) CleanupExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.cache {
		if m.isExpired(key) {
			delete(m.cache, key)
			delete(m.timestamps, key)
		}
	}
}

// StartCleanupWorker sweeps expired entries on an interval.
func (m *MemoryCacheService) StartCleanupWorker(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			m.CleanupExpired()
		}
	}()
}

// isExpired must be called with the lock held.
func (m *MemoryCacheService) isExpired(key string) bool {
	ts, ok := m.timestamps[key]
	if !ok {
		return true
	}
	return time.Since(ts) > m.ttl
}

// Close is a no-op for the in-memory cache.
func (m *MemoryCacheService) Close() error { return nil }
