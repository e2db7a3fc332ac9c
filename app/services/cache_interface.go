package services

import (
	"context"

	"github.com/address-resolver/app/models"
)

// CacheStats summarizes cache effectiveness for the admin surface.
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ICacheService is the outer result cache shared by the HTTP handlers. It
// sits in front of the resolver's own in-process LRU and may be backed by
// memory, Redis or both.
type ICacheService interface {
	// Get returns the cached result list for a key, if present.
	Get(ctx context.Context, key string) ([]models.AddressMatch, bool, error)

	// Set stores a result list under a key.
	Set(ctx context.Context, key string, results []models.AddressMatch) error

	// Delete removes one key.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// GetStats reports hit-rate counters.
	GetStats(ctx context.Context) (*CacheStats, error)

	// Close releases backing connections, if any.
	Close() error
}
