package responses

import (
	"github.com/address-resolver/app/models"
	"github.com/address-resolver/app/services"
	"github.com/address-resolver/internal/resolver"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ResolveAddressResponse answers a single resolution.
type ResolveAddressResponse struct {
	Generation       uint64                `json:"generation"`
	Results          []models.AddressMatch `json:"results"`
	ProcessingTimeMs int64                 `json:"processing_time_ms"`
	CacheHit         bool                  `json:"cache_hit"`
}

// CorrectNameResponse answers a spelling-correction request.
type CorrectNameResponse struct {
	Field       string                `json:"field"`
	Suggestions []resolver.Suggestion `json:"suggestions"`
}

// ValidateAddressResponse answers a validation request.
type ValidateAddressResponse struct {
	Valid   bool                 `json:"valid"`
	Reason  string               `json:"reason,omitempty"`
	Address *models.AddressMatch `json:"address,omitempty"`
}

// SearchResponse answers a partial query.
type SearchResponse struct {
	Records     []models.AddressMatch `json:"records,omitempty"`
	Suggestions []resolver.Suggestion `json:"suggestions,omitempty"`
}

// BatchResolveResponse acknowledges a batch job.
type BatchResolveResponse struct {
	JobID          string `json:"job_id"`
	TotalAddresses int    `json:"total_addresses"`
	Message        string `json:"message"`
}

// JobStatusResponse reports batch job progress.
type JobStatusResponse struct {
	JobID     string  `json:"job_id"`
	Status    string  `json:"status"`
	Progress  float64 `json:"progress"`
	Processed int     `json:"processed"`
	Total     int     `json:"total"`
	Message   string  `json:"message,omitempty"`
}

// JobResultsResponse returns the per-address outcomes of a finished job.
type JobResultsResponse struct {
	JobID   string                 `json:"job_id"`
	Results []services.BatchResult `json:"results"`
}

// ReloadResponse acknowledges a dataset reload.
type ReloadResponse struct {
	Generation uint64 `json:"generation"`
	Records    int    `json:"records"`
	Message    string `json:"message"`
}

// AdminStatsResponse reports operational counters.
type AdminStatsResponse struct {
	Generation    uint64               `json:"generation"`
	DatasetSize   int                  `json:"dataset_size"`
	ResolverCache int                  `json:"resolver_cache_entries"`
	OuterCache    *services.CacheStats `json:"outer_cache,omitempty"`
	UptimeSeconds int64                `json:"uptime_seconds"`
}
