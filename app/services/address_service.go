package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/address-resolver/app/models"
	"github.com/address-resolver/app/requests"
	"github.com/address-resolver/helpers/utils"
	"github.com/address-resolver/internal/dataset"
	"github.com/address-resolver/internal/index"
	"github.com/address-resolver/internal/resolver"
)

// AddressService wraps the resolution engine for the HTTP layer: option
// handling, result shaping, dataset reload and batch jobs.
type AddressService struct {
	resolver  *resolver.Resolver
	loader    *dataset.Loader
	logger    *zap.Logger
	startTime time.Time

	mu         sync.RWMutex
	jobs       map[string]*JobStatus
	jobResults map[string][]BatchResult
}

// Batch job lifecycle states.
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
)

// JobStatus tracks one batch job.
type JobStatus struct {
	JobID     string
	Status    string
	Progress  float64
	Processed int
	Total     int
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BatchResult is the outcome for one address of a batch job.
type BatchResult struct {
	Line1   string                `json:"line1"`
	Line2   string                `json:"line2"`
	Matches []models.AddressMatch `json:"matches,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// ErrJobNotFound is returned for unknown batch job ids.
var ErrJobNotFound = errors.New("job not found")

// NewAddressService creates the service over a running resolver. The
// loader is kept for admin-triggered reloads and may be nil when the
// dataset was loaded from another source.
func NewAddressService(res *resolver.Resolver, loader *dataset.Loader, logger *zap.Logger) *AddressService {
	return &AddressService{
		resolver:   res,
		loader:     loader,
		logger:     logger,
		startTime:  time.Now(),
		jobs:       make(map[string]*JobStatus),
		jobResults: make(map[string][]BatchResult),
	}
}

// Resolve runs one address through the engine and shapes the results.
func (as *AddressService) Resolve(ctx context.Context, line1, line2 string, opts requests.ResolveOptions) ([]models.AddressMatch, error) {
	candidates, err := as.resolver.Resolve(ctx, line1, line2)
	if err != nil {
		return nil, err
	}

	houseNumber := 0
	if parsed := as.resolver.Parse(line1, line2); parsed.HouseNumber.Present {
		houseNumber = parsed.HouseNumber.Value
	}

	matches := make([]models.AddressMatch, 0, len(candidates))
	for _, c := range candidates {
		if opts.MinScore > 0 && c.Score < opts.MinScore {
			continue
		}
		matches = append(matches, models.FromCandidate(c, houseNumber))
		if opts.MaxResults > 0 && len(matches) >= opts.MaxResults {
			break
		}
	}
	if len(matches) == 0 {
		return nil, resolver.ErrNoMatch
	}
	return matches, nil
}

// CorrectName suggests canonical spellings. The field defaults to street.
func (as *AddressService) CorrectName(ctx context.Context, text, field, postalCode, cityHint string, limit int) ([]resolver.Suggestion, error) {
	f := index.FieldStreet
	if field == "city" {
		f = index.FieldCity
	}
	return as.resolver.Correct(ctx, text, f, postalCode, cityHint, limit)
}

// Validate checks an address without fuzzy recovery.
func (as *AddressService) Validate(ctx context.Context, line1, line2 string) (resolver.Validation, error) {
	return as.resolver.Validate(ctx, line1, line2)
}

// Search answers a partial query with either records or suggestions.
func (as *AddressService) Search(ctx context.Context, query string, limit int) ([]models.AddressMatch, []resolver.Suggestion, error) {
	res, err := as.resolver.Search(ctx, query, limit)
	if err != nil {
		return nil, nil, err
	}
	matches := make([]models.AddressMatch, 0, len(res.Records))
	for _, rec := range res.Records {
		matches = append(matches, models.FromRecord(rec))
	}
	return matches, res.Suggestions, nil
}

// ReloadDataset re-reads the reference files and swaps the new dataset in.
// The swap is atomic; a load failure leaves the running dataset untouched.
func (as *AddressService) ReloadDataset(ctx context.Context) (uint64, int, error) {
	if as.loader == nil {
		return 0, 0, errors.New("no dataset directory configured")
	}
	rows, err := as.loader.LoadRows()
	if err != nil {
		return 0, 0, fmt.Errorf("reading reference files: %w", err)
	}
	store, err := dataset.Load(rows)
	if err != nil {
		return 0, 0, err
	}
	as.resolver.Reload(store)
	return store.Generation(), store.Len(), nil
}

// Generation returns the active dataset generation.
func (as *AddressService) Generation() uint64 { return as.resolver.Generation() }

// DatasetSize returns the active record count.
func (as *AddressService) DatasetSize() int { return as.resolver.DatasetSize() }

// ResolverCacheLen returns the engine-level cache entry count.
func (as *AddressService) ResolverCacheLen() int { return as.resolver.CacheLen() }

// UptimeSeconds returns seconds since the service started.
func (as *AddressService) UptimeSeconds() int64 {
	return int64(time.Since(as.startTime).Seconds())
}

// StartBatchJob registers a batch job and processes it in the background.
func (as *AddressService) StartBatchJob(addresses []requests.AddressLines, opts requests.ResolveOptions) string {
	jobID := utils.GenerateUUID()
	now := time.Now()

	as.mu.Lock()
	as.jobs[jobID] = &JobStatus{
		JobID:     jobID,
		Status:    JobStatusPending,
		Total:     len(addresses),
		CreatedAt: now,
		UpdatedAt: now,
	}
	as.mu.Unlock()

	go as.processBatchJob(jobID, addresses, opts)
	return jobID
}

func (as *AddressService) processBatchJob(jobID string, addresses []requests.AddressLines, opts requests.ResolveOptions) {
	as.updateJob(jobID, func(j *JobStatus) { j.Status = JobStatusRunning })
	as.logger.Info("batch job started", zap.String("job_id", jobID), zap.Int("total", len(addresses)))

	results := make([]BatchResult, 0, len(addresses))
	for i, addr := range addresses {
		res := BatchResult{Line1: addr.Line1, Line2: addr.Line2}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		matches, err := as.Resolve(ctx, addr.Line1, addr.Line2, opts)
		cancel()

		if err != nil {
			res.Error = err.Error()
		} else {
			res.Matches = matches
		}
		results = append(results, res)

		processed := i + 1
		as.updateJob(jobID, func(j *JobStatus) {
			j.Processed = processed
			j.Progress = float64(processed) / float64(len(addresses))
		})
	}

	as.mu.Lock()
	as.jobResults[jobID] = results
	as.mu.Unlock()

	as.updateJob(jobID, func(j *JobStatus) {
		j.Status = JobStatusDone
		j.Progress = 1
		j.Message = fmt.Sprintf("%d addresses processed", len(results))
	})
	as.logger.Info("batch job finished", zap.String("job_id", jobID))
}

func (as *AddressService) updateJob(jobID string, apply func(*JobStatus)) {
	as.mu.Lock()
	defer as.mu.Unlock()
	if j, ok := as.jobs[jobID]; ok {
		apply(j)
		j.UpdatedAt = time.Now()
	}
}

// GetJobStatus returns the status of a batch job.
func (as *AddressService) GetJobStatus(jobID string) (*JobStatus, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	j, ok := as.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	copied := *j
	return &copied, nil
}

// GetJobResults returns the per-address outcomes of a finished job.
func (as *AddressService) GetJobResults(jobID string) ([]BatchResult, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	j, ok := as.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	if j.Status != JobStatusDone {
		return nil, fmt.Errorf("job %s is %s", jobID, j.Status)
	}
	return as.jobResults[jobID], nil
}
