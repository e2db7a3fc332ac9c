// Package resolver orchestrates parsing, candidate retrieval, fuzzy
// scoring, structural validation and ranking of Dutch postal addresses
// against a loaded reference dataset. Resolution is pure per call: every
// stage reads shared immutable structures and allocates only request-local
// state, so calls run fully in parallel. The result cache is the single
// mutable structure on the read path.
package resolver

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/address-resolver/internal/dataset"
	"github.com/address-resolver/internal/index"
	"github.com/address-resolver/internal/match"
	"github.com/address-resolver/internal/normalizer"
	"github.com/address-resolver/internal/parser"
)

// Config carries the engine tuning parameters. Zero values select the
// documented defaults; the constants are reasonable defaults, not contracts.
type Config struct {
	Threshold        float64 // per-field acceptance threshold, default 0.72
	StreetWeight     float64 // default 0.5
	CityWeight       float64 // default 0.3
	StructuredWeight float64 // default 0.2
	MaxResults       int     // ranked list cap, default 10
	MaxCandidates    int     // per-field TextIndex retrieval cap, default 200
	CacheSize        int     // LRU capacity, default DefaultCacheSize
	BlockLen         int     // TextIndex blocking-key width, default 4
}

func (c Config) withDefaults() Config {
	if c.Threshold <= 0 {
		c.Threshold = match.DefaultThreshold
	}
	if c.StreetWeight <= 0 {
		c.StreetWeight = 0.5
	}
	if c.CityWeight <= 0 {
		c.CityWeight = 0.3
	}
	if c.StructuredWeight <= 0 {
		c.StructuredWeight = 0.2
	}
	if c.MaxResults <= 0 {
		c.MaxResults = 10
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = 200
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	if c.BlockLen <= 0 {
		c.BlockLen = index.DefaultBlockLen
	}
	return c
}

// MatchCandidate is one validated, scored result.
type MatchCandidate struct {
	Record        *dataset.Record `json:"record"`
	Score         float64         `json:"score"`
	MatchedFields []string        `json:"matched_fields"`
}

// Stage enumerates the pipeline states. Each transition is a pure function
// on the request-local pipeline value, which keeps the stages independently
// testable and makes abandoning a resolution between stages safe.
type Stage uint8

const (
	StageParsed Stage = iota
	StageCandidatesGathered
	StageScored
	StageValidated
	StageRanked
)

// snapshot pairs a dataset generation with the index built over it. Swapped
// atomically on reload so in-flight resolutions keep a consistent view.
type snapshot struct {
	store *dataset.Store
	index *index.TextIndex
}

// Resolver owns the pipeline and the result cache.
type Resolver struct {
	cfg     Config
	parser  *parser.Parser
	matcher *match.Matcher
	cache   *resultCache
	logger  *zap.Logger
	current atomic.Pointer[snapshot]
}

// New builds a resolver over a loaded store.
func New(store *dataset.Store, cfg Config, logger *zap.Logger) (*Resolver, error) {
	cfg = cfg.withDefaults()
	cache, err := newResultCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	r := &Resolver{
		cfg:     cfg,
		parser:  parser.New(),
		matcher: match.New(cfg.Threshold),
		cache:   cache,
		logger:  logger,
	}
	r.Reload(store)
	return r, nil
}

// Reload swaps in a freshly loaded store and rebuilds the index. The cache
// is kept: its keys embed the store generation, so entries of the previous
// generation become unreachable and age out under LRU pressure.
func (r *Resolver) Reload(store *dataset.Store) {
	snap := &snapshot{store: store, index: index.New(store, r.cfg.BlockLen)}
	r.current.Store(snap)
	r.logger.Info("dataset generation active",
		zap.Uint64("generation", store.Generation()),
		zap.Int("records", store.Len()),
		zap.Int("streets", snap.index.Size(index.FieldStreet)),
		zap.Int("cities", snap.index.Size(index.FieldCity)))
}

// Generation returns the active dataset generation.
func (r *Resolver) Generation() uint64 {
	return r.current.Load().store.Generation()
}

// DatasetSize returns the number of records in the active store.
func (r *Resolver) DatasetSize() int {
	return r.current.Load().store.Len()
}

// CacheLen returns the number of live cache entries.
func (r *Resolver) CacheLen() int {
	return r.cache.len()
}

// pipeline is the request-local state threaded through the stages.
type pipeline struct {
	stage  Stage
	snap   *snapshot
	parsed *parser.ParsedAddress

	streetQuery string // NormalizedKey of the street text, "" if absent
	cityQuery   string

	streetCands []string // ordered candidate keys from the TextIndex
	cityCands   []string

	streetScores map[string]float64 // surviving keys only (>= threshold)
	cityScores   map[string]float64

	validated []scoredRecord
	ranked    []MatchCandidate
}

type scoredRecord struct {
	rec         *dataset.Record
	streetKey   string
	streetScore float64
	cityScore   float64
	matched     []string
}

// Resolve runs the full pipeline on a two-line address. The cache
// intercepts before parsing and after ranking.
func (r *Resolver) Resolve(ctx context.Context, line1, line2 string) ([]MatchCandidate, error) {
	start := time.Now()
	snap := r.current.Load()

	key := r.cache.key(line1, line2, snap.store.Generation())
	if cached, ok := r.cache.get(key); ok {
		r.logger.Debug("resolution cache hit", zap.String("key", key))
		return cached, nil
	}

	p := r.stageParse(snap, line1, line2)
	p, err := r.stageGather(p)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p = r.stageScore(p)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p = r.stageValidate(p)
	p = r.stageRank(p)

	if len(p.ranked) == 0 {
		return nil, ErrNoMatch
	}

	r.cache.put(key, p.ranked)
	r.logger.Debug("address resolved",
		zap.Int("results", len(p.ranked)),
		zap.Float64("top_score", p.ranked[0].Score),
		zap.Duration("duration", time.Since(start)))
	return p.ranked, nil
}

// Parse exposes the pipeline's parser so callers can inspect the
// structured fields of an input, e.g. to format result lines with the
// queried house number.
func (r *Resolver) Parse(line1, line2 string) *parser.ParsedAddress {
	return r.parser.Parse(line1, line2)
}

// stageParse feeds the raw lines through the parser.
func (r *Resolver) stageParse(snap *snapshot, line1, line2 string) *pipeline {
	p := &pipeline{stage: StageParsed, snap: snap, parsed: r.parser.Parse(line1, line2)}
	if p.parsed.Street.Present {
		p.streetQuery = normalizer.NormalizeName(p.parsed.Street.Value)
	}
	if p.parsed.City.Present {
		p.cityQuery = normalizer.NormalizeName(p.parsed.City.Value)
	}
	return p
}

// stageGather retrieves candidate keys per present textual field. With no
// street and no city text there is nothing to search on.
func (r *Resolver) stageGather(p *pipeline) (*pipeline, error) {
	if p.streetQuery == "" && p.cityQuery == "" {
		return p, ErrInsufficientInput
	}
	if p.streetQuery != "" {
		p.streetCands = p.snap.index.CandidatesFor(p.streetQuery, index.FieldStreet, r.cfg.MaxCandidates)
	}
	if p.cityQuery != "" {
		p.cityCands = p.snap.index.CandidatesFor(p.cityQuery, index.FieldCity, r.cfg.MaxCandidates)
	}
	p.stage = StageCandidatesGathered
	return p, nil
}

// stageScore scores every gathered candidate against its query field and
// discards anything below the threshold.
func (r *Resolver) stageScore(p *pipeline) *pipeline {
	p.streetScores = r.scoreKeys(p.streetQuery, p.streetCands)
	p.cityScores = r.scoreKeys(p.cityQuery, p.cityCands)
	p.stage = StageScored
	return p
}

func (r *Resolver) scoreKeys(query string, cands []string) map[string]float64 {
	if query == "" || len(cands) == 0 {
		return nil
	}
	scores := make(map[string]float64, len(cands))
	for _, key := range cands {
		if score, ok := r.matcher.AcceptScore(query, key); ok {
			scores[key] = score
		}
	}
	return scores
}

// stageValidate assembles record-level candidates from the surviving name
// keys and cross-checks the structured fields. A postal code or house
// number that contradicts the record is a hard rejection: confidence
// scoring applies to fuzzy textual fields only and never overrides an
// exact structured mismatch. Missing structured fields simply skip their
// check, which is what makes partial lookup work.
func (r *Resolver) stageValidate(p *pipeline) *pipeline {
	seen := make(map[string]bool)

	consider := func(rec *dataset.Record) {
		if seen[rec.Identity()] {
			return
		}
		seen[rec.Identity()] = true
		if sr, ok := r.validateRecord(p, rec); ok {
			p.validated = append(p.validated, sr)
		}
	}

	if p.streetQuery != "" {
		// Iterate the ordered candidate slice, not the score map, so the
		// assembly order is deterministic.
		for _, key := range p.streetCands {
			if _, ok := p.streetScores[key]; !ok {
				continue
			}
			for _, rec := range p.snap.store.RecordsForStreet(key) {
				consider(rec)
			}
		}
	} else {
		for _, key := range p.cityCands {
			if _, ok := p.cityScores[key]; !ok {
				continue
			}
			for _, rec := range p.snap.store.RecordsForCity(key) {
				consider(rec)
			}
		}
	}

	p.stage = StageValidated
	return p
}

func (r *Resolver) validateRecord(p *pipeline, rec *dataset.Record) (scoredRecord, bool) {
	sr := scoredRecord{rec: rec, streetKey: normalizer.NormalizeName(rec.Street)}

	if p.streetQuery != "" {
		score, ok := p.streetScores[sr.streetKey]
		if !ok {
			return sr, false
		}
		sr.streetScore = score
		sr.matched = append(sr.matched, "street")
	}
	if p.cityQuery != "" {
		score, ok := p.cityScores[normalizer.NormalizeName(rec.City)]
		if !ok {
			return sr, false
		}
		sr.cityScore = score
		sr.matched = append(sr.matched, "city")
	}

	if p.parsed.PostalCode.Present {
		if rec.PostalCode != p.parsed.PostalCode.Value {
			return sr, false
		}
		sr.matched = append(sr.matched, "postal_code")
	}
	if p.parsed.HouseNumber.Present {
		if !rec.Contains(p.parsed.HouseNumber.Value) {
			return sr, false
		}
		sr.matched = append(sr.matched, "house_number")
	}
	return sr, true
}

// stageRank orders the survivors by combined score. The weights form a
// weighted average over the components the query actually supplied:
// renormalizing over present fields keeps partial queries on the same
// [0,1] scale as full ones.
func (r *Resolver) stageRank(p *pipeline) *pipeline {
	hasStructured := p.parsed.PostalCode.Present || p.parsed.HouseNumber.Present

	weightSum := 0.0
	if p.streetQuery != "" {
		weightSum += r.cfg.StreetWeight
	}
	if p.cityQuery != "" {
		weightSum += r.cfg.CityWeight
	}
	if hasStructured {
		weightSum += r.cfg.StructuredWeight
	}

	type rankedRecord struct {
		scoredRecord
		combined float64
	}
	records := make([]rankedRecord, 0, len(p.validated))
	for _, sr := range p.validated {
		combined := sr.streetScore*r.cfg.StreetWeight + sr.cityScore*r.cfg.CityWeight
		if hasStructured {
			// Survivors matched every structured field they were given.
			combined += r.cfg.StructuredWeight
		}
		if weightSum > 0 {
			combined /= weightSum
		}
		records = append(records, rankedRecord{scoredRecord: sr, combined: combined})
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.combined != b.combined {
			return a.combined > b.combined
		}
		af, bf := p.snap.store.StreetFreq(a.streetKey), p.snap.store.StreetFreq(b.streetKey)
		if af != bf {
			return af > bf
		}
		if len(a.streetKey) != len(b.streetKey) {
			return len(a.streetKey) < len(b.streetKey)
		}
		return a.rec.Identity() < b.rec.Identity()
	})

	limit := r.cfg.MaxResults
	if len(records) < limit {
		limit = len(records)
	}
	p.ranked = make([]MatchCandidate, 0, limit)
	for _, rr := range records[:limit] {
		p.ranked = append(p.ranked, MatchCandidate{
			Record:        rr.rec,
			Score:         rr.combined,
			MatchedFields: rr.matched,
		})
	}
	p.stage = StageRanked
	return p
}
