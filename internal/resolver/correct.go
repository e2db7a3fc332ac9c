package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/address-resolver/internal/dataset"
	"github.com/address-resolver/internal/index"
	"github.com/address-resolver/internal/match"
	"github.com/address-resolver/internal/normalizer"
)

// Suggestion is one spelling correction for a street or city name.
type Suggestion struct {
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"` // Jaro-Winkler, diagnostic only
	Freq       int     `json:"freq"`
}

// Correct suggests canonical spellings for a possibly misspelled street or
// city name. An exact match short-circuits with a single score-1 suggestion.
// A postal code, when given, restricts suggestions to names that actually
// occur under that PC6 postcode, or under the district when only the four
// digits are supplied. A city hint restricts street suggestions to streets
// of that city.
func (r *Resolver) Correct(ctx context.Context, text string, field index.Field, postalCode, cityHint string, limit int) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := normalizer.NormalizeName(text)
	if query == "" {
		return nil, ErrInsufficientInput
	}
	if limit <= 0 || limit > r.cfg.MaxResults {
		limit = r.cfg.MaxResults
	}

	snap := r.current.Load()
	allowed := allowedKeys(snap.store, field, postalCode)
	allowed = intersectCityHint(snap.store, field, cityHint, allowed)

	if display, freq, ok := lookupName(snap.store, field, query); ok && (allowed == nil || allowed[query]) {
		return []Suggestion{{Name: display, Score: 1, Similarity: 1, Freq: freq}}, nil
	}

	var scored []match.Scored
	for _, key := range snap.index.CandidatesFor(query, field, r.cfg.MaxCandidates) {
		if allowed != nil && !allowed[key] {
			continue
		}
		score, ok := r.matcher.AcceptScore(query, key)
		if !ok {
			continue
		}
		display, freq, _ := lookupName(snap.store, field, key)
		scored = append(scored, match.Scored{Key: key, Display: display, Score: score, Freq: freq})
	}
	if len(scored) == 0 {
		return nil, ErrNoMatch
	}
	match.Rank(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}

	out := make([]Suggestion, 0, len(scored))
	for _, s := range scored {
		out = append(out, Suggestion{
			Name:       s.Display,
			Score:      s.Score,
			Similarity: smetrics.JaroWinkler(query, s.Key, 0.7, 4),
			Freq:       s.Freq,
		})
	}
	return out, nil
}

// allowedKeys builds the name filter implied by a postal code, or nil when
// no code is given.
func allowedKeys(store *dataset.Store, field index.Field, postalCode string) map[string]bool {
	pc := normalizer.NormalizePostcode(postalCode)
	if pc == "" {
		return nil
	}

	var recs []*dataset.Record
	if normalizer.IsPostcode(pc) {
		recs = store.RecordsForPostalCode(pc)
	} else {
		recs = store.RecordsForDistrict(pc)
	}

	allowed := make(map[string]bool, len(recs))
	for _, rec := range recs {
		if field == index.FieldStreet {
			allowed[normalizer.NormalizeName(rec.Street)] = true
		} else {
			allowed[normalizer.NormalizeName(rec.City)] = true
		}
	}
	return allowed
}

// intersectCityHint narrows a street filter to streets of the hinted city.
// The hint only applies to street corrections; for city corrections it has
// nothing to restrict.
func intersectCityHint(store *dataset.Store, field index.Field, cityHint string, allowed map[string]bool) map[string]bool {
	if cityHint == "" || field != index.FieldStreet {
		return allowed
	}
	cityKey := normalizer.NormalizeName(cityHint)
	inCity := make(map[string]bool)
	for _, rec := range store.RecordsForCity(cityKey) {
		key := normalizer.NormalizeName(rec.Street)
		if allowed == nil || allowed[key] {
			inCity[key] = true
		}
	}
	return inCity
}

func lookupName(store *dataset.Store, field index.Field, key string) (string, int, bool) {
	if field == index.FieldStreet {
		display, ok := store.StreetName(key)
		return display, store.StreetFreq(key), ok
	}
	display, ok := store.CityName(key)
	return display, store.CityFreq(key), ok
}

// Validation reports whether a two-line address denotes a deliverable
// point, with the canonical record when it does and a reason when not.
type Validation struct {
	Valid  bool            `json:"valid"`
	Reason string          `json:"reason,omitempty"`
	Record *dataset.Record `json:"record,omitempty"`
}

// Validate checks an address against the dataset without fuzzy recovery:
// the postal code and house number must be present and resolve to a
// record, and any street or city text must agree with that record after
// normalization.
func (r *Resolver) Validate(ctx context.Context, line1, line2 string) (Validation, error) {
	if err := ctx.Err(); err != nil {
		return Validation{}, err
	}
	snap := r.current.Load()
	parsed := r.parser.Parse(line1, line2)

	if !parsed.PostalCode.Present || !parsed.HouseNumber.Present {
		return Validation{Reason: "postal code and house number are required"}, nil
	}
	rec, ok := snap.store.LookupExact(parsed.PostalCode.Value, parsed.HouseNumber.Value)
	if !ok {
		return Validation{Reason: fmt.Sprintf("no record covers %s %d", parsed.PostalCode.Value, parsed.HouseNumber.Value)}, nil
	}
	if parsed.Street.Present && !parsed.Street.Inferred {
		if normalizer.NormalizeName(parsed.Street.Value) != normalizer.NormalizeName(rec.Street) {
			return Validation{Reason: fmt.Sprintf("street does not match, expected %q", rec.Street)}, nil
		}
	}
	if parsed.City.Present {
		if normalizer.NormalizeName(parsed.City.Value) != normalizer.NormalizeName(rec.City) {
			return Validation{Reason: fmt.Sprintf("city does not match, expected %q", rec.City)}, nil
		}
	}
	return Validation{Valid: true, Record: rec}, nil
}

var digitsOnly = regexp.MustCompile(`^[0-9]{4}$`)

// SearchResult is the answer to a free-form partial query.
type SearchResult struct {
	Records     []*dataset.Record `json:"records,omitempty"`
	Suggestions []Suggestion      `json:"suggestions,omitempty"`
}

// Search answers partial queries: a full PC6 postcode lists its records, a
// bare four-digit district lists the district's records, and anything else
// is treated as a street name to correct, falling back to city names.
func (r *Resolver) Search(ctx context.Context, query string, limit int) (SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return SearchResult{}, err
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return SearchResult{}, ErrInsufficientInput
	}
	if limit <= 0 || limit > r.cfg.MaxResults {
		limit = r.cfg.MaxResults
	}
	snap := r.current.Load()

	if pc := normalizer.NormalizePostcode(q); normalizer.IsPostcode(pc) {
		recs := snap.store.RecordsForPostalCode(pc)
		if len(recs) == 0 {
			return SearchResult{}, ErrNoMatch
		}
		return SearchResult{Records: capRecords(recs, limit)}, nil
	}
	if digitsOnly.MatchString(q) {
		recs := snap.store.RecordsForDistrict(q)
		if len(recs) == 0 {
			return SearchResult{}, ErrNoMatch
		}
		return SearchResult{Records: capRecords(recs, limit)}, nil
	}

	suggestions, err := r.Correct(ctx, q, index.FieldStreet, "", "", limit)
	if err == ErrNoMatch {
		suggestions, err = r.Correct(ctx, q, index.FieldCity, "", "", limit)
	}
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Suggestions: suggestions}, nil
}

func capRecords(recs []*dataset.Record, limit int) []*dataset.Record {
	if len(recs) <= limit {
		return recs
	}
	return recs[:limit]
}
