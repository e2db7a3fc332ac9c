package dataset

import (
	"sort"
	"strings"
	"sync/atomic"

	"github.com/address-resolver/internal/normalizer"
)

// loadGeneration increments on every successful Load. The generation is
// baked into resolver cache keys, so swapping in a freshly loaded store
// implicitly invalidates every cached result of the previous dataset.
var loadGeneration atomic.Uint64

// Name is one distinct street or city name known to the store, with the
// number of records that carry it. Frequency drives the matcher tie-break.
type Name struct {
	Key     string // NormalizedKey
	Display string // canonical spelling from the dataset
	Freq    int
}

// Store is the immutable, loaded-once table of canonical address records.
// After Load returns, the store is read-only and safe for unbounded
// concurrent readers.
type Store struct {
	records    []Record
	byPostcode map[string][]*Record
	byStreet   map[string][]*Record // NormalizedKey of street -> records
	byCity     map[string][]*Record

	streetNames map[string]string // NormalizedKey -> canonical spelling
	cityNames   map[string]string

	generation uint64
}

// Load builds a Store from raw reference rows. It fails with *DatasetError
// if any row is malformed, identity keys are duplicated, or house-number
// ranges overlap within the same (postalCode, street, parity) group. On
// failure no store is returned; a partially loaded index is never exposed.
func Load(rows []Row) (*Store, error) {
	s := &Store{
		records:     make([]Record, 0, len(rows)),
		byPostcode:  make(map[string][]*Record),
		byStreet:    make(map[string][]*Record),
		byCity:      make(map[string][]*Record),
		streetNames: make(map[string]string),
		cityNames:   make(map[string]string),
	}

	var bad []string
	seen := make(map[string]bool, len(rows))

	for _, row := range rows {
		rec := Record{
			PostalCode: normalizer.NormalizePostcode(row.PostalCode),
			City:       row.City,
			Street:     row.Street,
			From:       row.From,
			To:         row.To,
			Parity:     row.Parity,
		}
		switch {
		case !normalizer.IsPostcode(rec.PostalCode):
			bad = append(bad, rec.Identity())
		case rec.Street == "" || rec.City == "":
			bad = append(bad, rec.Identity())
		case rec.From < 0 || (rec.To != 0 && rec.To < rec.From):
			bad = append(bad, rec.Identity())
		case seen[rec.Identity()]:
			bad = append(bad, rec.Identity())
		default:
			seen[rec.Identity()] = true
			s.records = append(s.records, rec)
			continue
		}
	}
	if len(bad) > 0 {
		return nil, &DatasetError{Reason: "malformed or duplicate records", Keys: bad}
	}

	for i := range s.records {
		rec := &s.records[i]
		streetKey := normalizer.NormalizeName(rec.Street)
		cityKey := normalizer.NormalizeName(rec.City)

		s.byPostcode[rec.PostalCode] = append(s.byPostcode[rec.PostalCode], rec)
		s.byStreet[streetKey] = append(s.byStreet[streetKey], rec)
		s.byCity[cityKey] = append(s.byCity[cityKey], rec)
		if _, ok := s.streetNames[streetKey]; !ok {
			s.streetNames[streetKey] = rec.Street
		}
		if _, ok := s.cityNames[cityKey]; !ok {
			s.cityNames[cityKey] = rec.City
		}
	}

	if overlaps := findOverlaps(s.byPostcode); len(overlaps) > 0 {
		return nil, &DatasetError{Reason: "overlapping house-number ranges", Keys: overlaps}
	}

	s.generation = loadGeneration.Add(1)
	return s, nil
}

// findOverlaps detects house-number ranges that intersect within the same
// (postalCode, street, parity) group. Overlaps are a dataset defect and must
// be rejected at load time, not silently accepted.
func findOverlaps(byPostcode map[string][]*Record) []string {
	var offending []string
	for _, recs := range byPostcode {
		for i := 0; i < len(recs); i++ {
			for j := i + 1; j < len(recs); j++ {
				a, b := recs[i], recs[j]
				if a.Street != b.Street || !a.Parity.intersects(b.Parity) {
					continue
				}
				if rangesIntersect(a, b) {
					offending = append(offending, a.Identity(), b.Identity())
				}
			}
		}
	}
	sort.Strings(offending)
	return dedupe(offending)
}

func rangesIntersect(a, b *Record) bool {
	aTo, bTo := a.To, b.To
	if aTo == 0 {
		aTo = int(^uint(0) >> 1)
	}
	if bTo == 0 {
		bTo = int(^uint(0) >> 1)
	}
	return a.From <= bTo && b.From <= aTo
}

func dedupe(keys []string) []string {
	out := keys[:0]
	for i, k := range keys {
		if i == 0 || keys[i-1] != k {
			out = append(out, k)
		}
	}
	return out
}

// LookupExact returns the record whose range contains the house number with
// a matching parity constraint, or false if none does.
func (s *Store) LookupExact(postalCode string, houseNumber int) (*Record, bool) {
	pc := normalizer.NormalizePostcode(postalCode)
	for _, rec := range s.byPostcode[pc] {
		if rec.Contains(houseNumber) {
			return rec, true
		}
	}
	return nil, false
}

// RecordsForPostalCode returns all records registered under a PC6 postcode.
func (s *Store) RecordsForPostalCode(postalCode string) []*Record {
	return s.byPostcode[normalizer.NormalizePostcode(postalCode)]
}

// RecordsForDistrict returns every record whose postcode starts with the
// four-digit district prefix, in postcode order.
func (s *Store) RecordsForDistrict(pc4 string) []*Record {
	var pcs []string
	for pc := range s.byPostcode {
		if strings.HasPrefix(pc, pc4) {
			pcs = append(pcs, pc)
		}
	}
	sort.Strings(pcs)
	var out []*Record
	for _, pc := range pcs {
		out = append(out, s.byPostcode[pc]...)
	}
	return out
}

// RecordsForStreet returns the records carrying the street with the given
// NormalizedKey.
func (s *Store) RecordsForStreet(key string) []*Record {
	return s.byStreet[key]
}

// RecordsForCity returns the records carrying the city with the given
// NormalizedKey.
func (s *Store) RecordsForCity(key string) []*Record {
	return s.byCity[key]
}

// StreetName resolves a street NormalizedKey back to its canonical spelling.
func (s *Store) StreetName(key string) (string, bool) {
	name, ok := s.streetNames[key]
	return name, ok
}

// CityName resolves a city NormalizedKey back to its canonical spelling.
func (s *Store) CityName(key string) (string, bool) {
	name, ok := s.cityNames[key]
	return name, ok
}

// Streets lists every distinct street name with its record frequency,
// ordered by key for deterministic index construction.
func (s *Store) Streets() []Name {
	return collectNames(s.byStreet, s.streetNames)
}

// Cities lists every distinct city name with its record frequency.
func (s *Store) Cities() []Name {
	return collectNames(s.byCity, s.cityNames)
}

func collectNames(byKey map[string][]*Record, display map[string]string) []Name {
	names := make([]Name, 0, len(byKey))
	for key, recs := range byKey {
		names = append(names, Name{Key: key, Display: display[key], Freq: len(recs)})
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Key < names[j].Key })
	return names
}

// StreetFreq returns how many records carry the street key. Used by the
// matcher tie-break (more common names win on equal score).
func (s *Store) StreetFreq(key string) int { return len(s.byStreet[key]) }

// CityFreq returns how many records carry the city key.
func (s *Store) CityFreq(key string) int { return len(s.byCity[key]) }

// Len returns the number of records in the store.
func (s *Store) Len() int { return len(s.records) }

// Generation identifies this load. Cache keys embed it so a reload
// invalidates stale entries without an explicit sweep.
func (s *Store) Generation() uint64 { return s.generation }
