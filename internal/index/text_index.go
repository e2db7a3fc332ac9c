// Package index maintains the secondary search structures over the street
// and city names of a loaded dataset. Fuzzy correction never scans the full
// name table: every name is bucketed under a cheap blocking key, and a query
// only compares against the members of its own bucket plus a bounded set of
// neighbour buckets.
package index

import (
	"sort"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/address-resolver/internal/dataset"
	"github.com/address-resolver/internal/normalizer"
)

// Field selects which name table a query runs against.
type Field uint8

const (
	FieldStreet Field = iota
	FieldCity
)

func (f Field) String() string {
	if f == FieldCity {
		return "city"
	}
	return "street"
}

// DefaultBlockLen is the blocking-key width. Four characters keeps buckets
// small on a country-sized street table while still grouping close typos.
const DefaultBlockLen = 4

// TextIndex holds one nameIndex per field. Built once from a loaded store,
// immutable afterwards, safe for concurrent readers.
type TextIndex struct {
	street *nameIndex
	city   *nameIndex
}

// New builds the index from the store's street and city names.
func New(store *dataset.Store, blockLen int) *TextIndex {
	if blockLen <= 0 {
		blockLen = DefaultBlockLen
	}
	return &TextIndex{
		street: buildNameIndex(store.Streets(), blockLen),
		city:   buildNameIndex(store.Cities(), blockLen),
	}
}

// CandidatesFor returns the NormalizedKeys sharing a bucket with the query.
// The query's own blocking key is expanded with single-character deletion
// variants at positions 0..2, and names are indexed under their own deletion
// variants as well, so one insertion, deletion or substitution in the
// leading characters still lands both sides in a common bucket. The Soundex
// bucket catches phonetic misspellings the prefix scheme misses.
// maxCandidates <= 0 means no cap.
func (ti *TextIndex) CandidatesFor(query string, field Field, maxCandidates int) []string {
	idx := ti.street
	if field == FieldCity {
		idx = ti.city
	}
	return idx.candidates(normalizer.NormalizeName(query), maxCandidates)
}

// Size returns the number of distinct names indexed for a field.
func (ti *TextIndex) Size(field Field) int {
	if field == FieldCity {
		return len(ti.city.arena)
	}
	return len(ti.street.arena)
}

// nameIndex is the per-field structure. Names live once in the arena;
// buckets hold int32 references into it, so a name listed under several
// blocking keys costs four bytes per listing, not a string copy.
type nameIndex struct {
	arena    []string
	buckets  map[string][]int32
	phonetic map[string][]int32
	blockLen int
}

func buildNameIndex(names []dataset.Name, blockLen int) *nameIndex {
	idx := &nameIndex{
		arena:    make([]string, 0, len(names)),
		buckets:  make(map[string][]int32),
		phonetic: make(map[string][]int32),
		blockLen: blockLen,
	}
	for _, n := range names {
		ref := int32(len(idx.arena))
		idx.arena = append(idx.arena, n.Key)

		compact := strings.ReplaceAll(n.Key, " ", "")
		for _, bk := range blockingKeys(compact, blockLen) {
			idx.buckets[bk] = append(idx.buckets[bk], ref)
		}
		if code := soundexKey(compact); code != "" {
			idx.phonetic[code] = append(idx.phonetic[code], ref)
		}
	}
	return idx
}

// blockingKeys returns the blocking key of s plus the keys obtained by
// deleting one character at positions 0..2. Applying the same expansion on
// both the index side and the query side makes the scheme symmetric: any
// single edit inside the key window leaves at least one key in common.
func blockingKeys(compact string, blockLen int) []string {
	if compact == "" {
		return nil
	}
	keys := []string{prefix(compact, blockLen)}
	for i := 0; i < 3 && i < len(compact); i++ {
		variant := compact[:i] + compact[i+1:]
		if variant == "" {
			continue
		}
		keys = append(keys, prefix(variant, blockLen))
	}
	return uniqueStrings(keys)
}

// soundexKey computes the phonetic bucket key. Soundex is defined over
// letters, so digits ("1e helmersstraat" pre-expansion, numbered streets)
// are dropped first.
func soundexKey(compact string) string {
	var b strings.Builder
	for _, r := range compact {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return smetrics.Soundex(b.String())
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func uniqueStrings(in []string) []string {
	out := in[:0]
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func (idx *nameIndex) candidates(queryKey string, maxCandidates int) []string {
	compact := strings.ReplaceAll(queryKey, " ", "")
	if compact == "" {
		return nil
	}

	var refs []int32
	for _, bk := range blockingKeys(compact, idx.blockLen) {
		refs = append(refs, idx.buckets[bk]...)
	}
	if code := soundexKey(compact); code != "" {
		refs = append(refs, idx.phonetic[code]...)
	}

	// Dedupe and keep arena order so results are deterministic.
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	out := make([]string, 0, len(refs))
	var prev int32 = -1
	for _, ref := range refs {
		if ref == prev {
			continue
		}
		prev = ref
		out = append(out, idx.arena[ref])
		if maxCandidates > 0 && len(out) >= maxCandidates {
			break
		}
	}
	return out
}
