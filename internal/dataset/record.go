// Package dataset holds the canonical postal reference data: the record
// model, the immutable in-memory store and the reference-file loader.
package dataset

import (
	"fmt"
	"strings"
)

// Parity constrains which house numbers a range covers. Dutch streets
// commonly register the even and odd sides as separate ranges.
type Parity uint8

const (
	ParityAny Parity = iota
	ParityEven
	ParityOdd
)

func (p Parity) String() string {
	switch p {
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return "any"
	}
}

// ParseParity reads the textual form used in configuration and fixtures.
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return ParityAny, nil
	case "even":
		return ParityEven, nil
	case "odd":
		return ParityOdd, nil
	}
	return ParityAny, fmt.Errorf("unknown parity %q", s)
}

// Matches reports whether a house number satisfies the constraint.
func (p Parity) Matches(n int) bool {
	switch p {
	case ParityEven:
		return n%2 == 0
	case ParityOdd:
		return n%2 != 0
	default:
		return true
	}
}

// intersects reports whether two parity constraints can cover a common
// house number. Even and Odd are disjoint; Any overlaps both.
func (p Parity) intersects(q Parity) bool {
	if p == ParityAny || q == ParityAny {
		return true
	}
	return p == q
}

// Record is one canonical entry of the reference dataset: a PC6 postcode
// with its street, city and the house-number range it covers.
type Record struct {
	PostalCode string `json:"postal_code"` // PC6, e.g. "1011AB"
	City       string `json:"city"`
	Street     string `json:"street"`
	From       int    `json:"house_number_from"`
	To         int    `json:"house_number_to"` // 0 means no upper bound
	Parity     Parity `json:"-"`
}

// Contains reports whether the house number falls inside the range and
// satisfies the parity constraint. A zero To leaves the range open-ended.
func (r *Record) Contains(n int) bool {
	if n < r.From {
		return false
	}
	if r.To != 0 && n > r.To {
		return false
	}
	return r.Parity.Matches(n)
}

// PC4 returns the numeric district prefix of the postcode.
func (r *Record) PC4() string {
	if len(r.PostalCode) < 4 {
		return r.PostalCode
	}
	return r.PostalCode[:4]
}

// Identity is the record's unique key within a dataset. Duplicate
// identities are rejected at load time.
func (r *Record) Identity() string {
	return fmt.Sprintf("%s|%s|%d-%d", r.PostalCode, r.Street, r.From, r.To)
}

// FormatLines renders the record as the conventional two-line Dutch
// address for a concrete house number.
func (r *Record) FormatLines(houseNumber int) (string, string) {
	return fmt.Sprintf("%s %d", r.Street, houseNumber),
		fmt.Sprintf("%s %s", r.PostalCode, r.City)
}

// Row is one raw reference entry before validation.
type Row struct {
	PostalCode string
	City       string
	Street     string
	From       int
	To         int
	Parity     Parity
}

// DatasetError reports why a reference dataset was rejected at load time,
// with the identity keys of the offending records. Loading is all or
// nothing: a dataset that produces this error leaves no partial state.
type DatasetError struct {
	Reason string
	Keys   []string
}

func (e *DatasetError) Error() string {
	if len(e.Keys) == 0 {
		return "dataset rejected: " + e.Reason
	}
	return fmt.Sprintf("dataset rejected: %s (%d records, first %s)", e.Reason, len(e.Keys), e.Keys[0])
}
