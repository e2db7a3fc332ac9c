package models

import (
	"github.com/address-resolver/internal/dataset"
	"github.com/address-resolver/internal/resolver"
)

// AddressMatch is the API-facing form of one resolution result: the
// canonical record plus the presentation lines clients print on labels.
type AddressMatch struct {
	Street          string   `json:"street"`
	City            string   `json:"city"`
	PostalCode      string   `json:"postal_code"`
	HouseNumberFrom int      `json:"house_number_from"`
	HouseNumberTo   int      `json:"house_number_to"`
	Parity          string   `json:"parity"`
	Score           float64  `json:"score"`
	MatchedFields   []string `json:"matched_fields"`
	Line1           string   `json:"line1"`
	Line2           string   `json:"line2"`
}

// FromCandidate converts a pipeline result. The house number formats into
// line 1 when the query supplied one; otherwise the range start stands in.
func FromCandidate(c resolver.MatchCandidate, houseNumber int) AddressMatch {
	n := houseNumber
	if n == 0 || !c.Record.Contains(n) {
		n = c.Record.From
	}
	l1, l2 := c.Record.FormatLines(n)
	return AddressMatch{
		Street:          c.Record.Street,
		City:            c.Record.City,
		PostalCode:      c.Record.PostalCode,
		HouseNumberFrom: c.Record.From,
		HouseNumberTo:   c.Record.To,
		Parity:          c.Record.Parity.String(),
		Score:           c.Score,
		MatchedFields:   c.MatchedFields,
		Line1:           l1,
		Line2:           l2,
	}
}

// FromRecord converts a bare dataset record, as returned by postcode
// search, with no similarity score attached.
func FromRecord(rec *dataset.Record) AddressMatch {
	l1, l2 := rec.FormatLines(rec.From)
	return AddressMatch{
		Street:          rec.Street,
		City:            rec.City,
		PostalCode:      rec.PostalCode,
		HouseNumberFrom: rec.From,
		HouseNumberTo:   rec.To,
		Parity:          rec.Parity.String(),
		Line1:           l1,
		Line2:           l2,
	}
}
