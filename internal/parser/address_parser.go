// Package parser splits free-form two-line Dutch address text into
// structured fields. Parsing is pattern-based and independent of the
// reference dataset: it never fails, it only marks fields absent, because
// downstream partial lookup must operate on incomplete input.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/address-resolver/internal/normalizer"
)

// Field is a tagged optional string. Present means the field was explicitly
// found in the input; Inferred means it was filled by a fallback rule rather
// than the primary pattern.
type Field struct {
	Value    string
	Present  bool
	Inferred bool
}

// NumberField is a tagged optional house number.
type NumberField struct {
	Value   int
	Present bool
}

// ParsedAddress is the mutable intermediate between raw text and the
// resolver pipeline. Created per request, discarded after.
type ParsedAddress struct {
	Street      Field
	HouseNumber NumberField
	Addition    Field
	PostalCode  Field
	City        Field
}

// HasSearchableText reports whether at least one textual field usable for
// candidate retrieval is present.
func (pa *ParsedAddress) HasSearchableText() bool {
	return pa.Street.Present || pa.City.Present
}

// Parser holds the precompiled patterns. Safe for concurrent use.
type Parser struct {
	streetLine   *regexp.Regexp
	postcodeScan *regexp.Regexp
}

// New compiles the line patterns.
func New() *Parser {
	return &Parser{
		// "<street> <houseNumber><optional letter addition>": the house
		// number is the trailing digit run, anything after it is the
		// addition ("10", "10A", "1016 II").
		streetLine: regexp.MustCompile(`^(.+?)\s+(\d+)\s*([A-Za-z][A-Za-z0-9]*)?$`),
		// PC6 postcode anywhere in the city line, with or without the
		// conventional space.
		postcodeScan: regexp.MustCompile(`\b(\d{4})\s?([A-Za-z]{2})\b`),
	}
}

// Parse splits "line1\nline2" text into structured fields. Line 1 is
// expected as "<street> <houseNumber><addition>", line 2 as
// "<postalCode> <city>". Absence of a field is represented, not an error.
func (p *Parser) Parse(line1, line2 string) *ParsedAddress {
	pa := &ParsedAddress{}
	p.parseStreetLine(strings.TrimSpace(line1), pa)
	p.parseCityLine(strings.TrimSpace(line2), pa)
	return pa
}

func (p *Parser) parseStreetLine(line string, pa *ParsedAddress) {
	if line == "" {
		return
	}

	m := p.streetLine.FindStringSubmatch(line)
	if m == nil {
		// No trailing digit run: treat the whole line as street text so
		// partial lookup can still search on it.
		pa.Street = Field{Value: line, Present: true, Inferred: true}
		return
	}

	pa.Street = Field{Value: strings.TrimSpace(m[1]), Present: true}
	if n, err := strconv.Atoi(m[2]); err == nil {
		pa.HouseNumber = NumberField{Value: n, Present: true}
	}
	if m[3] != "" {
		pa.Addition = Field{Value: strings.ToUpper(m[3]), Present: true}
	}
}

func (p *Parser) parseCityLine(line string, pa *ParsedAddress) {
	if line == "" {
		return
	}

	loc := p.postcodeScan.FindStringSubmatchIndex(line)
	if loc == nil {
		// No postcode pattern: the whole line is the city, postcode stays
		// absent.
		pa.City = Field{Value: line, Present: true, Inferred: true}
		return
	}

	pc := line[loc[2]:loc[3]] + line[loc[4]:loc[5]]
	pa.PostalCode = Field{Value: normalizer.NormalizePostcode(pc), Present: true}

	rest := strings.TrimSpace(line[:loc[0]] + " " + line[loc[1]:])
	if rest != "" {
		pa.City = Field{Value: rest, Present: true}
	}
}
