package normalizer

import (
	"regexp"
	"strings"
)

// TextNormalizer derives NormalizedKeys from free-form street and city
// names: lowercase, diacritics folded, punctuation collapsed to spaces,
// common Dutch abbreviations expanded. The derivation is deterministic and
// depends on nothing but the input, so a key computed at index-build time
// always equals the key computed for the same query text later.
type TextNormalizer struct {
	nonWordPattern *regexp.Regexp
	spacePattern   *regexp.Regexp
	abbreviations  map[string]string
}

// NewTextNormalizer builds a normalizer with the fixed abbreviation table.
func NewTextNormalizer() *TextNormalizer {
	return &TextNormalizer{
		nonWordPattern: regexp.MustCompile(`[^a-z0-9]+`),
		spacePattern:   regexp.MustCompile(`\s+`),
		abbreviations: map[string]string{
			// street types
			"str": "straat",
			"ln":  "laan",
			"wg":  "weg",
			"pln": "plein",
			"gr":  "gracht",
			"sgl": "singel",
			"kd":  "kade",
			"dk":  "dijk",
			"bd":  "boulevard",
			// honorifics and titles common in street names
			"st":   "sint",
			"burg": "burgemeester",
			"kon":  "koningin",
			"pr":   "prins",
			"prof": "professor",
			"dr":   "dokter",
			"mr":   "meester",
			"gen":  "generaal",
			"vd":   "van de",
			// ordinals ("1e Constantijn Huygensstraat")
			"1e": "eerste",
			"2e": "tweede",
			"3e": "derde",
			"4e": "vierde",
			"5e": "vijfde",
		},
	}
}

// NormalizeName maps a street or city name to its NormalizedKey.
func (tn *TextNormalizer) NormalizeName(name string) string {
	s := FoldASCII(name)
	s = tn.nonWordPattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(tn.spacePattern.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}

	words := strings.Split(s, " ")
	expanded := make([]string, 0, len(words))
	for _, w := range words {
		if full, ok := tn.abbreviations[w]; ok {
			expanded = append(expanded, full)
			continue
		}
		expanded = append(expanded, w)
	}
	return strings.Join(expanded, " ")
}

// defaultNormalizer backs the package-level helpers. The struct is read-only
// after construction, so sharing it is safe.
var defaultNormalizer = NewTextNormalizer()

// NormalizeName derives the NormalizedKey of a name using the default table.
func NormalizeName(name string) string {
	return defaultNormalizer.NormalizeName(name)
}

var postcodePattern = regexp.MustCompile(`^[0-9]{4}[A-Z]{2}$`)

// NormalizePostcode canonicalizes a Dutch PC6 postcode to "1234AB". Input
// that does not look like a postcode is returned uppercased with spaces
// removed, so callers can still detect the mismatch with IsPostcode.
func NormalizePostcode(pc string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(pc), " ", ""))
}

// IsPostcode reports whether s is a normalized PC6 postcode (4 digits + 2
// uppercase letters).
func IsPostcode(s string) bool {
	return postcodePattern.MatchString(s)
}

// PC4 returns the numeric prefix of a normalized postcode, or "" if the
// input is too short.
func PC4(pc string) string {
	pc = NormalizePostcode(pc)
	if len(pc) < 4 {
		return ""
	}
	return pc[:4]
}
