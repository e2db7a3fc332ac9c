package normalizer

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining marks so street and city names with
// trema or accent ("Oosterbeëk", "Curaçaostraat") fold to plain letters.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, _ := transform.String(t, s)
	return out
}

// isMn reports whether the rune is a nonspacing combining mark.
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// FoldASCII lowercases and forces the string to ASCII. Diacritics are
// stripped first; anything the NFD pass cannot decompose (ligatures such as
// "ĳ") falls through to unidecode.
func FoldASCII(s string) string {
	s = StripDiacritics(s)
	s = unidecode.Unidecode(s)
	return strings.ToLower(s)
}
