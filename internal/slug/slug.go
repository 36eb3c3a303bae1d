package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	spaceRe  = regexp.MustCompile(`\s+`)
	badRe    = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRe = regexp.MustCompile(`-{2,}`)
)

// stripMarks decomposes the string and drops combining marks, so that
// "Orçamento" becomes "Orcamento". NFKD also folds compatibility forms
// like "º" into their plain letters.
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize turns an arbitrary title into a URL-safe slug: lowercase,
// diacritics stripped, whitespace hyphenated, anything outside [a-z0-9-]
// removed, hyphen runs collapsed, leading/trailing hyphens trimmed.
// Normalize is idempotent.
func Normalize(raw string) string {
	s, _, err := transform.String(stripMarks, raw)
	if err != nil {
		s = raw
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = spaceRe.ReplaceAllString(s, "-")
	s = badRe.ReplaceAllString(s, "")
	s = hyphenRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Valid reports whether s is already a normalized, non-empty slug.
func Valid(s string) bool {
	return s != "" && Normalize(s) == s
}
