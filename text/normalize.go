package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// cleaner recomposes combining sequences and strips Unicode format
// characters (soft hyphens, zero-width joiners, directional marks).
var cleaner = transform.Chain(
	norm.NFC,
	runes.Remove(runes.In(unicode.Cf)),
)

// typographic maps curly quotes, long dashes, ellipses, and non-breaking
// spaces to their plain ASCII equivalents.
var typographic = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"‚", "'",
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"–", "-",
	"—", "-",
	"…", "...",
	" ", " ",
)

// Clean normalizes an extracted text run into a plain, single-spaced string.
// The result is trimmed; it may be empty.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(cleaner, s)
	if err != nil {
		// Malformed UTF-8 passes through and is handled rune-wise below.
		out = s
	}
	out = typographic.Replace(out)
	out = strings.Map(dropControl, out)
	return CollapseWhitespace(out)
}

// dropControl turns whitespace controls into plain spaces and removes the
// rest, along with invalid runes.
func dropControl(r rune) rune {
	switch {
	case r == '\n' || r == '\r' || r == '\t' || r == '\f' || r == '\v':
		return ' '
	case unicode.IsControl(r) || r == unicode.ReplacementChar:
		return -1
	default:
		return r
	}
}

// CollapseWhitespace reduces every whitespace run to a single space and
// trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PrintableRatio returns the fraction of runes in s that are printable,
// used to judge extraction quality. Empty input counts as fully printable.
func PrintableRatio(s string) float64 {
	if s == "" {
		return 1
	}
	total, printable := 0, 0
	for _, r := range s {
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	return float64(printable) / float64(total)
}
