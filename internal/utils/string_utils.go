package utils

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripPolicy = bluemonday.StrictPolicy()

// StripMarkup turns free text (notes, leave reasons, agenda items) into plain
// text: tags are removed, entities decoded and whitespace collapsed. The result
// is not HTML safe; "&lt;b&gt;" comes back as "<b>" and must be escaped again by
// anything that renders it as HTML.
func StripMarkup(s string) string {
	if s == "" {
		return s
	}
	s = stripPolicy.Sanitize(s)
	// bluemonday escapes entities; we store plain text
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeName trims, collapses inner whitespace and puts a name in NFC form.
// Used when names enter the system, never when matching them.
func NormalizeName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return norm.NFC.String(s)
}

// FoldName reduces a name to a comparison key: lower case, accents removed,
// whitespace collapsed.
func FoldName(s string) string {
	return strings.ToLower(RemoveAccents(strings.Join(strings.Fields(s), " ")))
}

// RemoveAccents drops combining marks after canonical decomposition.
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
