// Package textutil provides text normalization and the filename/label token
// parsing shared across the pipeline.
package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var spaceLikes = []string{
	"\u00A0", // NBSP
	"\u2000", "\u2001", "\u2002", "\u2003", "\u2004", "\u2005",
	"\u2006", "\u2007", "\u2008", "\u2009", "\u200A",
	"\u202F", // narrow NBSP
	"\u205F", // medium math space
	"\u3000", // ideographic space
}

var zeroWidth = []string{"\u200B", "\u200C", "\u200D", "\uFEFF"}

// Normalize canonicalizes a cell value for comparison: NFKC, unicode space
// variants folded to plain spaces, zero-width characters removed, whitespace
// runs collapsed, trimmed. Idempotent and total.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	for _, ch := range spaceLikes {
		s = strings.ReplaceAll(s, ch, " ")
	}
	for _, ch := range zeroWidth {
		s = strings.ReplaceAll(s, ch, "")
	}
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}
