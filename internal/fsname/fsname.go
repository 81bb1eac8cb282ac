// Package fsname turns rendered text into safe file names.
package fsname

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Sanitize keeps letters, digits, space, period and underscore, drops every
// other character and trims trailing whitespace.
//
// The name is NFC-normalized first so accented letters typed in decomposed
// form survive as a single letter instead of losing their combining mark.
func Sanitize(name string) string {
	name = norm.NFC.String(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == ' ' || r == '.' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimRightFunc(b.String(), unicode.IsSpace)
}
