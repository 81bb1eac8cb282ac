// Package datefmt formats timestamps with user-supplied strftime patterns.
//
// Patterns are opaque user input. They are checked directive by directive so
// an unsupported directive is reported instead of leaking into the output.
package datefmt

import (
	"fmt"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// supported lists the conversion characters the formatter understands.
const supported = "aAbBcCdDeFfgGhHIjklLmMnNpPQrRsStTuUvVwWxXyYzZ%+"

// modified lists the conversions each of the E and O modifiers applies to.
var modified = map[byte]string{
	'E': "cCxXyY",
	'O': "deHImMSuUVwWy",
}

// Error reports a pattern that cannot be applied.
type Error struct {
	Pattern   string
	Directive string
}

func (e *Error) Error() string {
	if e.Directive == "" {
		return fmt.Sprintf("date format %q: dangling %%", e.Pattern)
	}
	return fmt.Sprintf("date format %q: unsupported directive %q", e.Pattern, e.Directive)
}

// Validate checks every %-directive in pattern.
func Validate(pattern string) error {
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '%' {
			continue
		}
		start := i
		i++
		if i < len(pattern) && (pattern[i] == '-' || pattern[i] == ':') {
			i++
		}
		allowed := supported
		if i < len(pattern) {
			if convs, ok := modified[pattern[i]]; ok {
				allowed = convs
				i++
			}
		}
		if i >= len(pattern) {
			return &Error{Pattern: pattern}
		}
		if !strings.ContainsRune(allowed, rune(pattern[i])) {
			return &Error{Pattern: pattern, Directive: pattern[start : i+1]}
		}
	}
	return nil
}

// Format renders t with pattern.
func Format(pattern string, t time.Time) (string, error) {
	if err := Validate(pattern); err != nil {
		return "", err
	}
	return strftime.Format(pattern, t), nil
}

// FromMillis converts a millisecond epoch value into a time in loc.
// A nil loc means time.Local.
func FromMillis(ms int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc)
}
