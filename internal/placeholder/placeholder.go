// Package placeholder expands {name} placeholders in text templates.
//
// A placeholder is a name made of letters, digits and underscores between
// single braces. Doubled braces ({{ and }}) produce a literal brace.
// Expansion is a single left-to-right pass: substituted values are copied
// verbatim and never scanned for further placeholders.
package placeholder

import (
	"fmt"
	"strings"
)

// MissingError reports a placeholder with no value.
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("no value for placeholder {%s}", e.Name)
}

// SyntaxError reports malformed braces in a template.
type SyntaxError struct {
	Template string
	Offset   int
	Reason   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template %q at offset %d: %s", e.Template, e.Offset, e.Reason)
}

// segment is either literal text or a placeholder name.
type segment struct {
	text string
	name bool
}

func parse(tmpl string) ([]segment, error) {
	var segs []segment
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(tmpl); i++ {
		switch tmpl[i] {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return nil, &SyntaxError{Template: tmpl, Offset: i, Reason: "unclosed '{'"}
			}
			name := tmpl[i+1 : i+1+end]
			if !validName(name) {
				return nil, &SyntaxError{Template: tmpl, Offset: i, Reason: fmt.Sprintf("invalid placeholder name %q", name)}
			}
			flush()
			segs = append(segs, segment{text: name, name: true})
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, &SyntaxError{Template: tmpl, Offset: i, Reason: "single '}'"}
		default:
			lit.WriteByte(tmpl[i])
		}
	}
	flush()
	return segs, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' {
			return false
		}
	}
	return true
}

// Names returns the placeholder names used in tmpl, in order of first use.
func Names(tmpl string) ([]string, error) {
	segs, err := parse(tmpl)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for _, seg := range segs {
		if seg.name && !seen[seg.text] {
			seen[seg.text] = true
			names = append(names, seg.text)
		}
	}
	return names, nil
}

// Check verifies that tmpl parses and only uses the allowed names.
func Check(tmpl string, allowed ...string) error {
	names, err := Names(tmpl)
	if err != nil {
		return err
	}
	for _, name := range names {
		ok := false
		for _, a := range allowed {
			if name == a {
				ok = true
				break
			}
		}
		if !ok {
			return &MissingError{Name: name}
		}
	}
	return nil
}

// Expand replaces every placeholder in tmpl with the value returned by lookup.
// It fails with *MissingError on the first name lookup cannot resolve.
func Expand(tmpl string, lookup func(name string) (string, bool)) (string, error) {
	segs, err := parse(tmpl)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	out.Grow(len(tmpl))
	for _, seg := range segs {
		if !seg.name {
			out.WriteString(seg.text)
			continue
		}
		val, ok := lookup(seg.text)
		if !ok {
			return "", &MissingError{Name: seg.text}
		}
		out.WriteString(val)
	}
	return out.String(), nil
}

// ExpandMap is Expand with a map lookup.
func ExpandMap(tmpl string, values map[string]string) (string, error) {
	return Expand(tmpl, func(name string) (string, bool) {
		val, ok := values[name]
		return val, ok
	})
}
