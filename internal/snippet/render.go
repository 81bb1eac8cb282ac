package snippet

import (
	"errors"
	"fmt"

	"github.com/gorewood/textbackup/internal/placeholder"
)

// MissingFieldError reports a template placeholder with no value.
// The assembled template and the projected values are out of sync; this is
// a bug, not a user error.
type MissingFieldError struct {
	Field    string
	Template string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("template references {%s} but no value was produced for it", e.Field)
}

// Render fills every placeholder of tmpl from values.
func Render(tmpl Template, values Values) (string, error) {
	out, err := placeholder.ExpandMap(tmpl.text, values)
	if err != nil {
		return "", asMissingField(err, tmpl.text)
	}
	return out, nil
}

// RenderName renders a per-note file name template from the note's
// file-name-safe attributes. The result still needs sanitizing.
func RenderName(format string, meta Meta) (string, error) {
	out, err := placeholder.ExpandMap(format, meta.Map())
	if err != nil {
		return "", asMissingField(err, format)
	}
	return out, nil
}

// RenderFieldTitle renders the per-field title line for single-line mode.
func RenderFieldTitle(format, fieldName string) (string, error) {
	out, err := placeholder.ExpandMap(format, map[string]string{"fieldname": fieldName})
	if err != nil {
		return "", asMissingField(err, format)
	}
	return out, nil
}

func asMissingField(err error, tmpl string) error {
	var missing *placeholder.MissingError
	if errors.As(err, &missing) {
		return &MissingFieldError{Field: missing.Name, Template: tmpl}
	}
	return err
}
