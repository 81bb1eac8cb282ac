package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gorewood/textbackup/internal/datefmt"
	"github.com/gorewood/textbackup/internal/fsname"
	"github.com/gorewood/textbackup/internal/placeholder"
)

// FileNameKeys are the placeholders allowed in individualFilePerNoteNameFormat.
var FileNameKeys = []string{"nid", "notetype", "deck", "created"}

// FieldTitleKey is the only placeholder allowed in singleLineFieldTitle.
const FieldTitleKey = "fieldname"

// ValidationError collects every problem found in a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Validate checks the parts of cfg that would otherwise fail halfway
// through a run. It returns warnings for settings that are legal but
// probably not what the user meant.
func Validate(cfg Config) (warnings []string, err error) {
	var problems []string

	if strings.TrimSpace(cfg.ExportPath) == "" {
		problems = append(problems, KeyExportPath+" is empty")
	}

	if dateErr := datefmt.Validate(cfg.DateFormat); dateErr != nil {
		problems = append(problems, KeyDateFormat+": "+dateErr.Error())
	}

	if cfg.SingleLinePerField {
		if tmplErr := placeholder.Check(cfg.SingleLineFieldTitle, FieldTitleKey); tmplErr != nil {
			problems = append(problems, templateProblem(KeySingleLineFieldTitle, tmplErr, []string{FieldTitleKey}))
		}
	}

	if cfg.IndividualFiles {
		if tmplErr := placeholder.Check(cfg.IndividualNameFormat, FileNameKeys...); tmplErr != nil {
			problems = append(problems, templateProblem(KeyIndividualNameFormat, tmplErr, FileNameKeys))
		}
	} else if fsname.Sanitize(cfg.ExportFileName) == "" {
		problems = append(problems, fmt.Sprintf("%s %q leaves no usable file name", KeyExportFileName, cfg.ExportFileName))
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	return orderWarnings(cfg), nil
}

func templateProblem(key string, err error, allowed []string) string {
	var missing *placeholder.MissingError
	if errors.As(err, &missing) {
		return fmt.Sprintf("%s uses {%s}; allowed: {%s}", key, missing.Name, strings.Join(allowed, "}, {"))
	}
	return key + ": " + err.Error()
}

// orderWarnings reports enabled sections that optionalEntriesOrder leaves
// out, and order entries that name no known section.
func orderWarnings(cfg Config) []string {
	var warnings []string
	inOrder := make(map[string]bool, len(cfg.OptionalEntriesOrder))
	for _, key := range cfg.OptionalEntriesOrder {
		inOrder[key] = true
		if !isOptionalEntry(key) {
			warnings = append(warnings, fmt.Sprintf("%s lists unknown section %q; it is ignored", KeyOptionalEntriesOrder, key))
		}
	}
	for _, key := range OptionalEntryKeys {
		if cfg.Enabled(key) && !inOrder[key] {
			warnings = append(warnings, fmt.Sprintf("section %q is enabled but missing from %s; it will not be rendered", key, KeyOptionalEntriesOrder))
		}
	}
	return warnings
}

func isOptionalEntry(key string) bool {
	for _, known := range OptionalEntryKeys {
		if key == known {
			return true
		}
	}
	return false
}
