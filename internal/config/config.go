package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/shlex"
)

// Document is a configuration as stored on disk: a flat key/value mapping
// whose values are JSON-compatible (strings, bools, numbers, lists, maps).
type Document map[string]any

// Keys of the configuration document.
const (
	KeySearchTerm           = "searchTerm"
	KeyNoteTypeExceptions   = "noteTypeExceptions"
	KeyOptionalEntries      = "optionalEntries"
	KeyOptionalEntriesOrder = "optionalEntriesOrder"
	KeyDateFormat           = "dateFormat"
	KeyFieldSeparator       = "fieldSeparator"
	KeyFieldStarter         = "fieldStarter"
	KeyFieldCloser          = "fieldCloser"
	KeySingleLinePerField   = "singleLinePerField"
	KeySingleLineFieldTitle = "singleLineFieldTitle"
	KeyIndividualFiles      = "individualFilePerNote"
	KeyIndividualNameFormat = "individualFilePerNoteNameFormat"
	KeyNoteSeparator        = "noteSeparator"
	KeyExportPath           = "exportPath"
	KeyExportFileName       = "exportFileName"
	KeyExecBeforeExport     = "execBeforeExport"
	KeyExecAfterExport      = "execAfterExport"
)

// Optional snippet sections, toggled by optionalEntries.
const (
	EntryNoteTypeName = "noteTypeName"
	EntryDeckName     = "deckName"
	EntryTags         = "tags"
	EntryScheduling   = "scheduling"
	EntryFieldNames   = "fieldNames"
)

// OptionalEntryKeys lists every optional section in default order.
var OptionalEntryKeys = []string{
	EntryNoteTypeName, EntryDeckName, EntryTags, EntryScheduling, EntryFieldNames,
}

// Config is the merged configuration for one run. Build it with Load or
// Decode and treat it as read-only afterwards.
type Config struct {
	SearchTerm           string              `json:"searchTerm"`
	NoteTypeExceptions   map[string][]string `json:"noteTypeExceptions"`
	OptionalEntries      map[string]bool     `json:"optionalEntries"`
	OptionalEntriesOrder []string            `json:"optionalEntriesOrder"`
	DateFormat           string              `json:"dateFormat"`
	FieldSeparator       string              `json:"fieldSeparator"`
	FieldStarter         string              `json:"fieldStarter"`
	FieldCloser          string              `json:"fieldCloser"`
	SingleLinePerField   bool                `json:"singleLinePerField"`
	SingleLineFieldTitle string              `json:"singleLineFieldTitle"`
	IndividualFiles      bool                `json:"individualFilePerNote"`
	IndividualNameFormat string              `json:"individualFilePerNoteNameFormat"`
	NoteSeparator        string              `json:"noteSeparator"`
	ExportPath           string              `json:"exportPath"`
	ExportFileName       string              `json:"exportFileName"`
	ExecBeforeExport     Command             `json:"execBeforeExport"`
	ExecAfterExport      Command             `json:"execAfterExport"`
}

// Enabled reports whether the optional section key is switched on.
// Missing keys are disabled.
func (c Config) Enabled(key string) bool {
	return c.OptionalEntries[key]
}

// FieldOverride returns the configured field list for a note type.
func (c Config) FieldOverride(noteType string) ([]string, bool) {
	names, ok := c.NoteTypeExceptions[noteType]
	return names, ok
}

// ExportDir returns the export path with "~" expanded.
func (c Config) ExportDir() string {
	return ExpandHome(c.ExportPath)
}

// Command is an external command line: program followed by arguments.
// In a document it may be written as a list of strings or as a single
// string, which is split with shell quoting rules.
type Command []string

// UnmarshalJSON accepts either a string or a list of strings.
func (c *Command) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var line string
		if err := json.Unmarshal(data, &line); err != nil {
			return err
		}
		args, err := shlex.Split(line)
		if err != nil {
			return fmt.Errorf("command %q: %w (write it as a list of strings instead)", line, err)
		}
		*c = Command(args)
		return nil
	}
	var args []string
	if err := json.Unmarshal(data, &args); err != nil {
		return fmt.Errorf("command must be a string or a list of strings: %w", err)
	}
	*c = Command(args)
	return nil
}

// Empty reports whether there is nothing to run.
func (c Command) Empty() bool {
	return len(c) == 0
}

// Decode converts a merged document into a Config. Keys Config does not know
// are ignored; a value of the wrong type is an error.
func Decode(doc Document) (Config, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return Config{}, fmt.Errorf("encode configuration: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode configuration: %w", err)
	}
	return cfg, nil
}
