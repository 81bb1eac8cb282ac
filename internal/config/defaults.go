package config

// Defaults returns a fresh copy of the default configuration document.
// Callers may modify the result.
func Defaults() Document {
	return Document{
		KeySearchTerm: "",
		KeyNoteTypeExceptions: map[string]any{
			"Basic": []any{"Back", "Front"},
			"Cloze": []any{"Text"},
		},
		KeyOptionalEntries: map[string]any{
			EntryNoteTypeName: false,
			EntryDeckName:     false,
			EntryTags:         false,
			EntryScheduling:   false,
			EntryFieldNames:   false,
		},
		KeyOptionalEntriesOrder: []any{
			EntryNoteTypeName, EntryDeckName, EntryTags, EntryScheduling, EntryFieldNames,
		},
		KeyDateFormat:           "%Y-%m-%d",
		KeyFieldSeparator:       "<--FLDSEP-->",
		KeyFieldStarter:         "<--FLDSTART-->",
		KeyFieldCloser:          "<--FLDEND-->",
		KeySingleLinePerField:   false,
		KeySingleLineFieldTitle: "<<<<field: {fieldname}>>>>",
		KeyIndividualFiles:      false,
		KeyIndividualNameFormat: "{nid}_{notetype}",
		KeyNoteSeparator:        "=================",
		KeyExportPath:           "~/AnkiBackup",
		KeyExportFileName:       "anki_custom_backup.txt",
		KeyExecBeforeExport:     "",
		KeyExecAfterExport:      "",
	}
}

// DefaultConfig returns the decoded default configuration.
func DefaultConfig() Config {
	cfg, err := Decode(Defaults())
	if err != nil {
		panic("config: defaults do not decode: " + err.Error())
	}
	return cfg
}
