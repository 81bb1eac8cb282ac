package config

import (
	"reflect"
	"strings"
	"testing"
)

func TestDecode_CommandUnterminatedQuote(t *testing.T) {
	_, err := Decode(Merge(Defaults(), Document{KeyExecAfterExport: `git commit -m "anki backup`}))
	if err == nil {
		t.Fatal("Decode() error = nil, want unterminated quote error")
	}
	if !strings.Contains(err.Error(), "list of strings") {
		t.Errorf("error = %v, want a hint about the list form", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.SearchTerm != "" {
		t.Errorf("SearchTerm = %q, want empty", cfg.SearchTerm)
	}
	if !reflect.DeepEqual(cfg.OptionalEntriesOrder, OptionalEntryKeys) {
		t.Errorf("OptionalEntriesOrder = %v, want %v", cfg.OptionalEntriesOrder, OptionalEntryKeys)
	}
	for _, key := range OptionalEntryKeys {
		if cfg.Enabled(key) {
			t.Errorf("section %q enabled by default", key)
		}
	}
	fields, ok := cfg.FieldOverride("Basic")
	if !ok || !reflect.DeepEqual(fields, []string{"Back", "Front"}) {
		t.Errorf("FieldOverride(Basic) = %v, %v", fields, ok)
	}
	if _, ok := cfg.FieldOverride("Basic (and reversed card)"); ok {
		t.Error("unexpected override for unlisted note type")
	}
	if !cfg.ExecBeforeExport.Empty() || !cfg.ExecAfterExport.Empty() {
		t.Error("hooks should be empty by default")
	}
	if cfg.IndividualNameFormat != "{nid}_{notetype}" {
		t.Errorf("IndividualNameFormat = %q", cfg.IndividualNameFormat)
	}
}

func TestDecode_Command(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Command
	}{
		{name: "string is split on whitespace", value: "git -C {path} add -A", want: Command{"git", "-C", "{path}", "add", "-A"}},
		{name: "double quotes group words", value: `git -C {path} commit -am "anki backup"`, want: Command{"git", "-C", "{path}", "commit", "-am", "anki backup"}},
		{name: "single quotes group words", value: `sh -c 'echo {count} notes'`, want: Command{"sh", "-c", "echo {count} notes"}},
		{name: "list is kept", value: []any{"sh", "-c", "echo {count} notes"}, want: Command{"sh", "-c", "echo {count} notes"}},
		{name: "empty string", value: "", want: Command{}},
		{name: "null", value: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Decode(Merge(Defaults(), Document{KeyExecAfterExport: tt.value}))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(cfg.ExecAfterExport) != len(tt.want) || (len(tt.want) > 0 && !reflect.DeepEqual(cfg.ExecAfterExport, tt.want)) {
				t.Errorf("ExecAfterExport = %#v, want %#v", cfg.ExecAfterExport, tt.want)
			}
		})
	}
}

func TestDecode_CommandWrongType(t *testing.T) {
	_, err := Decode(Document{KeyExecBeforeExport: 12})
	if err == nil {
		t.Error("Decode() expected error for numeric command")
	}
}

func TestDecode_NestedMaps(t *testing.T) {
	doc := Document{
		KeyNoteTypeExceptions: map[string]any{"Vocab": []any{"Word", "Meaning"}},
		KeyOptionalEntries:    map[string]any{EntryScheduling: true},
	}
	cfg, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !cfg.Enabled(EntryScheduling) {
		t.Error("scheduling should be enabled")
	}
	if got, _ := cfg.FieldOverride("Vocab"); !reflect.DeepEqual(got, []string{"Word", "Meaning"}) {
		t.Errorf("FieldOverride(Vocab) = %v", got)
	}
}
