package snippet

import (
	"reflect"
	"strings"
	"testing"

	"github.com/gorewood/textbackup/internal/config"
	"github.com/gorewood/textbackup/internal/placeholder"
)

func configWith(enabled map[string]bool, order []string) config.Config {
	cfg := config.DefaultConfig()
	cfg.OptionalEntries = enabled
	if order != nil {
		cfg.OptionalEntriesOrder = order
	}
	return cfg
}

func TestAssemble_NothingEnabled(t *testing.T) {
	tmpl := Assemble(configWith(map[string]bool{}, nil))

	want := "nid: {nid}\ncreated: {created}\nfields: {fields_string}"
	if tmpl.Text() != want {
		t.Errorf("Assemble() = %q, want %q", tmpl.Text(), want)
	}
	if lines := strings.Split(tmpl.Text(), "\n"); len(lines) != 3 {
		t.Errorf("template has %d lines, want 3", len(lines))
	}
	if len(tmpl.Sections()) != 0 {
		t.Errorf("Sections() = %v, want none", tmpl.Sections())
	}
}

func TestAssemble_OrderFollowsConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		enabled map[string]bool
		order   []string
		want    string
	}{
		{
			name:    "single section",
			enabled: map[string]bool{config.EntryTags: true},
			want:    "nid: {nid}\ncreated: {created}\ntags: {tags_string}\nfields: {fields_string}",
		},
		{
			name:    "declared order, not toggle order",
			enabled: map[string]bool{config.EntryFieldNames: true, config.EntryNoteTypeName: true, config.EntryDeckName: true},
			order:   []string{config.EntryFieldNames, config.EntryDeckName, config.EntryNoteTypeName},
			want: "nid: {nid}\ncreated: {created}\n" +
				"fieldnames: {fieldnames_string}\ndeck: {deck}\nnotetype: {notetype}\n" +
				"fields: {fields_string}",
		},
		{
			name:    "scheduling adds two lines",
			enabled: map[string]bool{config.EntryScheduling: true},
			want:    "nid: {nid}\ncreated: {created}\nhistory: {history_string}\nforecast: {forecast}\nfields: {fields_string}",
		},
		{
			name:    "enabled but not in order list",
			enabled: map[string]bool{config.EntryTags: true, config.EntryDeckName: true},
			order:   []string{config.EntryDeckName},
			want:    "nid: {nid}\ncreated: {created}\ndeck: {deck}\nfields: {fields_string}",
		},
		{
			name:    "unknown and duplicate order entries skipped",
			enabled: map[string]bool{config.EntryTags: true, "flags": true},
			order:   []string{"flags", config.EntryTags, config.EntryTags},
			want:    "nid: {nid}\ncreated: {created}\ntags: {tags_string}\nfields: {fields_string}",
		},
		{
			name:    "disabled toggle",
			enabled: map[string]bool{config.EntryTags: false},
			want:    "nid: {nid}\ncreated: {created}\nfields: {fields_string}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := Assemble(configWith(tt.enabled, tt.order))
			if tmpl.Text() != tt.want {
				t.Errorf("Assemble() =\n%s\nwant\n%s", tmpl.Text(), tt.want)
			}
		})
	}
}

func TestAssemble_AllOrderings(t *testing.T) {
	keys := config.OptionalEntryKeys
	enabled := map[string]bool{}
	for _, k := range keys {
		enabled[k] = true
	}

	// rotate the order list and check the sections follow it each time
	for shift := range keys {
		order := append(append([]string{}, keys[shift:]...), keys[:shift]...)
		tmpl := Assemble(configWith(enabled, order))
		if !reflect.DeepEqual(tmpl.Sections(), order) {
			t.Errorf("Sections() = %v, want %v", tmpl.Sections(), order)
		}
	}
}

func TestExtensions_UseKnownValueKeys(t *testing.T) {
	for section, text := range extensions {
		if err := placeholder.Check(text, ValueKeys...); err != nil {
			t.Errorf("extension %q: %v", section, err)
		}
	}
	if err := placeholder.Check(bodyHead+bodyTail, ValueKeys...); err != nil {
		t.Errorf("body: %v", err)
	}
	for _, key := range config.OptionalEntryKeys {
		if _, ok := extensions[key]; !ok {
			t.Errorf("optional section %q has no extension text", key)
		}
	}
}
