package snippet

import (
	"strings"

	"github.com/gorewood/textbackup/internal/config"
)

// bodyHead and bodyTail surround the optional sections.
const (
	bodyHead = "nid: {nid}\ncreated: {created}"
	bodyTail = "\nfields: {fields_string}"
)

// extensions holds the text appended for each optional section.
var extensions = map[string]string{
	config.EntryNoteTypeName: "notetype: {notetype}",
	config.EntryDeckName:     "deck: {deck}",
	config.EntryTags:         "tags: {tags_string}",
	config.EntryScheduling:   "history: {history_string}\nforecast: {forecast}",
	config.EntryFieldNames:   "fieldnames: {fieldnames_string}",
}

// Template is an assembled snippet template.
type Template struct {
	text     string
	sections []string
}

// Text returns the template source.
func (t Template) Text() string {
	return t.text
}

// Sections returns the optional sections included, in rendering order.
func (t Template) Sections() []string {
	return append([]string(nil), t.sections...)
}

// Assemble builds the snippet template for cfg.
//
// Sections are taken from cfg.OptionalEntriesOrder, which is authoritative:
// an enabled section missing from the order list is not rendered. Unknown
// and repeated entries in the order list are skipped. With nothing enabled
// the template is exactly the three fixed lines.
func Assemble(cfg config.Config) Template {
	var parts []string
	var sections []string
	seen := make(map[string]bool)

	for _, key := range cfg.OptionalEntriesOrder {
		ext, known := extensions[key]
		if !known || seen[key] || !cfg.Enabled(key) {
			continue
		}
		seen[key] = true
		parts = append(parts, ext)
		sections = append(sections, key)
	}

	var b strings.Builder
	b.WriteString(bodyHead)
	if len(parts) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(parts, "\n"))
	}
	b.WriteString(bodyTail)

	return Template{text: b.String(), sections: sections}
}
