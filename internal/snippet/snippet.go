// Package snippet assembles the note template and renders notes through it.
//
// A snippet is the text block written for one note. Its template is built
// once per run from the configuration: three fixed lines (nid, created,
// fields) plus the optional sections the user switched on, in the order the
// configuration declares. Rendering fills the template's placeholders from
// a Values map produced for each note.
package snippet

// Placeholder names available to templates.
const (
	KeyNID           = "nid"
	KeyDID           = "did"
	KeyDeck          = "deck"
	KeyCreated       = "created"
	KeyNoteType      = "notetype"
	KeyTagsString    = "tags_string"
	KeyFieldNames    = "fieldnames_string"
	KeyFieldsString  = "fields_string"
	KeyHistoryString = "history_string"
	KeyForecast      = "forecast"
)

// ValueKeys is the closed set of keys a Values map may hold.
var ValueKeys = []string{
	KeyNID, KeyDID, KeyDeck, KeyCreated, KeyNoteType,
	KeyTagsString, KeyFieldNames, KeyFieldsString, KeyHistoryString, KeyForecast,
}

// Values maps placeholder names to the rendered strings for one note.
type Values map[string]string

// Meta holds the note attributes that are safe to use in file names.
type Meta struct {
	NID      string `json:"nid"`
	NoteType string `json:"notetype"`
	Deck     string `json:"deck"`
	Created  string `json:"created"`
}

// Map returns the meta attributes keyed by placeholder name.
func (m Meta) Map() map[string]string {
	return map[string]string{
		KeyNID:      m.NID,
		KeyNoteType: m.NoteType,
		KeyDeck:     m.Deck,
		KeyCreated:  m.Created,
	}
}
