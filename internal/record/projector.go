// Package record turns stored notes into the flat value maps that snippet
// templates are rendered from.
package record

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gorewood/textbackup/internal/collection"
	"github.com/gorewood/textbackup/internal/config"
	"github.com/gorewood/textbackup/internal/datefmt"
	"github.com/gorewood/textbackup/internal/snippet"
)

// Forecast values that are not dates.
const (
	ForecastNew      = "new"
	ForecastFiltered = "(filtered)"
)

// Projector reads notes from a store and projects them into snippet values.
type Projector struct {
	Store  collection.Store
	Config config.Config
	// Location is used for every formatted timestamp; nil means time.Local.
	Location *time.Location
}

// NewProjector returns a Projector using the local time zone.
func NewProjector(store collection.Store, cfg config.Config) *Projector {
	return &Projector{Store: store, Config: cfg, Location: time.Local}
}

// Project builds the value map and file-name attributes for note id.
// A missing note yields an error wrapping collection.ErrRecordNotFound.
func (p *Projector) Project(ctx context.Context, id int64) (snippet.Values, snippet.Meta, error) {
	rec, err := p.Store.GetRecord(ctx, id)
	if err != nil {
		return nil, snippet.Meta{}, err
	}

	names, titles, fields := p.selectFields(rec)

	deck, err := p.Store.ContainerName(ctx, rec.ContainerID)
	if err != nil {
		return nil, snippet.Meta{}, fmt.Errorf("deck of note %d: %w", id, err)
	}

	created, err := p.formatMillis(id)
	if err != nil {
		return nil, snippet.Meta{}, err
	}

	history, err := p.history(ctx, id)
	if err != nil {
		return nil, snippet.Meta{}, err
	}

	forecast, err := p.forecast(ctx, id)
	if err != nil {
		return nil, snippet.Meta{}, err
	}

	body, err := p.fieldsBody(titles, fields)
	if err != nil {
		return nil, snippet.Meta{}, err
	}

	sep := p.Config.FieldSeparator
	nid := strconv.FormatInt(id, 10)
	values := snippet.Values{
		snippet.KeyNID:           nid,
		snippet.KeyDID:           strconv.FormatInt(rec.ContainerID, 10),
		snippet.KeyDeck:          deck,
		snippet.KeyCreated:       created,
		snippet.KeyNoteType:      rec.TypeName,
		snippet.KeyTagsString:    strings.Join(rec.Tags, sep),
		snippet.KeyFieldNames:    strings.Join(names, sep),
		snippet.KeyFieldsString:  body,
		snippet.KeyHistoryString: strings.Join(history, sep),
		snippet.KeyForecast:      forecast,
	}
	meta := snippet.Meta{NID: nid, NoteType: rec.TypeName, Deck: deck, Created: created}
	return values, meta, nil
}

// Snippet projects note id and renders it through tmpl.
func (p *Projector) Snippet(ctx context.Context, tmpl snippet.Template, id int64) (string, snippet.Meta, error) {
	values, meta, err := p.Project(ctx, id)
	if err != nil {
		return "", snippet.Meta{}, err
	}
	text, err := snippet.Render(tmpl, values)
	if err != nil {
		return "", snippet.Meta{}, fmt.Errorf("render note %d: %w", id, err)
	}
	return text, meta, nil
}

// selectFields applies the per-type field list. It returns the names for
// fieldnames_string, the titles paired with values in single-line mode, and
// the values. An override keeps its full name list; names the note lacks
// get neither a title nor a value.
func (p *Projector) selectFields(rec *collection.Record) (names, titles, values []string) {
	override, ok := p.Config.FieldOverride(rec.TypeName)
	if !ok {
		return rec.FieldNames, rec.FieldNames, rec.FieldValues
	}
	for _, name := range override {
		if v, found := rec.Field(name); found {
			titles = append(titles, name)
			values = append(values, v)
		}
	}
	return override, titles, values
}

// fieldsBody builds fields_string. Single-line mode pairs titles with
// values and stops at the shorter list.
func (p *Projector) fieldsBody(titles, fields []string) (string, error) {
	cfg := p.Config
	if !cfg.SingleLinePerField {
		return cfg.FieldStarter + strings.Join(fields, cfg.FieldSeparator) + cfg.FieldCloser, nil
	}

	lines := []string{cfg.FieldStarter}
	for i := range min(len(titles), len(fields)) {
		title, err := snippet.RenderFieldTitle(cfg.SingleLineFieldTitle, titles[i])
		if err != nil {
			return "", err
		}
		lines = append(lines, title, fields[i], "")
	}
	lines = append(lines, cfg.FieldCloser)
	return strings.Join(lines, "\n"), nil
}

func (p *Projector) history(ctx context.Context, id int64) ([]string, error) {
	stamps, err := p.Store.RevisionTimestamps(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(stamps))
	for _, ms := range stamps {
		s, err := p.formatMillis(ms)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (p *Projector) forecast(ctx context.Context, id int64) (string, error) {
	state, err := p.Store.SchedulingState(ctx, id)
	if err != nil {
		return "", err
	}
	switch state.Queue {
	case collection.QueueNew:
		return ForecastNew, nil
	case collection.QueueFiltered:
		return ForecastFiltered, nil
	case collection.QueueScheduled:
		return datefmt.Format(p.Config.DateFormat, state.Due.In(p.location()))
	default:
		return "", nil
	}
}

func (p *Projector) formatMillis(ms int64) (string, error) {
	return datefmt.Format(p.Config.DateFormat, datefmt.FromMillis(ms, p.location()))
}

func (p *Projector) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}
