package collection

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"modernc.org/sqlite"
)

// Newer collections declare name columns with Anki's own case-insensitive
// collation; SQLite refuses to compile statements touching those columns
// unless a collation of that name exists.
func init() {
	sqlite.MustRegisterCollationUtf8("unicase", func(left, right string) int {
		// Casers are stateful; build one per comparison.
		return strings.Compare(cases.Fold().String(left), cases.Fold().String(right))
	})
}

// Anki separates fields, and in newer schemas deck name components, with
// the unit separator.
const unitSeparator = "\x1f"

type noteType struct {
	name   string
	fields []string
}

// Collection is a read-only Store over an Anki collection file.
type Collection struct {
	db        *sql.DB
	path      string
	created   time.Time
	noteTypes map[int64]noteType
	decks     map[int64]string
}

var _ Store = (*Collection)(nil)

// Open opens the collection at path. The file must exist; it is never
// written.
func Open(ctx context.Context, path string) (*Collection, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA query_only = ON",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	c := &Collection{db: db, path: path}
	if err := c.loadSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the underlying database connection.
func (c *Collection) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the collection file path.
func (c *Collection) Path() string {
	return c.path
}

// NoteTypeNames returns the names of all note types, sorted.
func (c *Collection) NoteTypeNames() []string {
	names := make([]string, 0, len(c.noteTypes))
	for _, nt := range c.noteTypes {
		names = append(names, nt.name)
	}
	sort.Strings(names)
	return names
}

func (c *Collection) loadSchema(ctx context.Context) error {
	var crt int64
	var models, decks sql.NullString
	err := c.db.QueryRowContext(ctx, `SELECT crt, models, decks FROM col LIMIT 1`).Scan(&crt, &models, &decks)
	if err != nil {
		return fmt.Errorf("read collection header: %w", err)
	}
	c.created = time.Unix(crt, 0)

	split, err := c.hasTable(ctx, "notetypes")
	if err != nil {
		return err
	}
	if split {
		if err := c.loadNoteTypeTables(ctx); err != nil {
			return err
		}
		return c.loadDeckTable(ctx)
	}

	if c.noteTypes, err = parseLegacyModels(models.String); err != nil {
		return err
	}
	if c.decks, err = parseLegacyDecks(decks.String); err != nil {
		return err
	}
	return nil
}

func (c *Collection) hasTable(ctx context.Context, name string) (bool, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspect schema: %w", err)
	}
	return n > 0, nil
}

func (c *Collection) loadNoteTypeTables(ctx context.Context) error {
	c.noteTypes = make(map[int64]noteType)

	rows, err := c.db.QueryContext(ctx, `SELECT id, name FROM notetypes`)
	if err != nil {
		return fmt.Errorf("read note types: %w", err)
	}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan note type: %w", err)
		}
		c.noteTypes[id] = noteType{name: name}
	}
	if err := closeRows(rows); err != nil {
		return fmt.Errorf("read note types: %w", err)
	}

	rows, err = c.db.QueryContext(ctx, `SELECT ntid, name FROM fields ORDER BY ntid, ord`)
	if err != nil {
		return fmt.Errorf("read fields: %w", err)
	}
	for rows.Next() {
		var ntid int64
		var name string
		if err := rows.Scan(&ntid, &name); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan field: %w", err)
		}
		nt := c.noteTypes[ntid]
		nt.fields = append(nt.fields, name)
		c.noteTypes[ntid] = nt
	}
	if err := closeRows(rows); err != nil {
		return fmt.Errorf("read fields: %w", err)
	}
	return nil
}

func (c *Collection) loadDeckTable(ctx context.Context) error {
	c.decks = make(map[int64]string)

	rows, err := c.db.QueryContext(ctx, `SELECT id, name FROM decks`)
	if err != nil {
		return fmt.Errorf("read decks: %w", err)
	}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan deck: %w", err)
		}
		c.decks[id] = strings.ReplaceAll(name, unitSeparator, "::")
	}
	if err := closeRows(rows); err != nil {
		return fmt.Errorf("read decks: %w", err)
	}
	return nil
}

func closeRows(rows *sql.Rows) error {
	iterErr := rows.Err()
	closeErr := rows.Close()
	return errors.Join(iterErr, closeErr)
}

type legacyModel struct {
	Name   string `json:"name"`
	Fields []struct {
		Name string `json:"name"`
		Ord  int    `json:"ord"`
	} `json:"flds"`
}

func parseLegacyModels(raw string) (map[int64]noteType, error) {
	var models map[string]legacyModel
	if err := json.Unmarshal([]byte(raw), &models); err != nil {
		return nil, fmt.Errorf("parse note types: %w", err)
	}

	out := make(map[int64]noteType, len(models))
	for key, m := range models {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse note types: bad id %q", key)
		}
		flds := m.Fields
		sort.SliceStable(flds, func(i, j int) bool { return flds[i].Ord < flds[j].Ord })
		nt := noteType{name: m.Name}
		for _, f := range flds {
			nt.fields = append(nt.fields, f.Name)
		}
		out[id] = nt
	}
	return out, nil
}

func parseLegacyDecks(raw string) (map[int64]string, error) {
	var decks map[string]struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(raw), &decks); err != nil {
		return nil, fmt.Errorf("parse decks: %w", err)
	}

	out := make(map[int64]string, len(decks))
	for key, d := range decks {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse decks: bad id %q", key)
		}
		out[id] = d.Name
	}
	return out, nil
}
