package collection

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

const fixtureCreated = 1500000000

const legacySchema = `
CREATE TABLE col (id integer primary key, crt integer not null, models text not null, decks text not null);
CREATE TABLE notes (id integer primary key, mid integer not null, tags text not null, flds text not null);
CREATE TABLE cards (id integer primary key, nid integer not null, did integer not null, ord integer not null,
	type integer not null, queue integer not null, due integer not null, odid integer not null default 0);
CREATE TABLE revlog (id integer primary key, cid integer not null);
`

const legacyModels = `{
	"1000": {"name": "Basic", "flds": [{"name": "Back", "ord": 1}, {"name": "Front", "ord": 0}]},
	"2000": {"name": "Cloze", "flds": [{"name": "Text", "ord": 0}, {"name": "Extra", "ord": 1}]}
}`

const legacyDecks = `{
	"1": {"name": "Default"},
	"10": {"name": "French"},
	"11": {"name": "French::Verbs"},
	"20": {"name": "Filtered"}
}`

func execAll(t *testing.T, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
}

// newLegacyFixture writes a schema 11 collection with four notes:
//
//	...001 Basic, French::Verbs, reviewed twice, due in 10 days
//	...002 Basic, French, new
//	...003 Cloze, in a filtered deck (home deck Default)
//	...004 Basic, Default, suspended review card
func newLegacyFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collection.anki2")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer func() { _ = db.Close() }()

	execAll(t, db, legacySchema)
	if _, err := db.Exec(`INSERT INTO col (id, crt, models, decks) VALUES (1, ?, ?, ?)`,
		fixtureCreated, legacyModels, legacyDecks); err != nil {
		t.Fatalf("insert col: %v", err)
	}

	notes := []struct {
		id   int64
		mid  int64
		tags string
		flds string
	}{
		{1500000000001, 1000, " verb irregular ", "être\x1fto be"},
		{1500000000002, 1000, " noun ", "chat\x1fcat"},
		{1500000000003, 2000, " grammar::articles ", "{{c1::le}} chat\x1fmasculine"},
		{1500000000004, 1000, "", "100%\x1fpercent"},
	}
	for _, n := range notes {
		if _, err := db.Exec(`INSERT INTO notes (id, mid, tags, flds) VALUES (?, ?, ?, ?)`,
			n.id, n.mid, n.tags, n.flds); err != nil {
			t.Fatalf("insert note: %v", err)
		}
	}

	execAll(t, db,
		`INSERT INTO cards VALUES (101, 1500000000001, 11, 0, 2, 2, 10, 0)`,
		`INSERT INTO cards VALUES (102, 1500000000002, 10, 0, 0, 0, 5, 0)`,
		`INSERT INTO cards VALUES (103, 1500000000003, 20, 0, 1, 1, 1500003600, 1)`,
		`INSERT INTO cards VALUES (104, 1500000000003, 1, 1, 0, 0, 6, 0)`,
		`INSERT INTO cards VALUES (105, 1500000000004, 1, 0, 2, -1, 20, 0)`,
		`INSERT INTO revlog VALUES (1500000200000, 101)`,
		`INSERT INTO revlog VALUES (1500000100000, 101)`,
	)
	return path
}

func openFixture(t *testing.T, path string) *Collection {
	t.Helper()
	c, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope.anki2"))
	if err == nil {
		t.Fatal("Open() error = nil, want error for missing file")
	}
}

func TestGetRecord(t *testing.T) {
	c := openFixture(t, newLegacyFixture(t))
	ctx := context.Background()

	rec, err := c.GetRecord(ctx, 1500000000001)
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}

	want := &Record{
		ID:          1500000000001,
		TypeName:    "Basic",
		FieldNames:  []string{"Front", "Back"},
		FieldValues: []string{"être", "to be"},
		Tags:        []string{"verb", "irregular"},
		ContainerID: 11,
	}
	if !reflect.DeepEqual(rec, want) {
		t.Errorf("GetRecord() = %+v, want %+v", rec, want)
	}

	if v, ok := rec.Field("Back"); !ok || v != "to be" {
		t.Errorf("Field(Back) = %q, %v", v, ok)
	}
	if _, ok := rec.Field("Extra"); ok {
		t.Error("Field(Extra) found on a Basic note")
	}
}

func TestGetRecord_PrimaryCardIsLowestOrd(t *testing.T) {
	c := openFixture(t, newLegacyFixture(t))

	rec, err := c.GetRecord(context.Background(), 1500000000003)
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if rec.ContainerID != 20 {
		t.Errorf("ContainerID = %d, want 20", rec.ContainerID)
	}
}

func TestGetRecord_NotFound(t *testing.T) {
	c := openFixture(t, newLegacyFixture(t))

	_, err := c.GetRecord(context.Background(), 42)
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("GetRecord() error = %v, want ErrRecordNotFound", err)
	}
}

func TestContainerName(t *testing.T) {
	c := openFixture(t, newLegacyFixture(t))
	ctx := context.Background()

	tests := []struct {
		id   int64
		want string
	}{
		{11, "French::Verbs"},
		{1, "Default"},
		{999, ""},
	}
	for _, tt := range tests {
		got, err := c.ContainerName(ctx, tt.id)
		if err != nil {
			t.Fatalf("ContainerName(%d) error = %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("ContainerName(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestRevisionTimestamps(t *testing.T) {
	c := openFixture(t, newLegacyFixture(t))
	ctx := context.Background()

	got, err := c.RevisionTimestamps(ctx, 1500000000001)
	if err != nil {
		t.Fatalf("RevisionTimestamps() error = %v", err)
	}
	want := []int64{1500000100000, 1500000200000}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RevisionTimestamps() = %v, want %v", got, want)
	}

	none, err := c.RevisionTimestamps(ctx, 1500000000002)
	if err != nil {
		t.Fatalf("RevisionTimestamps() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("RevisionTimestamps() = %v, want none", none)
	}
}

func TestSchedulingState(t *testing.T) {
	c := openFixture(t, newLegacyFixture(t))
	ctx := context.Background()
	day := 24 * time.Hour
	created := time.Unix(fixtureCreated, 0)

	tests := []struct {
		name string
		nid  int64
		want SchedulingState
	}{
		{"review", 1500000000001, SchedulingState{Queue: QueueScheduled, Due: created.Add(10 * day)}},
		{"new", 1500000000002, SchedulingState{Queue: QueueNew}},
		{"filtered", 1500000000003, SchedulingState{Queue: QueueFiltered}},
		{"suspended review", 1500000000004, SchedulingState{Queue: QueueScheduled, Due: created.Add(20 * day)}},
		{"no cards", 42, SchedulingState{Queue: QueueUnknown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.SchedulingState(ctx, tt.nid)
			if err != nil {
				t.Fatalf("SchedulingState() error = %v", err)
			}
			if got.Queue != tt.want.Queue || !got.Due.Equal(tt.want.Due) {
				t.Errorf("SchedulingState() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSchedule_LearningCard(t *testing.T) {
	c := &Collection{created: time.Unix(fixtureCreated, 0)}

	got := c.schedule(card{kind: cardTypeLearning, queue: queueLearning, due: 1500003600})
	if got.Queue != QueueScheduled || !got.Due.Equal(time.Unix(1500003600, 0)) {
		t.Errorf("schedule() = %+v", got)
	}

	buried := c.schedule(card{kind: cardTypeRelearn, queue: -2, due: 3})
	if !buried.Due.Equal(time.Unix(fixtureCreated, 0).Add(3 * 24 * time.Hour)) {
		t.Errorf("schedule() buried relearn = %+v", buried)
	}
}

func TestNewSchemaCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collection.anki2")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	execAll(t, db,
		`CREATE TABLE col (id integer primary key, crt integer not null, models text not null, decks text not null)`,
		`CREATE TABLE notes (id integer primary key, mid integer not null, tags text not null, flds text not null)`,
		`CREATE TABLE cards (id integer primary key, nid integer not null, did integer not null, ord integer not null,
			type integer not null, queue integer not null, due integer not null, odid integer not null default 0)`,
		`CREATE TABLE revlog (id integer primary key, cid integer not null)`,
		`CREATE TABLE notetypes (id integer primary key, name text not null COLLATE unicase)`,
		`CREATE INDEX idx_notetypes_name ON notetypes (name)`,
		`CREATE TABLE fields (ntid integer not null, ord integer not null, name text not null COLLATE unicase, primary key (ntid, ord))`,
		`CREATE TABLE decks (id integer primary key, name text not null COLLATE unicase)`,
		`INSERT INTO col VALUES (1, 1500000000, '', '')`,
		`INSERT INTO notetypes VALUES (7, 'Vocab')`,
		`INSERT INTO fields VALUES (7, 1, 'Meaning'), (7, 0, 'Word')`,
		"INSERT INTO decks VALUES (3, 'Lang\x1fJapanese')",
		"INSERT INTO notes VALUES (1600000000000, 7, ' jp ', '猫\x1fcat')",
		`INSERT INTO cards VALUES (900, 1600000000000, 3, 0, 0, 0, 1, 0)`,
	)
	_ = db.Close()

	c := openFixture(t, path)
	ctx := context.Background()

	rec, err := c.GetRecord(ctx, 1600000000000)
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if rec.TypeName != "Vocab" || !reflect.DeepEqual(rec.FieldNames, []string{"Word", "Meaning"}) {
		t.Errorf("GetRecord() = %+v", rec)
	}

	name, err := c.ContainerName(ctx, rec.ContainerID)
	if err != nil || name != "Lang::Japanese" {
		t.Errorf("ContainerName() = %q, %v, want Lang::Japanese", name, err)
	}

	ids, err := c.FindRecordIDs(ctx, "deck:lang note:VOCAB")
	if err != nil {
		t.Fatalf("FindRecordIDs() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []int64{1600000000000}) {
		t.Errorf("FindRecordIDs() = %v", ids)
	}

	if got := c.NoteTypeNames(); !reflect.DeepEqual(got, []string{"Vocab"}) {
		t.Errorf("NoteTypeNames() = %v", got)
	}
}
