package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Card type and queue values as stored by Anki.
const (
	cardTypeNew      = 0
	cardTypeLearning = 1
	cardTypeReview   = 2
	cardTypeRelearn  = 3

	queueLearning = 1
	queueReview   = 2
	queueDayLearn = 3
)

// Learning cards store their due time as epoch seconds; anything below this
// is a day number relative to the collection's creation.
const epochSecondsFloor = 1_000_000_000

// primaryCardQuery selects the card Anki lists first for a note.
const primaryCardQuery = `SELECT did, type, queue, due, odid FROM cards WHERE nid = ? ORDER BY ord, id LIMIT 1`

type card struct {
	deck     int64
	kind     int
	queue    int
	due      int64
	original int64
}

// FindRecordIDs implements Store.
func (c *Collection) FindRecordIDs(ctx context.Context, query string) ([]int64, error) {
	terms, err := ParseQuery(query)
	if err != nil {
		return nil, err
	}
	where, args, err := c.compile(terms)
	if err != nil {
		return nil, err
	}

	stmt := `SELECT n.id FROM notes n`
	if where != "" {
		stmt += ` WHERE ` + where
	}
	stmt += ` ORDER BY n.id`

	rows, err := c.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan note id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	return ids, nil
}

// GetRecord implements Store.
func (c *Collection) GetRecord(ctx context.Context, id int64) (*Record, error) {
	var mid int64
	var tags, flds string
	err := c.db.QueryRowContext(ctx, `SELECT mid, tags, flds FROM notes WHERE id = ?`, id).Scan(&mid, &tags, &flds)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %d: %w", id, ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read note %d: %w", id, err)
	}

	nt, ok := c.noteTypes[mid]
	if !ok {
		return nil, fmt.Errorf("note %d: unknown note type %d", id, mid)
	}

	rec := &Record{
		ID:          id,
		TypeName:    nt.name,
		FieldNames:  append([]string(nil), nt.fields...),
		FieldValues: strings.Split(flds, unitSeparator),
		Tags:        strings.Fields(tags),
	}

	primary, found, err := c.primaryCard(ctx, id)
	if err != nil {
		return nil, err
	}
	if found {
		rec.ContainerID = primary.deck
	}
	return rec, nil
}

// ContainerName implements Store. Unknown decks have an empty name.
func (c *Collection) ContainerName(_ context.Context, containerID int64) (string, error) {
	return c.decks[containerID], nil
}

// RevisionTimestamps implements Store.
func (c *Collection) RevisionTimestamps(ctx context.Context, id int64) ([]int64, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT r.id FROM revlog r JOIN cards c ON c.id = r.cid WHERE c.nid = ? ORDER BY r.id`, id)
	if err != nil {
		return nil, fmt.Errorf("read review log of note %d: %w", id, err)
	}
	var stamps []int64
	for rows.Next() {
		var ms int64
		if err := rows.Scan(&ms); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan review: %w", err)
		}
		stamps = append(stamps, ms)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("read review log of note %d: %w", id, err)
	}
	return stamps, nil
}

// SchedulingState implements Store.
func (c *Collection) SchedulingState(ctx context.Context, id int64) (SchedulingState, error) {
	primary, found, err := c.primaryCard(ctx, id)
	if err != nil || !found {
		return SchedulingState{Queue: QueueUnknown}, err
	}
	return c.schedule(primary), nil
}

func (c *Collection) schedule(cd card) SchedulingState {
	if cd.original != 0 {
		return SchedulingState{Queue: QueueFiltered}
	}
	if cd.kind == cardTypeNew {
		return SchedulingState{Queue: QueueNew}
	}

	switch cd.queue {
	case queueLearning:
		return SchedulingState{Queue: QueueScheduled, Due: time.Unix(cd.due, 0)}
	case queueReview, queueDayLearn:
		return SchedulingState{Queue: QueueScheduled, Due: c.dayDue(cd.due)}
	}

	// Suspended and buried cards keep their due value; interpret it by the
	// card type.
	switch cd.kind {
	case cardTypeReview:
		return SchedulingState{Queue: QueueScheduled, Due: c.dayDue(cd.due)}
	case cardTypeLearning, cardTypeRelearn:
		if cd.due >= epochSecondsFloor {
			return SchedulingState{Queue: QueueScheduled, Due: time.Unix(cd.due, 0)}
		}
		return SchedulingState{Queue: QueueScheduled, Due: c.dayDue(cd.due)}
	}
	return SchedulingState{Queue: QueueUnknown}
}

func (c *Collection) dayDue(days int64) time.Time {
	return c.created.Add(time.Duration(days) * 24 * time.Hour)
}

func (c *Collection) primaryCard(ctx context.Context, nid int64) (card, bool, error) {
	var cd card
	err := c.db.QueryRowContext(ctx, primaryCardQuery, nid).
		Scan(&cd.deck, &cd.kind, &cd.queue, &cd.due, &cd.original)
	if errors.Is(err, sql.ErrNoRows) {
		return card{}, false, nil
	}
	if err != nil {
		return card{}, false, fmt.Errorf("read cards of note %d: %w", nid, err)
	}
	return cd, true, nil
}
