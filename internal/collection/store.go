// Package collection reads notes out of an Anki collection.
//
// The Store interface is the record store the backup core depends on;
// Collection implements it over the SQLite file Anki keeps its data in.
package collection

import (
	"context"
	"errors"
	"time"
)

// ErrRecordNotFound is returned when a note id does not resolve.
var ErrRecordNotFound = errors.New("record not found")

// Record is one note as stored in the collection.
type Record struct {
	ID          int64
	TypeName    string
	FieldNames  []string
	FieldValues []string
	Tags        []string
	// ContainerID is the deck of the note's primary card, 0 when the note
	// has no cards.
	ContainerID int64
}

// Field returns the value of the named field.
func (r *Record) Field(name string) (string, bool) {
	for i, n := range r.FieldNames {
		if n == name && i < len(r.FieldValues) {
			return r.FieldValues[i], true
		}
	}
	return "", false
}

// QueueKind classifies where a note's primary card is scheduled.
type QueueKind int

// Queue kinds.
const (
	QueueUnknown QueueKind = iota
	QueueNew
	QueueFiltered
	QueueScheduled
)

func (k QueueKind) String() string {
	switch k {
	case QueueNew:
		return "new"
	case QueueFiltered:
		return "filtered"
	case QueueScheduled:
		return "scheduled"
	default:
		return "unknown"
	}
}

// SchedulingState is the next-due information of a note. Due is only set
// for QueueScheduled.
type SchedulingState struct {
	Queue QueueKind
	Due   time.Time
}

// Store is the read side of a note collection.
type Store interface {
	// FindRecordIDs returns the ids of notes matching query, ascending.
	// An empty query matches every note.
	FindRecordIDs(ctx context.Context, query string) ([]int64, error)
	// GetRecord returns the note with the given id or ErrRecordNotFound.
	GetRecord(ctx context.Context, id int64) (*Record, error)
	// ContainerName returns the full deck name for a deck id.
	ContainerName(ctx context.Context, containerID int64) (string, error)
	// RevisionTimestamps returns one millisecond timestamp per review of
	// any of the note's cards, oldest first.
	RevisionTimestamps(ctx context.Context, id int64) ([]int64, error)
	// SchedulingState reports when the note's primary card is next due.
	SchedulingState(ctx context.Context, id int64) (SchedulingState, error)
}
