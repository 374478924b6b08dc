package store

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh identifier such as "card-0c5d...". Identifiers are never reused.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Record is implemented by pointers to records that carry a string identifier.
type Record[T any] interface {
	*T
	RecordID() *string
}

// BackfillIDs assigns a fresh id to every record whose id is empty or repeats an
// earlier one. It returns the number of ids it assigned.
func BackfillIDs[T any, P Record[T]](items []T, prefix string) int {
	seen := make(map[string]bool, len(items))
	assigned := 0
	for i := range items {
		id := P(&items[i]).RecordID()
		if *id == "" || seen[*id] {
			*id = NewID(prefix)
			assigned++
		}
		seen[*id] = true
	}
	return assigned
}

// IndexOf returns the position of the record with the given id, or -1.
func IndexOf[T any, P Record[T]](items []T, id string) int {
	for i := range items {
		if *P(&items[i]).RecordID() == id {
			return i
		}
	}
	return -1
}

// DateKey formats t as the local calendar date used to key aggregate rows.
func DateKey(t time.Time) string {
	return t.In(time.Local).Format(time.DateOnly)
}

// StartOfDay returns local midnight of t's calendar date.
func StartOfDay(t time.Time) time.Time {
	l := t.In(time.Local)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.Local)
}
