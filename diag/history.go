package diag

import (
	"time"

	"github.com/redsalamander/folderview/storage"
)

// EnumerationRecord is one completed enumeration's outcome, kept for the
// host's diagnostics view.
type EnumerationRecord struct {
	Folder   string
	Items    int
	Duration time.Duration
	Failed   bool
}

// History holds a bounded window of recent pane activity.
type History struct {
	enumerations *storage.RingBuffer[EnumerationRecord]
}

// NewHistory creates a history window of the given capacity.
func NewHistory(capacity int) *History {
	return &History{enumerations: storage.NewRingBuffer[EnumerationRecord](capacity)}
}

// RecordEnumeration appends one completed (or failed) enumeration.
func (h *History) RecordEnumeration(rec EnumerationRecord) {
	h.enumerations.Add(rec)
}

// RecentEnumerations returns the last n records, oldest first.
func (h *History) RecentEnumerations(n int) []EnumerationRecord {
	return h.enumerations.GetLast(n)
}
