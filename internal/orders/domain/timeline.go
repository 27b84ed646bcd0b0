package domain

import "time"

// TimelineEntry records one status change. Entries are values and are never
// edited once appended.
type TimelineEntry struct {
	ID        uint
	Status    OrderStatus
	Note      string
	ActorID   uint
	CreatedAt time.Time
}

// Timeline is the append-only status history of an order.
// The zero value is an empty timeline.
type Timeline struct {
	entries []TimelineEntry
}

// NewTimeline rebuilds a timeline from stored entries, oldest first
func NewTimeline(entries []TimelineEntry) Timeline {
	cp := make([]TimelineEntry, len(entries))
	copy(cp, entries)
	return Timeline{entries: cp}
}

// Append adds an entry at the end
func (t *Timeline) Append(e TimelineEntry) {
	// full slice expression so a copy of t never shares the appended slot
	t.entries = append(t.entries[:len(t.entries):len(t.entries)], e)
}

// Len returns the number of entries
func (t Timeline) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the entries, oldest first
func (t Timeline) Entries() []TimelineEntry {
	cp := make([]TimelineEntry, len(t.entries))
	copy(cp, t.entries)
	return cp
}

// First returns the oldest entry
func (t Timeline) First() (TimelineEntry, bool) {
	if len(t.entries) == 0 {
		return TimelineEntry{}, false
	}
	return t.entries[0], true
}

// Last returns the newest entry
func (t Timeline) Last() (TimelineEntry, bool) {
	if len(t.entries) == 0 {
		return TimelineEntry{}, false
	}
	return t.entries[len(t.entries)-1], true
}

// Unsaved returns entries not yet assigned a storage id
func (t Timeline) Unsaved() []TimelineEntry {
	var out []TimelineEntry
	for _, e := range t.entries {
		if e.ID == 0 {
			out = append(out, e)
		}
	}
	return out
}
