package scm

import (
	"sort"
	"time"
)

// TimestampLayout is the numeric date format cleartool emits for %Nd
// (for example "20111204.143258"). All raw history records carry their
// timestamp in this layout, in the local zone of the view server.
const TimestampLayout = "20060102.150405"

// InitialVersion is the version label a FileElement carries before the
// element has a known version on its branch.
const InitialVersion = "0"

// FileElement identifies one file touched by a change, together with
// the version label it was checked in at.
type FileElement struct {
	Path    string
	Version string
}

// NewFileElement creates a FileElement whose version is not yet known.
func NewFileElement(path string) FileElement {
	return FileElement{Path: path, Version: InitialVersion}
}

// ChangeEntry is one change event scraped from history: a check-in at a
// point in time by one author, touching one or more file elements.
// Entries are value types and are never mutated after construction.
type ChangeEntry struct {
	Time    time.Time
	Author  string
	Files   []FileElement
	Comment string
}

// BuildRef identifies the build a change set belongs to.
type BuildRef struct {
	ID     string
	Number int
}

// ChangeSet is the ordered collection of entries attributed to one
// build attempt. Entries are sorted per ChangelogOrder before the set
// is handed to a writer.
type ChangeSet struct {
	Build   BuildRef
	Entries []ChangeEntry
}

// NewChangeSet builds a change set for the given build with entries
// sorted in the system-wide changelog order.
func NewChangeSet(build BuildRef, entries []ChangeEntry) *ChangeSet {
	SortEntries(entries, ChangelogOrder)
	return &ChangeSet{Build: build, Entries: entries}
}

// IsEmpty reports whether the set holds no entries. A nil set is empty.
func (s *ChangeSet) IsEmpty() bool {
	return s == nil || len(s.Entries) == 0
}

// LatestCommit returns the most recent entry timestamp in the set.
// The second return value is false for an empty set; callers must not
// treat an empty set as the zero time.
func (s *ChangeSet) LatestCommit() (time.Time, bool) {
	if s.IsEmpty() {
		return time.Time{}, false
	}
	latest := s.Entries[0].Time
	for _, e := range s.Entries[1:] {
		if e.Time.After(latest) {
			latest = e.Time
		}
	}
	return latest, true
}

// Order is the direction entries are sorted in.
type Order int

const (
	OrderIncreasing Order = iota
	OrderDecreasing
)

// ChangelogOrder is the fixed system-wide order for change sets:
// newest entry first.
const ChangelogOrder = OrderDecreasing

// String returns a string representation of the order.
func (o Order) String() string {
	switch o {
	case OrderIncreasing:
		return "increasing"
	case OrderDecreasing:
		return "decreasing"
	default:
		return "unknown"
	}
}

// SortEntries sorts entries by timestamp in the given order. The sort
// is stable: entries with equal timestamps keep their input order.
func SortEntries(entries []ChangeEntry, order Order) {
	sort.SliceStable(entries, func(i, j int) bool {
		if order == OrderDecreasing {
			return entries[j].Time.Before(entries[i].Time)
		}
		return entries[i].Time.Before(entries[j].Time)
	})
}

// Decision is the outcome of a baseline comparison.
type Decision int

const (
	// NoChanges is the zero value so that a decision read after an
	// ignored error never triggers a build.
	NoChanges Decision = iota
	BuildNow
)

// String returns a string representation of the decision.
func (d Decision) String() string {
	switch d {
	case BuildNow:
		return "BUILD_NOW"
	case NoChanges:
		return "NO_CHANGES"
	default:
		return "unknown"
	}
}
