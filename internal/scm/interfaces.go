package scm

import (
	"context"
	"time"
)

// RawEntry is one unvalidated history record as scraped from the
// underlying tool. Field parsing happens in the engine; a fetcher only
// frames records.
type RawEntry struct {
	Timestamp string
	Author    string
	Path      string
	Version   string
	Comment   string
}

// HistoryFetcher is the consumed contract of the version-control tool.
// Both methods scope their query to the given load rules. since is an
// exclusive lower bound; nil means all history.
// Tool launch and batch-level failures are reported as *ToolError.
type HistoryFetcher interface {
	// LatestSince returns the timestamp of the most recent change
	// strictly after since, or nil when there is none.
	LatestSince(ctx context.Context, rules []string, since *time.Time) (*time.Time, error)

	// ListHistory returns the raw change records strictly after since.
	ListHistory(ctx context.Context, rules []string, since *time.Time) ([]RawEntry, error)
}

// ViewChecker probes for the existence of a named view. It is used by
// configuration validation only, never on the build path.
type ViewChecker interface {
	ViewExists(ctx context.Context, name string) (bool, error)
}

// ChangelogWriter persists a change set to a destination. A write
// failure fails the checkout that produced the set.
type ChangelogWriter interface {
	Write(dest string, set *ChangeSet) error
}
