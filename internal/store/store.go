// Package store persists the per-build bookkeeping the adapter needs
// between invocations: one record per build carrying the watermark the
// next poll baselines against.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNoBuilds is returned by LatestBuild when no build has been
// recorded yet.
var ErrNoBuilds = errors.New("no builds recorded")

// BuildRecord is the durable trace of one checkout.
type BuildRecord struct {
	ID            string
	Number        int
	BuiltAt       time.Time
	LatestCommit  *time.Time // nil when the build's change set was empty
	Entries       int
	ChangelogPath string
}

// Store is the build-state backend contract.
type Store interface {
	// SaveBuild records one build, replacing any record with the same
	// number.
	SaveBuild(ctx context.Context, rec *BuildRecord) error

	// LatestBuild returns the highest-numbered record, or ErrNoBuilds.
	LatestBuild(ctx context.Context) (*BuildRecord, error)

	// ListBuilds returns up to limit records, newest first. A
	// non-positive limit means all.
	ListBuilds(ctx context.Context, limit int) ([]*BuildRecord, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}
