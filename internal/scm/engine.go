package scm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Engine reconciles a build's recorded revision state against the
// remote history. It is stateless: every invocation receives its full
// context as parameters, so concurrent evaluations of different builds
// never share anything through the engine.
type Engine struct {
	fetcher HistoryFetcher
	writer  ChangelogWriter
	log     *zap.SugaredLogger
}

// NewEngine wires an engine to its tool and changelog collaborators.
func NewEngine(fetcher HistoryFetcher, writer ChangelogWriter, log *zap.SugaredLogger) *Engine {
	return &Engine{fetcher: fetcher, writer: writer, log: log}
}

// CompareParams carries the inputs of one baseline comparison.
type CompareParams struct {
	// Baseline is the revision state recorded by the last build, or
	// nil when no prior build produced one.
	Baseline *RevisionState

	// Rules scope the history query. Must be non-empty.
	Rules []string

	// QuietPeriod is how long the newest remote change must have been
	// at rest before it is considered buildable.
	QuietPeriod time.Duration

	// Now is the wall-clock time of the evaluation.
	Now time.Time
}

// CompareBaseline decides whether remote history has advanced past the
// baseline far enough to justify a build. Fetch failures propagate;
// they are never folded into a NoChanges decision.
func (e *Engine) CompareBaseline(ctx context.Context, p CompareParams) (Decision, error) {
	// No baseline means we have never built: always build.
	if p.Baseline == nil {
		e.log.Info("no baseline recorded, building")
		return BuildNow, nil
	}

	since := p.Baseline.Time
	remote, err := e.fetcher.LatestSince(ctx, p.Rules, &since)
	if err != nil {
		return NoChanges, fmt.Errorf("fetch latest remote change: %w", err)
	}

	if remote == nil {
		e.log.Debugw("no remote changes since baseline", "baseline", since)
		return NoChanges, nil
	}

	// A commit session may still be in progress: the newest change must
	// have settled for at least the quiet period before we act on it.
	if !remote.Add(p.QuietPeriod).Before(p.Now) {
		e.log.Infow("remote change still inside quiet period",
			"remote", *remote, "quietPeriod", p.QuietPeriod)
		return NoChanges, nil
	}

	if p.Baseline.Time.Before(*remote) {
		e.log.Infow("remote history advanced, building",
			"baseline", since, "remote", *remote)
		return BuildNow, nil
	}

	e.log.Debugw("remote not ahead of baseline", "baseline", since, "remote", *remote)
	return NoChanges, nil
}

// CheckoutParams carries the inputs of one checkout.
type CheckoutParams struct {
	// Build is the build the produced change set belongs to.
	Build BuildRef

	// Previous is the change set of the last build, or nil. Its latest
	// commit timestamp is the exclusive lower bound of the history
	// fetch; a nil or empty set means all history is fetched.
	Previous *ChangeSet

	// Rules scope the history query.
	Rules []string

	// ChangelogPath is the destination handed to the changelog writer.
	ChangelogPath string
}

// Checkout fetches the history that accumulated since the previous
// build, orders it newest first, writes the changelog and returns the
// resulting set. This is the sole point that advances the watermark the
// next comparison will baseline against.
func (e *Engine) Checkout(ctx context.Context, p CheckoutParams) (*ChangeSet, error) {
	var since *time.Time
	if latest, ok := p.Previous.LatestCommit(); ok {
		since = &latest
	}

	raw, err := e.fetcher.ListHistory(ctx, p.Rules, since)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	entries := make([]ChangeEntry, 0, len(raw))
	for _, r := range raw {
		entry, err := ParseEntry(r)
		if err != nil {
			// One bad record does not abort the batch.
			e.log.Warnw("skipping malformed history record", "error", err)
			continue
		}
		// The tool's since filter is not trusted to be exclusive:
		// anything at or before the bound was already consumed by a
		// previous build.
		if since != nil && !entry.Time.After(*since) {
			continue
		}
		entries = append(entries, entry)
	}

	set := NewChangeSet(p.Build, entries)
	e.log.Infow("checkout complete", "build", p.Build.Number, "entries", len(set.Entries))

	if err := e.writer.Write(p.ChangelogPath, set); err != nil {
		return nil, fmt.Errorf("write changelog: %w", err)
	}

	return set, nil
}
