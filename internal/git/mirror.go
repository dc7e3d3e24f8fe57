// Package git implements the history fetcher contracts over a local
// git clone, for projects whose ClearCase views are mirrored into git.
// Load rules act as doublestar glob scopes on repository paths.
package git

import (
	"context"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"

	"github.com/szigetigabor/simpleclearcase-plugin/internal/scm"
)

const shortHashLen = 7

// MirrorFetcher reads change history from a git mirror of the view.
type MirrorFetcher struct {
	repo   *gogit.Repository
	branch string
	log    *zap.SugaredLogger
}

// Open opens the mirror clone at path. An empty branch means HEAD.
func Open(path, branch string, log *zap.SugaredLogger) (*MirrorFetcher, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return nil, scm.NewToolError("git", "open", err)
	}
	return &MirrorFetcher{repo: repo, branch: branch, log: log}, nil
}

// ListHistory returns one raw record per file touched by each commit
// strictly after since, scoped to the load rules. The commit's short
// hash serves as the version label.
func (f *MirrorFetcher) ListHistory(ctx context.Context, rules []string, since *time.Time) ([]scm.RawEntry, error) {
	var entries []scm.RawEntry

	err := f.walk(ctx, since, func(c *object.Commit, paths []string) {
		when := c.Committer.When.Local().Format(scm.TimestampLayout)
		version := c.Hash.String()[:shortHashLen]
		comment := firstLine(c.Message)

		for _, path := range paths {
			if !matchesRules(path, rules) {
				continue
			}
			entries = append(entries, scm.RawEntry{
				Timestamp: when,
				Author:    c.Author.Name,
				Path:      path,
				Version:   version,
				Comment:   comment,
			})
		}
	})
	if err != nil {
		return nil, err
	}

	f.log.Debugw("mirror history read", "records", len(entries))
	return entries, nil
}

// LatestSince returns the committer timestamp of the newest commit
// strictly after since that touches a rule-scoped path, or nil.
func (f *MirrorFetcher) LatestSince(ctx context.Context, rules []string, since *time.Time) (*time.Time, error) {
	var latest *time.Time

	err := f.walk(ctx, since, func(c *object.Commit, paths []string) {
		for _, path := range paths {
			if !matchesRules(path, rules) {
				continue
			}
			when := c.Committer.When.Local()
			if latest == nil || when.After(*latest) {
				w := when
				latest = &w
			}
			return
		}
	})
	if err != nil {
		return nil, err
	}
	return latest, nil
}

// ViewExists reports whether the named branch or tag exists in the
// mirror.
func (f *MirrorFetcher) ViewExists(_ context.Context, name string) (bool, error) {
	if _, err := f.repo.Reference(plumbing.NewBranchReferenceName(name), true); err == nil {
		return true, nil
	} else if err != plumbing.ErrReferenceNotFound {
		return false, scm.NewToolError("git", "reference", err)
	}
	if _, err := f.repo.Reference(plumbing.NewTagReferenceName(name), true); err == nil {
		return true, nil
	} else if err != plumbing.ErrReferenceNotFound {
		return false, scm.NewToolError("git", "reference", err)
	}
	return false, nil
}

// walk visits every commit after since, newest-first from the
// configured branch tip, handing each commit and its changed paths to
// visit. Commits without parents are skipped: they carry the mirror's
// import baseline, not reviewable changes.
func (f *MirrorFetcher) walk(ctx context.Context, since *time.Time, visit func(*object.Commit, []string)) error {
	from, err := f.tip()
	if err != nil {
		return err
	}

	logOpts := &gogit.LogOptions{From: from}
	if since != nil {
		s := *since
		logOpts.Since = &s
	}

	iter, err := f.repo.Log(logOpts)
	if err != nil {
		return scm.NewToolError("git", "log", err)
	}

	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.NumParents() == 0 {
			return nil
		}
		// Log's Since filter is inclusive; the contract is exclusive.
		if since != nil && !c.Committer.When.After(*since) {
			return nil
		}

		paths, err := changedPaths(c)
		if err != nil {
			return err
		}
		if len(paths) > 0 {
			visit(c, paths)
		}
		return nil
	})
	if err != nil {
		return scm.NewToolError("git", "log", err)
	}
	return nil
}

func (f *MirrorFetcher) tip() (plumbing.Hash, error) {
	if f.branch != "" {
		ref, err := f.repo.Reference(plumbing.NewBranchReferenceName(f.branch), true)
		if err != nil {
			return plumbing.ZeroHash, scm.NewToolError("git", "reference", err)
		}
		return ref.Hash(), nil
	}
	ref, err := f.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, scm.NewToolError("git", "head", err)
	}
	return ref.Hash(), nil
}

// changedPaths extracts the file paths a commit touched relative to its
// first parent.
func changedPaths(c *object.Commit) ([]string, error) {
	parent, err := c.Parent(0)
	if err != nil {
		return nil, err
	}
	patch, err := parent.Patch(c)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, filePatch := range patch.FilePatches() {
		from, to := filePatch.Files()
		var path string
		if to != nil {
			path = to.Path()
		} else if from != nil {
			path = from.Path()
		}
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// matchesRules reports whether path falls under any load rule. A rule
// is a doublestar pattern; a plain directory rule scopes everything
// beneath it.
func matchesRules(path string, rules []string) bool {
	for _, rule := range rules {
		rule = strings.TrimSuffix(strings.TrimSpace(rule), "/")
		if rule == "" {
			continue
		}
		if ok, err := doublestar.Match(rule, path); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(rule+"/**", path); err == nil && ok {
			return true
		}
	}
	return false
}

func firstLine(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx != -1 {
		return message[:idx]
	}
	return message
}

// Compile-time interface conformance checks.
var (
	_ scm.HistoryFetcher = (*MirrorFetcher)(nil)
	_ scm.ViewChecker    = (*MirrorFetcher)(nil)
)
