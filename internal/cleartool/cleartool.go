// Package cleartool shells out to the ClearCase command-line tool and
// scrapes its output into the raw history records the reconciliation
// engine consumes.
package cleartool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/szigetigabor/simpleclearcase-plugin/internal/scm"
)

const toolName = "cleartool"

// historyFormat is the -fmt layout this package relies on: numeric
// date, user, element path, version and comment, tab-separated, one
// record per line. The comment is last so embedded tabs survive a
// bounded split. Multi-line comments continue on unprefixed lines.
const historyFormat = `%Nd\t%u\t%En\t%Vn\t%Nc\n`

// sinceLayout is the date layout cleartool accepts for -since.
const sinceLayout = "2-Jan-06.15:04:05"

// Tool wraps cleartool invocations against one view.
type Tool struct {
	bin      string
	viewRoot string
	view     string
	log      *zap.SugaredLogger
}

// New creates a wrapper running `bin` inside viewRoot/view. An empty
// bin falls back to "cleartool" on the PATH.
func New(bin, viewRoot, view string, log *zap.SugaredLogger) *Tool {
	if bin == "" {
		bin = toolName
	}
	return &Tool{bin: bin, viewRoot: viewRoot, view: view, log: log}
}

// ListHistory runs lshistory over the load rules and frames the output
// into raw records. since is passed to -since; exact exclusivity is
// enforced by the caller.
func (t *Tool) ListHistory(ctx context.Context, rules []string, since *time.Time) ([]scm.RawEntry, error) {
	args := []string{"lshistory", "-recurse", "-nco", "-fmt", historyFormat}
	if since != nil {
		args = append(args, "-since", since.Format(sinceLayout))
	}
	args = append(args, rules...)

	out, err := t.run(ctx, args...)
	if err != nil {
		return nil, scm.NewToolError(toolName, "lshistory", err)
	}

	entries, err := parseHistory(out)
	if err != nil {
		return nil, scm.NewToolError(toolName, "lshistory", err)
	}

	t.log.Debugw("lshistory scraped", "view", t.view, "records", len(entries))
	return entries, nil
}

// LatestSince returns the timestamp of the newest history record
// strictly after since, or nil when nothing is newer.
func (t *Tool) LatestSince(ctx context.Context, rules []string, since *time.Time) (*time.Time, error) {
	entries, err := t.ListHistory(ctx, rules, since)
	if err != nil {
		return nil, err
	}
	return latestTimestamp(entries, since), nil
}

// latestTimestamp scans raw records for the maximum timestamp strictly
// after since. Records with unparseable timestamps cannot advance the
// watermark; the checkout pass reports them properly.
func latestTimestamp(entries []scm.RawEntry, since *time.Time) *time.Time {
	var latest *time.Time
	for _, e := range entries {
		when, err := time.ParseInLocation(scm.TimestampLayout, strings.TrimSpace(e.Timestamp), time.Local)
		if err != nil {
			continue
		}
		if since != nil && !when.After(*since) {
			continue
		}
		if latest == nil || when.After(*latest) {
			w := when
			latest = &w
		}
	}
	return latest
}

// ViewExists probes for the named view with lsview. A non-zero exit
// means the view does not exist; launch failures are tool errors.
func (t *Tool) ViewExists(ctx context.Context, name string) (bool, error) {
	_, err := t.run(ctx, "lsview", "-short", name)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, scm.NewToolError(toolName, "lsview", err)
	}
	return true, nil
}

func (t *Tool) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, t.bin, args...)
	if t.viewRoot != "" {
		cmd.Dir = filepath.Join(t.viewRoot, t.view)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %s", t.bin, args[0], err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// parseHistory frames lshistory output into raw records. A record line
// starts with the numeric date; any other non-empty line continues the
// previous record's comment. Output that starts mid-record cannot be
// framed and fails the whole batch.
func parseHistory(out []byte) ([]scm.RawEntry, error) {
	var entries []scm.RawEntry

	for _, line := range bytes.Split(out, []byte{'\n'}) {
		s := strings.TrimRight(string(line), "\r")
		if strings.TrimSpace(s) == "" {
			continue
		}

		if !startsRecord(s) {
			if len(entries) == 0 {
				return nil, fmt.Errorf("unexpected lshistory output: %q", s)
			}
			last := &entries[len(entries)-1]
			if last.Comment != "" {
				last.Comment += "\n"
			}
			last.Comment += s
			continue
		}

		fields := strings.SplitN(s, "\t", 5)
		entry := scm.RawEntry{Timestamp: fields[0]}
		if len(fields) > 1 {
			entry.Author = fields[1]
		}
		if len(fields) > 2 {
			entry.Path = fields[2]
		}
		if len(fields) > 3 {
			entry.Version = fields[3]
		}
		if len(fields) > 4 {
			entry.Comment = fields[4]
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// startsRecord reports whether the line begins with a numeric date
// (YYYYMMDD.HHMMSS) followed by a field separator.
func startsRecord(line string) bool {
	if len(line) < len(scm.TimestampLayout) {
		return false
	}
	for i := 0; i < 8; i++ {
		if line[i] < '0' || line[i] > '9' {
			return false
		}
	}
	if line[8] != '.' {
		return false
	}
	for i := 9; i < 15; i++ {
		if line[i] < '0' || line[i] > '9' {
			return false
		}
	}
	return len(line) > 15 && line[15] == '\t'
}

// Compile-time interface conformance checks.
var (
	_ scm.HistoryFetcher = (*Tool)(nil)
	_ scm.ViewChecker    = (*Tool)(nil)
)
