package scm

import (
	"fmt"
	"strings"
	"time"
)

// ParseEntry validates one raw history record and converts it into a
// ChangeEntry. Timestamps are parsed in local time, which is what
// cleartool prints. An error here marks a single malformed record; the
// caller decides whether to skip it or abort.
func ParseEntry(raw RawEntry) (ChangeEntry, error) {
	when, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(raw.Timestamp), time.Local)
	if err != nil {
		return ChangeEntry{}, fmt.Errorf("parse timestamp %q: %w", raw.Timestamp, err)
	}

	path := strings.TrimSpace(raw.Path)
	if path == "" {
		return ChangeEntry{}, fmt.Errorf("record at %s has no element path", raw.Timestamp)
	}

	elem := NewFileElement(path)
	if v := strings.TrimSpace(raw.Version); v != "" {
		elem.Version = v
	}

	return ChangeEntry{
		Time:    when,
		Author:  strings.TrimSpace(raw.Author),
		Files:   []FileElement{elem},
		Comment: raw.Comment,
	}, nil
}
