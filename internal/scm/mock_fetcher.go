package scm

import (
	"context"
	"time"
)

// MockFetcher is a test double for HistoryFetcher and ViewChecker.
// It returns canned data and records the bounds it was queried with.
type MockFetcher struct {
	Latest  *time.Time
	Entries []RawEntry
	Views   map[string]bool
	Err     error

	LatestCalls []FetchCall
	ListCalls   []FetchCall
}

// FetchCall records the arguments of one fetcher invocation.
type FetchCall struct {
	Rules []string
	Since *time.Time
}

// LatestSince returns the predefined latest timestamp or error.
func (m *MockFetcher) LatestSince(_ context.Context, rules []string, since *time.Time) (*time.Time, error) {
	m.LatestCalls = append(m.LatestCalls, FetchCall{Rules: rules, Since: since})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Latest, nil
}

// ListHistory returns the predefined raw entries or error.
func (m *MockFetcher) ListHistory(_ context.Context, rules []string, since *time.Time) ([]RawEntry, error) {
	m.ListCalls = append(m.ListCalls, FetchCall{Rules: rules, Since: since})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Entries, nil
}

// ViewExists reports the predefined existence of the named view.
func (m *MockFetcher) ViewExists(_ context.Context, name string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	return m.Views[name], nil
}

// Compile-time interface conformance checks.
var (
	_ HistoryFetcher = (*MockFetcher)(nil)
	_ ViewChecker    = (*MockFetcher)(nil)
)
