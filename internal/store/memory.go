package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps build records in memory. It backs tests and dry
// runs; nothing survives the process.
type MemoryStore struct {
	mu     sync.RWMutex
	builds map[int]*BuildRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{builds: make(map[int]*BuildRecord)}
}

// SaveBuild records one build.
func (s *MemoryStore) SaveBuild(_ context.Context, rec *BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	if rec.LatestCommit != nil {
		t := *rec.LatestCommit
		cp.LatestCommit = &t
	}
	s.builds[rec.Number] = &cp
	return nil
}

// LatestBuild returns the highest-numbered record.
func (s *MemoryStore) LatestBuild(_ context.Context) (*BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *BuildRecord
	for _, rec := range s.builds {
		if latest == nil || rec.Number > latest.Number {
			latest = rec
		}
	}
	if latest == nil {
		return nil, ErrNoBuilds
	}
	cp := *latest
	return &cp, nil
}

// ListBuilds returns up to limit records, newest first.
func (s *MemoryStore) ListBuilds(_ context.Context, limit int) ([]*BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*BuildRecord, 0, len(s.builds))
	for _, rec := range s.builds {
		cp := *rec
		recs = append(recs, &cp)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Number > recs[j].Number })

	if limit > 0 && limit < len(recs) {
		recs = recs[:limit]
	}
	return recs, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// Compile-time interface conformance check.
var _ Store = (*MemoryStore)(nil)
