package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps build records in Redis so a farm of pollers can
// share one watermark. Records live as JSON in a hash keyed by build
// number, with a separate pointer to the latest number.
type RedisStore struct {
	rdb       redis.UniversalClient
	keyPrefix string
	log       *zap.SugaredLogger
}

type redisBuild struct {
	ID            string     `json:"id"`
	Number        int        `json:"number"`
	BuiltAt       time.Time  `json:"built_at"`
	LatestCommit  *time.Time `json:"latest_commit,omitempty"`
	Entries       int        `json:"entries"`
	ChangelogPath string     `json:"changelog_path"`
}

// NewRedisStore wraps an existing client. keyPrefix namespaces the
// keys, typically per project.
func NewRedisStore(rdb redis.UniversalClient, keyPrefix string, log *zap.SugaredLogger) *RedisStore {
	return &RedisStore{rdb: rdb, keyPrefix: keyPrefix, log: log}
}

func (s *RedisStore) buildsKey() string { return s.keyPrefix + ":builds" }
func (s *RedisStore) latestKey() string { return s.keyPrefix + ":latest" }

// SaveBuild records one build and advances the latest pointer when the
// number is the highest seen.
func (s *RedisStore) SaveBuild(ctx context.Context, rec *BuildRecord) error {
	raw, err := json.Marshal(redisBuild{
		ID:            rec.ID,
		Number:        rec.Number,
		BuiltAt:       rec.BuiltAt,
		LatestCommit:  rec.LatestCommit,
		Entries:       rec.Entries,
		ChangelogPath: rec.ChangelogPath,
	})
	if err != nil {
		return fmt.Errorf("marshal build %d: %w", rec.Number, err)
	}

	if err := s.rdb.HSet(ctx, s.buildsKey(), strconv.Itoa(rec.Number), raw).Err(); err != nil {
		return fmt.Errorf("save build %d: %w", rec.Number, err)
	}

	current, err := s.rdb.Get(ctx, s.latestKey()).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("read latest pointer: %w", err)
	}
	if errors.Is(err, redis.Nil) || rec.Number > current {
		if err := s.rdb.Set(ctx, s.latestKey(), rec.Number, 0).Err(); err != nil {
			return fmt.Errorf("advance latest pointer: %w", err)
		}
	}
	return nil
}

// LatestBuild returns the record the latest pointer names.
func (s *RedisStore) LatestBuild(ctx context.Context) (*BuildRecord, error) {
	number, err := s.rdb.Get(ctx, s.latestKey()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoBuilds
	}
	if err != nil {
		return nil, fmt.Errorf("read latest pointer: %w", err)
	}

	raw, err := s.rdb.HGet(ctx, s.buildsKey(), number).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoBuilds
	}
	if err != nil {
		return nil, fmt.Errorf("load build %s: %w", number, err)
	}
	return unmarshalBuild([]byte(raw))
}

// ListBuilds returns up to limit records, newest first.
func (s *RedisStore) ListBuilds(ctx context.Context, limit int) ([]*BuildRecord, error) {
	raw, err := s.rdb.HGetAll(ctx, s.buildsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}

	recs := make([]*BuildRecord, 0, len(raw))
	for _, v := range raw {
		rec, err := unmarshalBuild([]byte(v))
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Number > recs[j].Number })

	if limit > 0 && limit < len(recs) {
		recs = recs[:limit]
	}
	return recs, nil
}

// Ping verifies the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func unmarshalBuild(raw []byte) (*BuildRecord, error) {
	var rb redisBuild
	if err := json.Unmarshal(raw, &rb); err != nil {
		return nil, fmt.Errorf("unmarshal build record: %w", err)
	}
	return &BuildRecord{
		ID:            rb.ID,
		Number:        rb.Number,
		BuiltAt:       rb.BuiltAt,
		LatestCommit:  rb.LatestCommit,
		Entries:       rb.Entries,
		ChangelogPath: rb.ChangelogPath,
	}, nil
}

// Compile-time interface conformance check.
var _ Store = (*RedisStore)(nil)
