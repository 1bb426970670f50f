package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SnapshotTTL bounds how long a cached snapshot outlives its last write.
// Stale entries simply force a full recomputation on the next request.
const SnapshotTTL = 30 * 24 * time.Hour

// RedisStore is a SnapshotStore backed by Redis, with snapshots stored as
// JSON payloads under stats:{user}:{fingerprint}.
type RedisStore struct {
	client *redis.Client
	logger zerolog.Logger
	ttl    time.Duration
}

// NewRedisStore creates a store on an existing client.
func NewRedisStore(client *redis.Client, logger zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger.With().Str("component", "redis-store").Logger(),
		ttl:    SnapshotTTL,
	}
}

// Load reads and decodes the entry for the key, mapping redis.Nil to
// ErrNotFound so callers treat a miss as a normal recompute signal.
func (s *RedisStore) Load(ctx context.Context, key Key) (*Entry, error) {
	data, err := s.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", key, err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt payload is as good as a miss; log it and recompute.
		s.logger.Warn().Str("key", key.String()).Err(err).Msg("discarding corrupt snapshot")
		return nil, ErrNotFound
	}
	return &entry, nil
}

// Save encodes and writes the entry with the store TTL.
func (s *RedisStore) Save(ctx context.Context, key Key, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling snapshot %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key.String(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving snapshot %s: %w", key, err)
	}
	return nil
}
