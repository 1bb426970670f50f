// Package store persists computed statistics snapshots. The pipeline
// treats persistence as opaque key-value storage keyed by the owning user
// and a filter fingerprint; a miss is normal and means the caller falls
// back to a full recomputation.
package store

import (
	"context"
	"errors"
	"fmt"

	"handtracker/internal/stats"
)

// ErrNotFound signals a cache miss.
var ErrNotFound = errors.New("store: snapshot not found")

// Key identifies one cached snapshot scope.
type Key struct {
	User        string
	Fingerprint string
}

func (k Key) String() string {
	return fmt.Sprintf("stats:%s:%s", k.User, k.Fingerprint)
}

// Entry pairs a snapshot with the counters that back it. The counters
// must be retained alongside the rates: incremental updates fold a delta
// into them and re-divide, never re-scanning the full history. HandsSeen
// is the length of the owning history at save time and tells the next
// update where its delta starts.
type Entry struct {
	Counters  *stats.Counters  `json:"counters"`
	Snapshot  stats.Statistics `json:"snapshot"`
	HandsSeen int              `json:"hands_seen"`
}

// SnapshotStore is the cache/store collaborator contract: read the latest
// snapshot, write a newer one. Implementations owe nothing beyond that.
type SnapshotStore interface {
	Load(ctx context.Context, key Key) (*Entry, error)
	Save(ctx context.Context, key Key, entry *Entry) error
}
