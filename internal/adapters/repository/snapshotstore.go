package repository

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/okian/starboard/pkg/metrics"
)

// snapshot is an immutable view of the standings. Readers never lock; a new
// run publishes a whole new snapshot.
type snapshot struct {
	entries []Entry        // rank order
	byName  map[string]int // name -> index into entries
}

var _ Store = (*SnapshotStore)(nil)

// SnapshotStore is an in-memory Store over the most recently published
// standings.
type SnapshotStore struct {
	current atomic.Pointer[snapshot]
}

// NewSnapshotStore creates a store holding entries. Entries must already be
// in rank order.
func NewSnapshotStore(_ context.Context, entries []Entry) *SnapshotStore {
	s := &SnapshotStore{}
	s.Publish(entries)
	return s
}

// Publish replaces the standings atomically.
func (s *SnapshotStore) Publish(entries []Entry) {
	snap := &snapshot{
		entries: slices.Clone(entries),
		byName:  make(map[string]int, len(entries)),
	}
	for i, e := range snap.entries {
		snap.byName[e.Name] = i
	}
	s.current.Store(snap)
	metrics.UpdateParticipants(len(entries))
}

// Rank returns the entry for name.
func (s *SnapshotStore) Rank(_ context.Context, name string) (Entry, error) {
	start := time.Now()
	defer observeQuery(start)

	snap := s.current.Load()
	i, ok := snap.byName[name]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return snap.entries[i], nil
}

// TopN returns up to n entries from the top of the standings.
func (s *SnapshotStore) TopN(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer observeQuery(start)

	if n < 1 {
		return nil, ErrInvalidLimit
	}
	snap := s.current.Load()
	n = min(n, len(snap.entries))
	return slices.Clone(snap.entries[:n]), nil
}

// Count returns the number of participants.
func (s *SnapshotStore) Count(_ context.Context) int {
	return len(s.current.Load().entries)
}

func observeQuery(start time.Time) {
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
}
