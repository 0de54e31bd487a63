package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andresuchdata/sohwatch/internal/domain"
)

// ErrNotFound is returned when a session id is unknown or already evicted.
var ErrNotFound = errors.New("session not found")

// Snapshot is one upload's fully enriched table. It is immutable once
// stored; a new upload always creates a new snapshot.
type Snapshot struct {
	ID              string
	Rows            []domain.InventoryRow
	ForecastColumns []string
	HasPO           bool
	DroppedPOLines  int
	CreatedAt       time.Time
}

// Store keeps snapshots in memory, keyed by session id. Nothing survives a
// restart; the capacity cap evicts the oldest sessions first.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
	capacity  int
}

// NewStore creates a store holding at most capacity snapshots (minimum 1).
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{
		snapshots: make(map[string]*Snapshot),
		capacity:  capacity,
	}
}

// Put stores a snapshot under a fresh session id and returns the id.
func (s *Store) Put(snap *Snapshot) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap.ID = uuid.NewString()
	snap.CreatedAt = time.Now()
	s.snapshots[snap.ID] = snap
	s.evictLocked()

	return snap.ID
}

// Get returns the snapshot for a session id.
func (s *Store) Get(id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snap, nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

func (s *Store) evictLocked() {
	if len(s.snapshots) <= s.capacity {
		return
	}

	all := make([]*Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		all = append(all, snap)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	for _, snap := range all[:len(all)-s.capacity] {
		delete(s.snapshots, snap.ID)
	}
}
