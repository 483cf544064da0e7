package task

import (
	"sync/atomic"
	"time"
)

// Store holds the last fetched snapshot for the session. Every refresh
// replaces it wholesale; there is no patching of individual records.
type Store struct {
	snap atomic.Pointer[Snapshot]
	gen  atomic.Uint64
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// Replace swaps in a new snapshot. Partitions computed from an older
// generation are stale after this returns.
func (s *Store) Replace(tasks []*Task) *Snapshot {
	copied := make([]*Task, len(tasks))
	copy(copied, tasks)
	snap := &Snapshot{
		Tasks:      copied,
		Generation: s.gen.Add(1),
		FetchedAt:  s.now(),
	}
	s.snap.Store(snap)
	return snap
}

// Current returns the latest tasks in registry order, or an empty slice if
// nothing has been fetched yet. Callers must not modify the tasks.
func (s *Store) Current() []*Task {
	snap := s.snap.Load()
	if snap == nil {
		return []*Task{}
	}
	out := make([]*Task, len(snap.Tasks))
	copy(out, snap.Tasks)
	return out
}

// Snapshot returns the latest snapshot, or a zero-generation empty one.
func (s *Store) Snapshot() *Snapshot {
	if snap := s.snap.Load(); snap != nil {
		return snap
	}
	return &Snapshot{Tasks: []*Task{}}
}

func (s *Store) Generation() uint64 {
	return s.Snapshot().Generation
}

// Get finds a task by id in the current snapshot.
func (s *Store) Get(id uint64) (*Task, bool) {
	for _, t := range s.Snapshot().Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Clear empties the store when the session ends. It counts as a replace so
// partitions computed before it are stale too.
func (s *Store) Clear() {
	s.snap.Store(&Snapshot{Tasks: []*Task{}, Generation: s.gen.Add(1)})
}
