package store

import (
	"sync"

	"github.com/kyleking/lazyrope/internal/record"
)

// Store holds every record received this run, globally and by mode.
// Both views share the same record values and are append-only.
type Store struct {
	mu     sync.RWMutex
	all    []record.Record
	byMode map[record.Mode][]record.Record
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		byMode: make(map[record.Mode][]record.Record),
	}
}

// Append adds r to the global sequence and to its mode partition.
func (s *Store) Append(r record.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = append(s.all, r)
	s.byMode[r.Mode] = append(s.byMode[r.Mode], r)
}

// All returns every record in arrival order.
func (s *Store) All() []record.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.all)
}

// ForMode returns the records of mode m in arrival order. The result is
// empty, never nil, when nothing of that mode has arrived.
func (s *Store) ForMode(m record.Mode) []record.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.byMode[m])
}

// Len returns the number of records stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.all)
}

// CountByMode returns how many records each valid mode holds.
func (s *Store) CountByMode() map[record.Mode]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[record.Mode]int, len(record.Modes))
	for _, m := range record.Modes {
		counts[m] = len(s.byMode[m])
	}
	return counts
}

func clone(records []record.Record) []record.Record {
	out := make([]record.Record, len(records))
	copy(out, records)
	return out
}
