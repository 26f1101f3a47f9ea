package schedule

import "sync"

// MemoryStore is a Store kept entirely in memory. It backs tests and
// ephemeral setups where persistence across restarts is not wanted.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int]*Record)}
}

// Get returns the cached record for a year, or ErrMissing.
func (s *MemoryStore) Get(year int) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[year]
	if !ok {
		return nil, ErrMissing
	}
	return record.Clone(), nil
}

// Put replaces the record for record.Year.
func (s *MemoryStore) Put(record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Year] = record.Clone()
	return nil
}
