package window

import "time"

// MemStore keeps window state in memory only. Used in tests and for
// runs that opt out of history tracking.
type MemStore struct {
	state *state
}

// NewMemStore creates an empty in-memory window store.
func NewMemStore() *MemStore {
	return &MemStore{state: newState()}
}

func (m *MemStore) Load(today time.Time, windowDays int) error {
	m.state.prune(today, windowDays)
	return nil
}

func (m *MemStore) Record(keys []string, today time.Time) {
	m.state.record(keys, today)
}

func (m *MemStore) Count(key string) int { return m.state.count(key) }

func (m *MemStore) FirstSeen(key string) (time.Time, bool) {
	return m.state.firstSeen(key)
}

func (m *MemStore) Persist() error { return nil }

// Seed records keys for an arbitrary day. Test helper.
func (m *MemStore) Seed(keys []string, day time.Time) {
	m.state.record(keys, day)
}
