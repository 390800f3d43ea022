// Package window tracks on which calendar days each topic key was
// observed, over a trailing window. It is the only state the engine
// carries across runs.
package window

import (
	"sort"
	"time"
)

// DateLayout is the canonical encoding of a calendar day. The format
// sorts lexicographically in date order.
const DateLayout = "2006-01-02"

// Entry records the days a topic key appeared within the window.
// DaysSeen is sorted ascending and free of duplicates.
type Entry struct {
	Key      string   `json:"key"`
	DaysSeen []string `json:"days_seen"`
}

// Store is the frequency/window state with a load, record, persist
// lifecycle. Implementations are not safe for concurrent use; the
// engine runs at most one pipeline at a time.
type Store interface {
	// Load reads prior state and prunes days older than the trailing
	// window ending at today. Entries left with no days are dropped.
	Load(today time.Time, windowDays int) error
	// Record marks today as a seen day for every key, once per date.
	Record(keys []string, today time.Time)
	// Count returns the number of distinct days key was seen within
	// the loaded window, 0 when the key is unknown.
	Count(key string) int
	// FirstSeen returns the earliest recorded day for key.
	FirstSeen(key string) (time.Time, bool)
	// Persist writes the current state atomically.
	Persist() error
}

// state is the shared in-memory representation behind Store
// implementations.
type state struct {
	entries map[string]*Entry
}

func newState() *state {
	return &state{entries: make(map[string]*Entry)}
}

// prune drops days before the window start and entries that end up
// empty. windowDays includes today, so a 7-day window keeps today and
// the 6 days before it.
func (s *state) prune(today time.Time, windowDays int) {
	if windowDays < 1 {
		windowDays = 1
	}
	cutoff := today.AddDate(0, 0, -(windowDays - 1)).Format(DateLayout)
	for key, e := range s.entries {
		kept := e.DaysSeen[:0]
		for _, d := range e.DaysSeen {
			if d >= cutoff {
				kept = append(kept, d)
			}
		}
		if len(kept) == 0 {
			delete(s.entries, key)
			continue
		}
		e.DaysSeen = kept
	}
}

func (s *state) record(keys []string, today time.Time) {
	day := today.Format(DateLayout)
	for _, key := range keys {
		if key == "" {
			continue
		}
		e, ok := s.entries[key]
		if !ok {
			s.entries[key] = &Entry{Key: key, DaysSeen: []string{day}}
			continue
		}
		if hasDay(e.DaysSeen, day) {
			continue
		}
		e.DaysSeen = append(e.DaysSeen, day)
		sort.Strings(e.DaysSeen)
	}
}

func (s *state) count(key string) int {
	if e, ok := s.entries[key]; ok {
		return len(e.DaysSeen)
	}
	return 0
}

func (s *state) firstSeen(key string) (time.Time, bool) {
	e, ok := s.entries[key]
	if !ok || len(e.DaysSeen) == 0 {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, e.DaysSeen[0])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// sorted returns the entries ordered by key for deterministic encoding.
func (s *state) sorted() []Entry {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, *s.entries[k])
	}
	return out
}

func hasDay(days []string, day string) bool {
	i := sort.SearchStrings(days, day)
	return i < len(days) && days[i] == day
}
