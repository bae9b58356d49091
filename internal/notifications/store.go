package notifications

import (
	"sync"

	"github.com/albapepper/goalbot/internal/match"
)

// record is everything already dispatched for one match.
type record struct {
	goals    map[match.Goal]struct{}
	statuses map[string]struct{}
	missed   int // consecutive cycles the match was absent from the feed
}

// Store remembers which goals and status texts have been sent per match.
// Memory only; it starts empty on every process start.
//
// The notification loop is the only writer. The mutex exists for readers on
// other goroutines (the health endpoint).
type Store struct {
	mu         sync.Mutex
	records    map[string]*record
	purgeAfter int
}

// NewStore creates an empty store. Records for matches missing from the feed
// for purgeAfter consecutive sweeps are dropped; purgeAfter <= 0 keeps them
// forever.
func NewStore(purgeAfter int) *Store {
	return &Store{
		records:    make(map[string]*record),
		purgeAfter: purgeAfter,
	}
}

// get returns the match record, creating it on first access. Caller holds mu.
func (s *Store) get(matchID string) *record {
	r, ok := s.records[matchID]
	if !ok {
		r = &record{
			goals:    make(map[match.Goal]struct{}),
			statuses: make(map[string]struct{}),
		}
		s.records[matchID] = r
	}
	return r
}

// HasGoal reports whether an equal goal was already recorded for the match.
func (s *Store) HasGoal(matchID string, g match.Goal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.get(matchID).goals[g]
	return ok
}

// RecordGoal marks the goal as dispatched.
func (s *Store) RecordGoal(matchID string, g match.Goal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(matchID).goals[g] = struct{}{}
}

// HasStatus reports whether this exact status text was already recorded.
func (s *Store) HasStatus(matchID, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.get(matchID).statuses[text]
	return ok
}

// RecordStatus marks the status text as dispatched.
func (s *Store) RecordStatus(matchID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(matchID).statuses[text] = struct{}{}
}

// Sweep ages out matches that were not in the latest feed. Call it once per
// successful fetch with the IDs that were returned. It returns the purged IDs.
func (s *Store) Sweep(seen []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	present := make(map[string]struct{}, len(seen))
	for _, id := range seen {
		present[id] = struct{}{}
	}

	var purged []string
	for id, r := range s.records {
		if _, ok := present[id]; ok {
			r.missed = 0
			continue
		}
		r.missed++
		if s.purgeAfter > 0 && r.missed >= s.purgeAfter {
			delete(s.records, id)
			purged = append(purged, id)
		}
	}
	return purged
}

// Len returns the number of tracked matches.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
