// Package joinsync keeps the process-wide record of contests the user has
// joined, independent of whatever the last network fetch reported.
package joinsync

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/contestsync/go/internal/models"
	"github.com/mcdev12/contestsync/go/internal/notify"
)

// Override is the locally held join state for one contest
type Override struct {
	Joined bool
	// Occupancy is the last observed participant count, nil until known.
	Occupancy *int
}

func (o Override) clone() Override {
	if o.Occupancy != nil {
		occupancy := *o.Occupancy
		o.Occupancy = &occupancy
	}
	return o
}

// Store maps contest ids to overrides and notifies subscribers after every
// mutation. Overrides are never evicted.
type Store struct {
	mu        sync.RWMutex
	overrides map[models.ContestID]Override

	listeners *notify.Registry
}

// NewStore creates an empty store. One instance is shared by every consumer
// in the process.
func NewStore() *Store {
	return &Store{
		overrides: make(map[models.ContestID]Override),
		listeners: notify.NewRegistry("joinsync"),
	}
}

// MarkJoined records that the user joined contestID. A nil occupancy keeps
// the previously observed value.
func (s *Store) MarkJoined(contestID models.ContestID, occupancy *int) {
	s.set(contestID, true, occupancy)
}

// MarkUnjoined resets the joined flag, typically to roll back an optimistic
// join the server rejected.
func (s *Store) MarkUnjoined(contestID models.ContestID, occupancy *int) {
	s.set(contestID, false, occupancy)
}

// Get returns the override for contestID, if any.
func (s *Store) Get(contestID models.ContestID) (Override, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.overrides[contestID]
	if !ok {
		return Override{}, false
	}
	return o.clone(), true
}

// Subscribe registers l to run after every mutation.
func (s *Store) Subscribe(l notify.Listener) func() {
	return s.listeners.Subscribe(l)
}

// Len returns the number of overrides held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.overrides)
}

func (s *Store) set(contestID models.ContestID, joined bool, occupancy *int) {
	s.mu.Lock()
	prev := s.overrides[contestID]
	next := Override{Joined: joined, Occupancy: prev.Occupancy}
	if occupancy != nil {
		v := *occupancy
		next.Occupancy = &v
	}
	s.overrides[contestID] = next
	s.mu.Unlock()

	log.Debug().
		Str("contest_id", contestID.String()).
		Bool("joined", joined).
		Msg("join override updated")

	s.listeners.Notify()
}
