package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kilianp07/mealmatch/core/model"
)

// VolunteerStore maps volunteer ids to their current state.
type VolunteerStore struct {
	mu   sync.RWMutex
	data map[string]model.Volunteer
}

// NewVolunteerStore returns a store seeded with the given volunteers.
func NewVolunteerStore(vs ...model.Volunteer) *VolunteerStore {
	s := &VolunteerStore{data: make(map[string]model.Volunteer, len(vs))}
	for _, v := range vs {
		s.data[v.ID] = v
	}
	return s
}

func (s *VolunteerStore) Put(v model.Volunteer) {
	s.mu.Lock()
	s.data[v.ID] = v
	s.mu.Unlock()
}

func (s *VolunteerStore) Get(id string) (model.Volunteer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[id]
	return v, ok
}

func (s *VolunteerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// List returns copies of all volunteers sorted by id.
func (s *VolunteerStore) List() []model.Volunteer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Volunteer, 0, len(s.data))
	for _, v := range s.data {
		res = append(res, v)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Available returns the number of volunteers currently available.
func (s *VolunteerStore) Available() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, v := range s.data {
		if v.Available {
			n++
		}
	}
	return n
}

// MarkUnavailable flags the volunteer as busy for the rest of the run.
func (s *VolunteerStore) MarkUnavailable(id string) error {
	return s.SetAvailable(id, false)
}

// SetAvailable updates the availability of volunteer id.
func (s *VolunteerStore) SetAvailable(id string, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[id]
	if !ok {
		return fmt.Errorf("volunteer %s: %w", id, ErrNotFound)
	}
	v.Available = available
	s.data[id] = v
	return nil
}
