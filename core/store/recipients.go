package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kilianp07/mealmatch/core/model"
)

// RecipientStore maps recipient ids to their current state.
type RecipientStore struct {
	mu   sync.RWMutex
	data map[string]model.Recipient
}

// NewRecipientStore returns a store seeded with the given recipients.
func NewRecipientStore(rs ...model.Recipient) *RecipientStore {
	s := &RecipientStore{data: make(map[string]model.Recipient, len(rs))}
	for _, r := range rs {
		s.data[r.ID] = r
	}
	return s
}

// Put inserts or replaces a recipient.
func (s *RecipientStore) Put(r model.Recipient) {
	s.mu.Lock()
	s.data[r.ID] = r
	s.mu.Unlock()
}

// Get returns a copy of the recipient.
func (s *RecipientStore) Get(id string) (model.Recipient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.data[id]
	return r, ok
}

// Len returns the number of recipients, regardless of capacity.
func (s *RecipientStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// List returns copies of all recipients sorted by id.
func (s *RecipientStore) List() []model.Recipient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Recipient, 0, len(s.data))
	for _, r := range s.data {
		res = append(res, r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Consume decrements the capacity of recipient id by qty and returns the
// updated recipient. Capacity never goes below zero.
func (s *RecipientStore) Consume(id string, qty int) (model.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data[id]
	if !ok {
		return model.Recipient{}, fmt.Errorf("recipient %s: %w", id, ErrNotFound)
	}
	if qty < 0 || qty > r.Capacity {
		return r, fmt.Errorf("recipient %s: consume %d of %d: %w", id, qty, r.Capacity, ErrInsufficientCapacity)
	}
	r.Capacity -= qty
	s.data[id] = r
	return r, nil
}
