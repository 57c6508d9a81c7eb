// Package store provides event persistence. Both implementations return
// sentinel errors; services translate them into coded domain errors.
package store

import (
	"context"
	"sync"

	"gatherly/internal/event/models"
	id "gatherly/pkg/domain"
	"gatherly/pkg/platform/sentinel"
)

// InMemory is a map-backed event store for tests and single-process runs.
type InMemory struct {
	mu     sync.RWMutex
	events map[id.EventID]models.Event
}

// NewInMemory creates an empty in-memory event store.
func NewInMemory() *InMemory {
	return &InMemory{events: make(map[id.EventID]models.Event)}
}

// Create inserts a new event. Fails with ErrConflict on duplicate id.
func (s *InMemory) Create(ctx context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.events[event.ID]; exists {
		return sentinel.ErrConflict
	}
	s.events[event.ID] = *event
	return nil
}

// FindByID returns a copy of the event or ErrNotFound.
func (s *InMemory) FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &event, nil
}

// FindByIDForUpdate behaves like FindByID. Serialization for in-memory runs
// comes from the registration service's per-event lock, not from the store.
func (s *InMemory) FindByIDForUpdate(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	return s.FindByID(ctx, eventID)
}

// List returns all events.
func (s *InMemory) List(ctx context.Context) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]models.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	return events, nil
}

// Update persists event mutations or ErrNotFound.
func (s *InMemory) Update(ctx context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[event.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.events[event.ID] = *event
	return nil
}
