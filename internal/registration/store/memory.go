// Package store provides registration persistence. The in-memory
// implementation mirrors the Postgres constraints: one active registration
// per (member, event) pair.
package store

import (
	"context"
	"sort"
	"sync"

	"gatherly/internal/registration/models"
	id "gatherly/pkg/domain"
	"gatherly/pkg/platform/sentinel"
)

// InMemory is a map-backed registration store.
type InMemory struct {
	mu            sync.RWMutex
	registrations map[id.RegistrationID]models.Registration
}

// NewInMemory creates an empty in-memory registration store.
func NewInMemory() *InMemory {
	return &InMemory{registrations: make(map[id.RegistrationID]models.Registration)}
}

// Create inserts a registration. Fails with ErrConflict when an active
// registration for the same (member, event) pair already exists, mirroring
// the partial unique index in Postgres.
func (s *InMemory) Create(ctx context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.registrations {
		if existing.MemberID == reg.MemberID && existing.EventID == reg.EventID && existing.IsActive() {
			return sentinel.ErrConflict
		}
	}
	s.registrations[reg.ID] = *reg
	return nil
}

// Update persists registration mutations or ErrNotFound.
func (s *InMemory) Update(ctx context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registrations[reg.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.registrations[reg.ID] = *reg
	return nil
}

// FindActive returns the non-cancelled registration for the pair, or
// ErrNotFound.
func (s *InMemory) FindActive(ctx context.Context, memberID id.MemberID, eventID id.EventID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, reg := range s.registrations {
		if reg.MemberID == memberID && reg.EventID == eventID && reg.IsActive() {
			r := reg
			return &r, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// CountConfirmed returns the live count of CONFIRMED registrations for the
// event. This is the canonical capacity signal.
func (s *InMemory) CountConfirmed(ctx context.Context, eventID id.EventID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, reg := range s.registrations {
		if reg.EventID == eventID && reg.Status == models.StatusConfirmed {
			count++
		}
	}
	return count, nil
}

// CountWaitlisted returns the current waitlist size for the event.
func (s *InMemory) CountWaitlisted(ctx context.Context, eventID id.EventID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, reg := range s.registrations {
		if reg.EventID == eventID && reg.Status == models.StatusWaitlisted {
			count++
		}
	}
	return count, nil
}

// ListActiveByEvent returns all non-cancelled registrations for the event,
// ordered by request time.
func (s *InMemory) ListActiveByEvent(ctx context.Context, eventID id.EventID) ([]models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var regs []models.Registration
	for _, reg := range s.registrations {
		if reg.EventID == eventID && reg.IsActive() {
			regs = append(regs, reg)
		}
	}
	sortByRequestedAt(regs)
	return regs, nil
}

// ListWaitlisted returns the event's waitlist in position order. Position is
// the authoritative queue order: it is assigned under the per-event lock,
// whereas request timestamps are pinned before serialization and may
// disagree with it under racing requests.
func (s *InMemory) ListWaitlisted(ctx context.Context, eventID id.EventID) ([]models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var regs []models.Registration
	for _, reg := range s.registrations {
		if reg.EventID == eventID && reg.Status == models.StatusWaitlisted {
			regs = append(regs, reg)
		}
	}
	sortByPosition(regs)
	return regs, nil
}

func sortByPosition(regs []models.Registration) {
	sort.Slice(regs, func(i, j int) bool {
		return positionOf(regs[i]) < positionOf(regs[j])
	})
}

// positionOf is nil-safe for robustness; waitlisted rows always carry one.
func positionOf(reg models.Registration) int {
	if reg.WaitlistPosition == nil {
		return 0
	}
	return *reg.WaitlistPosition
}

func sortByRequestedAt(regs []models.Registration) {
	sort.Slice(regs, func(i, j int) bool {
		if regs[i].RequestedAt.Equal(regs[j].RequestedAt) {
			return regs[i].ID.String() < regs[j].ID.String()
		}
		return regs[i].RequestedAt.Before(regs[j].RequestedAt)
	})
}
