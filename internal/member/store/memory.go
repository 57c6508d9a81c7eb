// Package store provides member persistence.
package store

import (
	"context"
	"sync"

	"gatherly/internal/member/models"
	id "gatherly/pkg/domain"
	"gatherly/pkg/platform/sentinel"
)

// InMemory is a map-backed member store.
type InMemory struct {
	mu      sync.RWMutex
	members map[id.MemberID]models.Member
}

// NewInMemory creates an empty in-memory member store.
func NewInMemory() *InMemory {
	return &InMemory{members: make(map[id.MemberID]models.Member)}
}

// Create inserts a member. Fails with ErrConflict on duplicate id.
func (s *InMemory) Create(ctx context.Context, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.members[member.ID]; exists {
		return sentinel.ErrConflict
	}
	s.members[member.ID] = *member
	return nil
}

// FindByID returns the member or ErrNotFound.
func (s *InMemory) FindByID(ctx context.Context, memberID id.MemberID) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.members[memberID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &member, nil
}
