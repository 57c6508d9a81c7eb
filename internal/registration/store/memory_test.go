package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gatherly/internal/registration/models"
	id "gatherly/pkg/domain"
	"gatherly/pkg/platform/sentinel"
)

type RegistrationStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *RegistrationStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestRegistrationStoreSuite(t *testing.T) {
	suite.Run(t, new(RegistrationStoreSuite))
}

func (s *RegistrationStoreSuite) newConfirmed(eventID id.EventID, at time.Time) *models.Registration {
	return models.NewConfirmed(id.NewMemberID(), eventID, at)
}

// TestCreationAndLookups verifies create and active-pair lookup behavior.
func (s *RegistrationStoreSuite) TestCreationAndLookups() {
	eventID := id.NewEventID()

	s.Run("creates and finds active registration", func() {
		reg := s.newConfirmed(eventID, time.Now().UTC())
		s.Require().NoError(s.store.Create(s.ctx, reg))

		found, err := s.store.FindActive(s.ctx, reg.MemberID, eventID)
		s.Require().NoError(err)
		s.Equal(reg.ID, found.ID)
	})

	s.Run("returns ErrNotFound for unknown pair", func() {
		_, err := s.store.FindActive(s.ctx, id.NewMemberID(), eventID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("cancelled registrations are not active", func() {
		reg := s.newConfirmed(eventID, time.Now().UTC())
		s.Require().NoError(s.store.Create(s.ctx, reg))
		reg.ApplyCancel(time.Now().UTC())
		s.Require().NoError(s.store.Update(s.ctx, reg))

		_, err := s.store.FindActive(s.ctx, reg.MemberID, eventID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestActivePairUniqueness mirrors the partial unique index in Postgres.
func (s *RegistrationStoreSuite) TestActivePairUniqueness() {
	eventID := id.NewEventID()
	memberID := id.NewMemberID()

	s.Run("rejects second active registration for the pair", func() {
		first := models.NewConfirmed(memberID, eventID, time.Now().UTC())
		s.Require().NoError(s.store.Create(s.ctx, first))

		second := models.NewWaitlisted(memberID, eventID, 1, time.Now().UTC())
		s.Require().ErrorIs(s.store.Create(s.ctx, second), sentinel.ErrConflict)
	})

	s.Run("allows re-registration after cancellation", func() {
		first, err := s.store.FindActive(s.ctx, memberID, eventID)
		s.Require().NoError(err)
		first.ApplyCancel(time.Now().UTC())
		s.Require().NoError(s.store.Update(s.ctx, first))

		again := models.NewConfirmed(memberID, eventID, time.Now().UTC())
		s.Require().NoError(s.store.Create(s.ctx, again))
	})

	s.Run("same member may hold registrations for different events", func() {
		other := models.NewConfirmed(memberID, id.NewEventID(), time.Now().UTC())
		s.Require().NoError(s.store.Create(s.ctx, other))
	})
}

// TestCounts verifies the live capacity signals.
func (s *RegistrationStoreSuite) TestCounts() {
	eventID := id.NewEventID()
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.Create(s.ctx, s.newConfirmed(eventID, now)))
	}
	s.Require().NoError(s.store.Create(s.ctx, models.NewWaitlisted(id.NewMemberID(), eventID, 1, now)))

	cancelled := s.newConfirmed(eventID, now)
	s.Require().NoError(s.store.Create(s.ctx, cancelled))
	cancelled.ApplyCancel(now)
	s.Require().NoError(s.store.Update(s.ctx, cancelled))

	confirmed, err := s.store.CountConfirmed(s.ctx, eventID)
	s.Require().NoError(err)
	s.Equal(3, confirmed)

	waitlisted, err := s.store.CountWaitlisted(s.ctx, eventID)
	s.Require().NoError(err)
	s.Equal(1, waitlisted)

	otherEvent, err := s.store.CountConfirmed(s.ctx, id.NewEventID())
	s.Require().NoError(err)
	s.Zero(otherEvent)
}

// TestWaitlistOrdering verifies the waitlist comes back in position order,
// even when request timestamps disagree with the positions.
func (s *RegistrationStoreSuite) TestWaitlistOrdering() {
	eventID := id.NewEventID()
	base := time.Now().UTC()

	third := models.NewWaitlisted(id.NewMemberID(), eventID, 3, base.Add(2*time.Second))
	first := models.NewWaitlisted(id.NewMemberID(), eventID, 1, base)
	second := models.NewWaitlisted(id.NewMemberID(), eventID, 2, base.Add(time.Second))
	for _, reg := range []*models.Registration{third, first, second} {
		s.Require().NoError(s.store.Create(s.ctx, reg))
	}

	waitlist, err := s.store.ListWaitlisted(s.ctx, eventID)
	s.Require().NoError(err)
	s.Require().Len(waitlist, 3)
	s.Equal(first.ID, waitlist[0].ID)
	s.Equal(second.ID, waitlist[1].ID)
	s.Equal(third.ID, waitlist[2].ID)

	s.Run("position wins over request time", func() {
		raced := id.NewEventID()
		// The head of the queue carries the later timestamp.
		head := models.NewWaitlisted(id.NewMemberID(), raced, 1, base.Add(time.Minute))
		tail := models.NewWaitlisted(id.NewMemberID(), raced, 2, base)
		s.Require().NoError(s.store.Create(s.ctx, head))
		s.Require().NoError(s.store.Create(s.ctx, tail))

		waitlist, err := s.store.ListWaitlisted(s.ctx, raced)
		s.Require().NoError(err)
		s.Require().Len(waitlist, 2)
		s.Equal(head.ID, waitlist[0].ID)
		s.Equal(tail.ID, waitlist[1].ID)
	})
}

// TestListActiveByEvent verifies cancelled registrations are filtered out.
func (s *RegistrationStoreSuite) TestListActiveByEvent() {
	eventID := id.NewEventID()
	now := time.Now().UTC()

	active := s.newConfirmed(eventID, now)
	s.Require().NoError(s.store.Create(s.ctx, active))

	cancelled := s.newConfirmed(eventID, now.Add(time.Second))
	s.Require().NoError(s.store.Create(s.ctx, cancelled))
	cancelled.ApplyCancel(now)
	s.Require().NoError(s.store.Update(s.ctx, cancelled))

	regs, err := s.store.ListActiveByEvent(s.ctx, eventID)
	s.Require().NoError(err)
	s.Require().Len(regs, 1)
	s.Equal(active.ID, regs[0].ID)
}

// TestUpdate verifies updates require an existing registration.
func (s *RegistrationStoreSuite) TestUpdate() {
	reg := s.newConfirmed(id.NewEventID(), time.Now().UTC())
	s.Require().ErrorIs(s.store.Update(s.ctx, reg), sentinel.ErrNotFound)
}
