//go:build integration

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	eventmodels "gatherly/internal/event/models"
	eventstore "gatherly/internal/event/store"
	membermodels "gatherly/internal/member/models"
	memberstore "gatherly/internal/member/store"
	regmodels "gatherly/internal/registration/models"
	"gatherly/internal/registration/service"
	regstore "gatherly/internal/registration/store"
	id "gatherly/pkg/domain"
	"gatherly/pkg/platform/sentinel"
	"gatherly/pkg/platform/tx"
	"gatherly/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	events   *eventstore.Postgres
	members  *memberstore.Postgres
	store    *regstore.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.events = eventstore.NewPostgres(s.postgres.DB)
	s.members = memberstore.NewPostgres(s.postgres.DB)
	s.store = regstore.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background()))
}

func (s *PostgresStoreSuite) seedEvent(capacity *int) id.EventID {
	event, err := eventmodels.NewEvent(id.NewEventID(), "integration meetup", capacity, nil, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.events.Create(context.Background(), event))
	return event.ID
}

func (s *PostgresStoreSuite) seedMember(name string) id.MemberID {
	member := &membermodels.Member{
		ID:        id.NewMemberID(),
		FullName:  name,
		Email:     name + "@example.com",
		Role:      membermodels.RoleMember,
		CreatedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.members.Create(context.Background(), member))
	return member.ID
}

func (s *PostgresStoreSuite) TestCreateAndFindActive() {
	ctx := context.Background()
	eventID := s.seedEvent(nil)
	memberID := s.seedMember("ada")

	reg := regmodels.NewConfirmed(memberID, eventID, time.Now().UTC())
	s.Require().NoError(s.store.Create(ctx, reg))

	found, err := s.store.FindActive(ctx, memberID, eventID)
	s.Require().NoError(err)
	s.Equal(reg.ID, found.ID)
	s.Equal(regmodels.StatusConfirmed, found.Status)
	s.NotNil(found.ConfirmedAt)
}

func (s *PostgresStoreSuite) TestUniqueActivePairEnforcedByIndex() {
	ctx := context.Background()
	eventID := s.seedEvent(nil)
	memberID := s.seedMember("ada")

	first := regmodels.NewConfirmed(memberID, eventID, time.Now().UTC())
	s.Require().NoError(s.store.Create(ctx, first))

	second := regmodels.NewWaitlisted(memberID, eventID, 1, time.Now().UTC())
	s.Require().ErrorIs(s.store.Create(ctx, second), sentinel.ErrConflict)

	first.ApplyCancel(time.Now().UTC())
	s.Require().NoError(s.store.Update(ctx, first))

	again := regmodels.NewConfirmed(memberID, eventID, time.Now().UTC())
	s.Require().NoError(s.store.Create(ctx, again))
}

func (s *PostgresStoreSuite) TestCheckInRoundTrip() {
	ctx := context.Background()
	eventID := s.seedEvent(nil)
	memberID := s.seedMember("ada")

	reg := regmodels.NewConfirmed(memberID, eventID, time.Now().UTC())
	s.Require().NoError(s.store.Create(ctx, reg))

	reg.ApplyCheckIn(time.Now().UTC())
	s.Require().NoError(s.store.Update(ctx, reg))

	found, err := s.store.FindActive(ctx, memberID, eventID)
	s.Require().NoError(err)
	s.Require().NotNil(found.CheckedInAt)

	found.ApplyUndoCheckIn()
	s.Require().NoError(s.store.Update(ctx, found))

	found, err = s.store.FindActive(ctx, memberID, eventID)
	s.Require().NoError(err)
	s.Nil(found.CheckedInAt)
}

func (s *PostgresStoreSuite) TestWaitlistOrdering() {
	ctx := context.Background()
	eventID := s.seedEvent(nil)
	base := time.Now().UTC().Truncate(time.Microsecond)

	var want []id.RegistrationID
	for i := 0; i < 3; i++ {
		memberID := s.seedMember(fmt.Sprintf("member-%d", i))
		reg := regmodels.NewWaitlisted(memberID, eventID, i+1, base.Add(time.Duration(i)*time.Second))
		s.Require().NoError(s.store.Create(ctx, reg))
		want = append(want, reg.ID)
	}

	waitlist, err := s.store.ListWaitlisted(ctx, eventID)
	s.Require().NoError(err)
	s.Require().Len(waitlist, 3)
	for i, reg := range waitlist {
		s.Equal(want[i], reg.ID)
	}
}

// TestConcurrentRegistrationRespectsCapacity drives the full engine against
// Postgres: the row lock on the event serializes the capacity decision, so a
// burst of concurrent registrations confirms exactly capacity members.
func (s *PostgresStoreSuite) TestConcurrentRegistrationRespectsCapacity() {
	const capacity = 3
	const attempts = 12

	ctx := context.Background()
	seats := capacity
	eventID := s.seedEvent(&seats)

	members := make([]id.MemberID, attempts)
	for i := range members {
		members[i] = s.seedMember(fmt.Sprintf("member-%d", i))
	}

	svc := service.New(s.events, s.members, s.store,
		service.WithTxRunner(tx.NewSQL(s.postgres.DB)),
	)

	var g errgroup.Group
	for _, memberID := range members {
		memberID := memberID
		g.Go(func() error {
			_, err := svc.Register(ctx, memberID, eventID)
			return err
		})
	}
	s.Require().NoError(g.Wait())

	confirmed, err := s.store.CountConfirmed(ctx, eventID)
	s.Require().NoError(err)
	s.Equal(capacity, confirmed)

	waitlist, err := s.store.ListWaitlisted(ctx, eventID)
	s.Require().NoError(err)
	s.Require().Len(waitlist, attempts-capacity)
	for i, reg := range waitlist {
		s.Require().NotNil(reg.WaitlistPosition)
		s.Equal(i+1, *reg.WaitlistPosition)
	}

	event, err := s.events.FindByID(ctx, eventID)
	s.Require().NoError(err)
	s.Equal(capacity, event.ConfirmedCount)
	s.Equal(eventmodels.StatusFull, event.Status)
}
