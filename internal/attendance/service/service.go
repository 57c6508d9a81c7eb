// Package service implements the attendance check-in engine. It operates on
// active registrations produced by the registration engine and keeps the
// occupancy picture staff dashboards read.
package service

import (
	"context"
	"errors"
	"log/slog"

	"gatherly/internal/attendance/metrics"
	"gatherly/internal/attendance/models"
	eventmodels "gatherly/internal/event/models"
	membermodels "gatherly/internal/member/models"
	regmodels "gatherly/internal/registration/models"
	id "gatherly/pkg/domain"
	dErrors "gatherly/pkg/domain-errors"
	"gatherly/pkg/platform/sentinel"
	"gatherly/pkg/requestcontext"
)

// EventStore is the event read access the engine needs.
type EventStore interface {
	FindByID(ctx context.Context, eventID id.EventID) (*eventmodels.Event, error)
	List(ctx context.Context) ([]eventmodels.Event, error)
}

// MemberStore resolves members for attendee listings.
type MemberStore interface {
	FindByID(ctx context.Context, memberID id.MemberID) (*membermodels.Member, error)
}

// RegistrationStore is the registration access the engine needs. All reads
// filter to non-cancelled registrations.
type RegistrationStore interface {
	FindActive(ctx context.Context, memberID id.MemberID, eventID id.EventID) (*regmodels.Registration, error)
	Update(ctx context.Context, reg *regmodels.Registration) error
	ListActiveByEvent(ctx context.Context, eventID id.EventID) ([]regmodels.Registration, error)
}

// SnapshotPublisher receives one occupancy snapshot per successful check-in
// or undo. Publish failures are logged and swallowed.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snapshot models.Snapshot) error
}

// Service is the attendance engine.
type Service struct {
	events        EventStore
	members       MemberStore
	registrations RegistrationStore
	publisher     SnapshotPublisher
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

// Option configures optional service dependencies.
type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithPublisher(publisher SnapshotPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(events EventStore, members MemberStore, registrations RegistrationStore, opts ...Option) *Service {
	s := &Service{
		events:        events,
		members:       members,
		registrations: registrations,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckIn records the member's arrival at the event. Idempotent: a second
// check-in leaves the original timestamp untouched. Returns the occupancy
// snapshot after the mutation.
func (s *Service) CheckIn(ctx context.Context, eventID id.EventID, memberID id.MemberID) (*models.Snapshot, error) {
	return s.toggle(ctx, eventID, memberID, true)
}

// UndoCheckIn clears the member's check-in. Idempotent.
func (s *Service) UndoCheckIn(ctx context.Context, eventID id.EventID, memberID id.MemberID) (*models.Snapshot, error) {
	return s.toggle(ctx, eventID, memberID, false)
}

func (s *Service) toggle(ctx context.Context, eventID id.EventID, memberID id.MemberID, checkIn bool) (*models.Snapshot, error) {
	if eventID.IsNil() || memberID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "event id and member id are required")
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
	}

	reg, err := s.registrations.FindActive(ctx, memberID, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
	}
	if err := reg.CanCheckIn(); err != nil {
		return nil, dErrors.New(dErrors.CodeConflict, "registration does not allow check-in")
	}

	now := requestcontext.Now(ctx).UTC()
	if checkIn {
		reg.ApplyCheckIn(now)
	} else {
		reg.ApplyUndoCheckIn()
	}
	if err := s.registrations.Update(ctx, reg); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record check-in state")
	}

	snapshot, err := s.buildSnapshot(ctx, event, reg)
	if err != nil {
		return nil, err
	}

	s.incrementToggle(checkIn)
	s.publish(ctx, *snapshot)
	return snapshot, nil
}

// buildSnapshot computes the occupancy picture from the same non-cancelled
// filter used everywhere in attendance reporting. A read racing a concurrent
// registration write may be momentarily stale; that is acceptable for
// dashboards and never feeds a capacity decision.
func (s *Service) buildSnapshot(ctx context.Context, event *eventmodels.Event, reg *regmodels.Registration) (*models.Snapshot, error) {
	registered, checkedIn, err := s.occupancyCounts(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	checkedInFlag := reg.IsCheckedIn()
	return &models.Snapshot{
		EventID:          event.ID,
		MemberID:         &reg.MemberID,
		CheckedIn:        &checkedInFlag,
		CheckedInAt:      reg.CheckedInAt,
		RegisteredCount:  registered,
		CheckedInCount:   checkedIn,
		OccupancyPercent: models.OccupancyPercent(checkedIn, event.MaxCapacity),
	}, nil
}

func (s *Service) occupancyCounts(ctx context.Context, eventID id.EventID) (registered, checkedIn int, err error) {
	regs, err := s.registrations.ListActiveByEvent(ctx, eventID)
	if err != nil {
		return 0, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}
	for _, reg := range regs {
		registered++
		if reg.IsCheckedIn() {
			checkedIn++
		}
	}
	return registered, checkedIn, nil
}

// ListEventSummaries returns the per-event occupancy lines for the staff
// dashboard.
func (s *Service) ListEventSummaries(ctx context.Context) ([]models.EventSummary, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}
	summaries := make([]models.EventSummary, 0, len(events))
	for _, event := range events {
		registered, checkedIn, err := s.occupancyCounts(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, models.EventSummary{
			EventID:          event.ID,
			RegisteredCount:  registered,
			CheckedInCount:   checkedIn,
			OccupancyPercent: models.OccupancyPercent(checkedIn, event.MaxCapacity),
			Status:           string(event.Status),
			MaxCapacity:      event.MaxCapacity,
		})
	}
	return summaries, nil
}

// ListAttendees returns the event roster: one entry per non-cancelled
// registration with its member resolved.
func (s *Service) ListAttendees(ctx context.Context, eventID id.EventID) (*models.AttendeeList, error) {
	if eventID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "event id is required")
	}
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
	}

	regs, err := s.registrations.ListActiveByEvent(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}

	list := &models.AttendeeList{
		EventID:   eventID,
		Attendees: make([]models.Attendee, 0, len(regs)),
	}
	for _, reg := range regs {
		member, err := s.members.FindByID(ctx, reg.MemberID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				// Registration without a resolvable member; skip rather
				// than fail the whole roster.
				s.logger.WarnContext(ctx, "registration references missing member",
					"registration_id", reg.ID,
					"member_id", reg.MemberID,
				)
				continue
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve member")
		}
		list.RegisteredCount++
		if reg.IsCheckedIn() {
			list.CheckedInCount++
		}
		list.Attendees = append(list.Attendees, models.Attendee{
			MemberID:           member.ID,
			FullName:           member.FullName,
			Email:              member.Email,
			RegistrationStatus: string(reg.Status),
			CheckedIn:          reg.IsCheckedIn(),
			CheckedInAt:        reg.CheckedInAt,
		})
	}
	return list, nil
}

func (s *Service) publish(ctx context.Context, snapshot models.Snapshot) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, snapshot); err != nil {
		s.logger.WarnContext(ctx, "snapshot publish failed",
			"event_id", snapshot.EventID,
			"error", err,
		)
		return
	}
	if s.metrics != nil {
		s.metrics.Snapshots.Inc()
	}
}

func (s *Service) incrementToggle(checkIn bool) {
	if s.metrics == nil {
		return
	}
	if checkIn {
		s.metrics.CheckIns.Inc()
	} else {
		s.metrics.Undos.Inc()
	}
}
