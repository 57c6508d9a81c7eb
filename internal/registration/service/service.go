// Package service implements the capacity-bounded registration engine: it
// decides CONFIRMED vs WAITLISTED, keeps the event's confirmed counter and
// derived status consistent with the set of confirmed registrations, and
// owns waitlist ordering.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	eventmodels "gatherly/internal/event/models"
	membermodels "gatherly/internal/member/models"
	"gatherly/internal/notify"
	"gatherly/internal/registration/metrics"
	"gatherly/internal/registration/models"
	id "gatherly/pkg/domain"
	dErrors "gatherly/pkg/domain-errors"
	"gatherly/pkg/platform/sentinel"
	"gatherly/pkg/platform/tx"
	"gatherly/pkg/requestcontext"
)

// EventStore is the event persistence the engine needs. FindByIDForUpdate
// must lock the event row for the surrounding transaction in implementations
// that share storage between processes.
type EventStore interface {
	FindByID(ctx context.Context, eventID id.EventID) (*eventmodels.Event, error)
	FindByIDForUpdate(ctx context.Context, eventID id.EventID) (*eventmodels.Event, error)
	Update(ctx context.Context, event *eventmodels.Event) error
}

// MemberStore resolves members for existence checks.
type MemberStore interface {
	FindByID(ctx context.Context, memberID id.MemberID) (*membermodels.Member, error)
}

// RegistrationStore is the registration persistence the engine needs.
type RegistrationStore interface {
	Create(ctx context.Context, reg *models.Registration) error
	Update(ctx context.Context, reg *models.Registration) error
	FindActive(ctx context.Context, memberID id.MemberID, eventID id.EventID) (*models.Registration, error)
	CountConfirmed(ctx context.Context, eventID id.EventID) (int, error)
	CountWaitlisted(ctx context.Context, eventID id.EventID) (int, error)
	ListWaitlisted(ctx context.Context, eventID id.EventID) ([]models.Registration, error)
}

// Notifier receives registration outcomes. Dispatch failures are logged and
// swallowed; they never roll back a registration.
type Notifier interface {
	Dispatch(ctx context.Context, n notify.Notification) error
}

// CancelResult is the public contract of Cancel. Promotion is part of the
// contract: when cancelling a confirmed registration frees a seat and the
// waitlist is non-empty, the earliest-waitlisted registration is promoted
// into it and returned here.
type CancelResult struct {
	Cancelled *models.Registration
	Promoted  *models.Registration
}

// Service is the registration engine.
type Service struct {
	events        EventStore
	members       MemberStore
	registrations RegistrationStore
	runner        tx.Runner
	notifier      Notifier
	logger        *slog.Logger
	metrics       *metrics.Metrics

	locks eventLocks
}

// Option configures optional service dependencies.
type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTxRunner(runner tx.Runner) Option {
	return func(s *Service) { s.runner = runner }
}

// New constructs a Service. Without WithTxRunner the service runs units of
// work directly and relies on its per-event lock alone, which is correct for
// in-memory stores in a single process.
func New(events EventStore, members MemberStore, registrations RegistrationStore, opts ...Option) *Service {
	s := &Service{
		events:        events,
		members:       members,
		registrations: registrations,
		runner:        tx.NewNoop(),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a registration for the calling member. The capacity check
// and the confirm/waitlist decision happen atomically per event: under the
// event lock and, when a SQL runner is configured, inside one transaction
// with the event row locked.
func (s *Service) Register(ctx context.Context, memberID id.MemberID, eventID id.EventID) (*models.Registration, error) {
	return s.register(ctx, memberID, eventID, notify.CategoryMemberInitiated)
}

// RegisterByStaff registers another member on a staff user's behalf. Same
// semantics as Register, distinct notification category.
func (s *Service) RegisterByStaff(ctx context.Context, memberID id.MemberID, eventID id.EventID) (*models.Registration, error) {
	return s.register(ctx, memberID, eventID, notify.CategoryStaffInitiated)
}

func (s *Service) register(ctx context.Context, memberID id.MemberID, eventID id.EventID, category notify.Category) (*models.Registration, error) {
	start := time.Now()
	if memberID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "member id is required")
	}
	if eventID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "event id is required")
	}

	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "member not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load member")
	}

	unlock := s.locks.lock(eventID)
	defer unlock()

	var reg *models.Registration
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx).UTC()

		event, err := s.events.FindByIDForUpdate(txCtx, eventID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "event not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock event")
		}
		if !event.AcceptingRegistrations() {
			return dErrors.Newf(dErrors.CodeConflict, "event %s is not accepting registrations", eventID)
		}

		if _, err := s.registrations.FindActive(txCtx, memberID, eventID); err == nil {
			return dErrors.New(dErrors.CodeConflict, "already registered for this event")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing registration")
		}

		atCapacity, err := s.atCapacity(txCtx, event)
		if err != nil {
			return err
		}

		if atCapacity {
			waitlistSize, err := s.registrations.CountWaitlisted(txCtx, eventID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to size waitlist")
			}
			reg = models.NewWaitlisted(memberID, eventID, waitlistSize+1, now)
			if err := s.registrations.Create(txCtx, reg); err != nil {
				return translateCreateErr(err)
			}
			return nil
		}

		reg = models.NewConfirmed(memberID, eventID, now)
		if err := s.registrations.Create(txCtx, reg); err != nil {
			return translateCreateErr(err)
		}
		event.ApplySeatTaken(now)
		if err := s.events.Update(txCtx, event); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update event capacity")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.observeRegister(start, reg)
	s.dispatch(ctx, notify.ForRegistration(reg, category))
	return reg, nil
}

// atCapacity combines the canonical live count of confirmed registrations
// with the event's cached counter and status. The redundancy guards against
// drift between the cached aggregate and the registration rows; the live
// count is always consulted.
func (s *Service) atCapacity(ctx context.Context, event *eventmodels.Event) (bool, error) {
	if event.MaxCapacity == nil {
		return false, nil
	}
	liveConfirmed, err := s.registrations.CountConfirmed(ctx, event.ID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count confirmed registrations")
	}
	return liveConfirmed >= *event.MaxCapacity || event.AtCapacity(), nil
}

// Cancel cancels the member's active registration. Cancelling a confirmed
// registration frees the seat and promotes the earliest waitlisted
// registrant into it; cancelling a waitlisted registration renumbers the
// queue so positions stay contiguous.
func (s *Service) Cancel(ctx context.Context, memberID id.MemberID, eventID id.EventID) (*CancelResult, error) {
	if memberID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "member id is required")
	}
	if eventID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "event id is required")
	}

	unlock := s.locks.lock(eventID)
	defer unlock()

	result := &CancelResult{}
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx).UTC()

		event, err := s.events.FindByIDForUpdate(txCtx, eventID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "event not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock event")
		}

		reg, err := s.registrations.FindActive(txCtx, memberID, eventID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "registration not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
		}

		wasConfirmed := reg.Status == models.StatusConfirmed
		reg.ApplyCancel(now)
		if err := s.registrations.Update(txCtx, reg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to cancel registration")
		}
		result.Cancelled = reg

		if wasConfirmed {
			event.ApplySeatFreed(now)
			promoted, err := s.promoteNext(txCtx, event, now)
			if err != nil {
				return err
			}
			result.Promoted = promoted
			if err := s.events.Update(txCtx, event); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update event capacity")
			}
			return nil
		}

		return s.renumberWaitlist(txCtx, eventID)
	})
	if err != nil {
		return nil, err
	}

	s.incrementCancelled(result)
	s.dispatch(ctx, notify.ForRegistration(result.Cancelled, notify.CategoryMemberInitiated))
	if result.Promoted != nil {
		s.dispatch(ctx, notify.ForPromotion(result.Promoted, notify.CategoryMemberInitiated))
	}
	return result, nil
}

// promoteNext moves the head of the waitlist into the seat freed by a
// confirmed cancellation and renumbers the remaining queue. Returns nil when
// the waitlist is empty or the event stopped accepting registrations.
func (s *Service) promoteNext(ctx context.Context, event *eventmodels.Event, now time.Time) (*models.Registration, error) {
	if !event.AcceptingRegistrations() {
		return nil, nil
	}
	waitlist, err := s.registrations.ListWaitlisted(ctx, event.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read waitlist")
	}
	if len(waitlist) == 0 {
		return nil, nil
	}

	promoted := waitlist[0]
	promoted.ApplyPromotion(now)
	if err := s.registrations.Update(ctx, &promoted); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to promote waitlisted registration")
	}
	event.ApplySeatTaken(now)

	for i, reg := range waitlist[1:] {
		position := i + 1
		reg.WaitlistPosition = &position
		if err := s.registrations.Update(ctx, &reg); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to renumber waitlist")
		}
	}
	return &promoted, nil
}

// renumberWaitlist rewrites positions 1..k in queue order after a
// waitlisted registration leaves the queue.
func (s *Service) renumberWaitlist(ctx context.Context, eventID id.EventID) error {
	waitlist, err := s.registrations.ListWaitlisted(ctx, eventID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read waitlist")
	}
	for i, reg := range waitlist {
		position := i + 1
		if reg.WaitlistPosition != nil && *reg.WaitlistPosition == position {
			continue
		}
		reg.WaitlistPosition = &position
		if err := s.registrations.Update(ctx, &reg); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to renumber waitlist")
		}
	}
	return nil
}

func translateCreateErr(err error) error {
	if errors.Is(err, sentinel.ErrConflict) {
		return dErrors.New(dErrors.CodeConflict, "already registered for this event")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create registration")
}

func (s *Service) dispatch(ctx context.Context, n notify.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Dispatch(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "notification dispatch failed",
			"kind", n.Kind,
			"registration_id", n.RegistrationID,
			"error", err,
		)
	}
}

func (s *Service) observeRegister(start time.Time, reg *models.Registration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveRegister(start)
	switch reg.Status {
	case models.StatusConfirmed:
		s.metrics.Confirmed.Inc()
	case models.StatusWaitlisted:
		s.metrics.Waitlisted.Inc()
	}
}

func (s *Service) incrementCancelled(result *CancelResult) {
	if s.metrics == nil {
		return
	}
	s.metrics.Cancelled.Inc()
	if result.Promoted != nil {
		s.metrics.Promoted.Inc()
	}
}

// eventLocks serializes registration and cancellation per event id. With
// Postgres the row lock does the real serialization across processes; this
// keeps single-process and in-memory runs correct.
type eventLocks struct {
	mu    sync.Mutex
	locks map[id.EventID]*sync.Mutex
}

func (l *eventLocks) lock(eventID id.EventID) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[id.EventID]*sync.Mutex)
	}
	m, ok := l.locks[eventID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[eventID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
