// Package service implements event creation and read operations.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gatherly/internal/event/models"
	id "gatherly/pkg/domain"
	dErrors "gatherly/pkg/domain-errors"
	"gatherly/pkg/platform/sentinel"
	"gatherly/pkg/requestcontext"
)

// Store defines event persistence for this service.
type Store interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error)
	List(ctx context.Context) ([]models.Event, error)
}

// CreateRequest carries the validated inputs for event creation.
type CreateRequest struct {
	Name        string
	MaxCapacity *int
	StartsAt    *time.Time
}

// Service exposes event operations.
type Service struct {
	store  Store
	logger *slog.Logger
}

// Option configures optional service dependencies.
type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New constructs a Service.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and persists a new event. New events start OPEN with an
// empty seat count.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Event, error) {
	now := requestcontext.Now(ctx).UTC()
	event, err := models.NewEvent(id.NewEventID(), req.Name, req.MaxCapacity, req.StartsAt, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, event); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "event already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create event")
	}
	s.logger.InfoContext(ctx, "event created",
		"event_id", event.ID,
		"name", event.Name,
		"max_capacity", event.MaxCapacity,
	)
	return event, nil
}

// Get returns a single event.
func (s *Service) Get(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	if eventID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "event id is required")
	}
	event, err := s.store.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
	}
	return event, nil
}

// List returns all events.
func (s *Service) List(ctx context.Context) ([]models.Event, error) {
	events, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}
	return events, nil
}
