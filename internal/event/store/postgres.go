package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gatherly/internal/event/models"
	id "gatherly/pkg/domain"
	"gatherly/pkg/platform/sentinel"
	txcontext "gatherly/pkg/platform/tx"
)

// Postgres stores events in the events table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a Postgres-backed event store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Postgres) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const eventColumns = `id, name, starts_at, max_capacity, confirmed_count, status, created_at, updated_at`

// Create inserts a new event row.
func (s *Postgres) Create(ctx context.Context, event *models.Event) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(event.ID), event.Name, event.StartsAt, event.MaxCapacity,
		event.ConfirmedCount, string(event.Status), event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// FindByID returns the event or ErrNotFound.
func (s *Postgres) FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, uuid.UUID(eventID))
	return scanEvent(row)
}

// FindByIDForUpdate locks the event row for the lifetime of the surrounding
// transaction. This is the serialization point for capacity decisions: two
// concurrent registrations for the same event queue up here.
func (s *Postgres) FindByIDForUpdate(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, uuid.UUID(eventID))
	return scanEvent(row)
}

// List returns all events ordered by creation time.
func (s *Postgres) List(ctx context.Context) ([]models.Event, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEventRow(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

// Update persists event mutations.
func (s *Postgres) Update(ctx context.Context, event *models.Event) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE events
		 SET name = $2, starts_at = $3, max_capacity = $4, confirmed_count = $5,
		     status = $6, updated_at = $7
		 WHERE id = $1`,
		uuid.UUID(event.ID), event.Name, event.StartsAt, event.MaxCapacity,
		event.ConfirmedCount, string(event.Status), event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row *sql.Row) (*models.Event, error) {
	event, err := scanEventRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return event, err
}

func scanEventRow(row rowScanner) (*models.Event, error) {
	var (
		event     models.Event
		eventID   uuid.UUID
		startsAt  sql.NullTime
		capacity  sql.NullInt64
		status    string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&eventID, &event.Name, &startsAt, &capacity,
		&event.ConfirmedCount, &status, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	event.ID = id.EventID(eventID)
	event.Status = models.Status(status)
	event.CreatedAt = createdAt
	event.UpdatedAt = updatedAt
	if startsAt.Valid {
		t := startsAt.Time
		event.StartsAt = &t
	}
	if capacity.Valid {
		c := int(capacity.Int64)
		event.MaxCapacity = &c
	}
	return &event, nil
}
