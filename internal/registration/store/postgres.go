package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gatherly/internal/registration/models"
	id "gatherly/pkg/domain"
	"gatherly/pkg/platform/sentinel"
	txcontext "gatherly/pkg/platform/tx"
)

// Postgres stores registrations in the registrations table. The partial
// unique index registrations_one_active_per_member_event enforces the
// one-active-registration invariant at the database level.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a Postgres-backed registration store.
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

const registrationColumns = `id, member_id, event_id, status, waitlist_position,
	requested_at, confirmed_at, cancelled_at, checked_in_at`

// Create inserts a registration row. Fails with ErrConflict when the partial
// unique index rejects a second active registration for the pair.
func (s *Postgres) Create(ctx context.Context, reg *models.Registration) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO registrations (`+registrationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(reg.ID), uuid.UUID(reg.MemberID), uuid.UUID(reg.EventID),
		string(reg.Status), reg.WaitlistPosition, reg.RequestedAt,
		reg.ConfirmedAt, reg.CancelledAt, reg.CheckedInAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// Update persists registration mutations.
func (s *Postgres) Update(ctx context.Context, reg *models.Registration) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE registrations
		 SET status = $2, waitlist_position = $3, confirmed_at = $4,
		     cancelled_at = $5, checked_in_at = $6
		 WHERE id = $1`,
		uuid.UUID(reg.ID), string(reg.Status), reg.WaitlistPosition,
		reg.ConfirmedAt, reg.CancelledAt, reg.CheckedInAt,
	)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update registration rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// FindActive returns the non-cancelled registration for the pair.
func (s *Postgres) FindActive(ctx context.Context, memberID id.MemberID, eventID id.EventID) (*models.Registration, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+registrationColumns+`
		 FROM registrations
		 WHERE member_id = $1 AND event_id = $2 AND status <> 'CANCELLED'`,
		uuid.UUID(memberID), uuid.UUID(eventID),
	)
	return scanRegistration(row)
}

// CountConfirmed returns the live count of CONFIRMED registrations: the
// canonical capacity signal.
func (s *Postgres) CountConfirmed(ctx context.Context, eventID id.EventID) (int, error) {
	return s.countByStatus(ctx, eventID, string(models.StatusConfirmed))
}

// CountWaitlisted returns the current waitlist size for the event.
func (s *Postgres) CountWaitlisted(ctx context.Context, eventID id.EventID) (int, error) {
	return s.countByStatus(ctx, eventID, string(models.StatusWaitlisted))
}

func (s *Postgres) countByStatus(ctx context.Context, eventID id.EventID, status string) (int, error) {
	var count int
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status = $2`,
		uuid.UUID(eventID), status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

// ListActiveByEvent returns all non-cancelled registrations for the event,
// ordered by request time.
func (s *Postgres) ListActiveByEvent(ctx context.Context, eventID id.EventID) ([]models.Registration, error) {
	return s.list(ctx,
		`SELECT `+registrationColumns+`
		 FROM registrations
		 WHERE event_id = $1 AND status <> 'CANCELLED'
		 ORDER BY requested_at, id`,
		uuid.UUID(eventID),
	)
}

// ListWaitlisted returns the event's waitlist in position order. Position is
// assigned under the event row lock and is the authoritative queue order;
// request timestamps are pinned before serialization and may disagree with
// it under racing requests.
func (s *Postgres) ListWaitlisted(ctx context.Context, eventID id.EventID) ([]models.Registration, error) {
	return s.list(ctx,
		`SELECT `+registrationColumns+`
		 FROM registrations
		 WHERE event_id = $1 AND status = 'WAITLISTED'
		 ORDER BY waitlist_position`,
		uuid.UUID(eventID),
	)
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]models.Registration, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []models.Registration
	for rows.Next() {
		reg, err := scanRegistrationRow(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row *sql.Row) (*models.Registration, error) {
	reg, err := scanRegistrationRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return reg, err
}

func scanRegistrationRow(row rowScanner) (*models.Registration, error) {
	var (
		reg      models.Registration
		regID    uuid.UUID
		memberID uuid.UUID
		eventID  uuid.UUID
		status   string
		position sql.NullInt64
	)
	if err := row.Scan(&regID, &memberID, &eventID, &status, &position,
		&reg.RequestedAt, &reg.ConfirmedAt, &reg.CancelledAt, &reg.CheckedInAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan registration: %w", err)
	}
	reg.ID = id.RegistrationID(regID)
	reg.MemberID = id.MemberID(memberID)
	reg.EventID = id.EventID(eventID)
	reg.Status = models.Status(status)
	if position.Valid {
		p := int(position.Int64)
		reg.WaitlistPosition = &p
	}
	return &reg, nil
}
