package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gatherly/internal/member/models"
	id "gatherly/pkg/domain"
	"gatherly/pkg/platform/sentinel"
	txcontext "gatherly/pkg/platform/tx"
)

// Postgres stores members in the members table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a Postgres-backed member store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Create inserts a member row.
func (s *Postgres) Create(ctx context.Context, member *models.Member) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO members (id, full_name, email, role, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(member.ID), member.FullName, member.Email, string(member.Role), member.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// FindByID returns the member or ErrNotFound.
func (s *Postgres) FindByID(ctx context.Context, memberID id.MemberID) (*models.Member, error) {
	var (
		member models.Member
		mid    uuid.UUID
		role   string
	)
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, full_name, email, role, created_at FROM members WHERE id = $1`,
		uuid.UUID(memberID),
	).Scan(&mid, &member.FullName, &member.Email, &role, &member.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	member.ID = id.MemberID(mid)
	member.Role = models.Role(role)
	return &member, nil
}
