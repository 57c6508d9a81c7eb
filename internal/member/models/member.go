// Package models defines the member entity as the core sees it. Profile CRUD
// lives outside this module; only identity, display fields, and the staff
// role matter here.
package models

import (
	"time"

	id "gatherly/pkg/domain"
)

// Role distinguishes regular members from staff.
type Role string

const (
	RoleMember Role = "member"
	RoleStaff  Role = "staff"
)

// Member is a registered person who can sign up for events.
type Member struct {
	ID        id.MemberID `json:"id"`
	FullName  string      `json:"full_name"`
	Email     string      `json:"email"`
	Role      Role        `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// IsStaff reports whether the member may perform staff operations.
func (m *Member) IsStaff() bool {
	return m.Role == RoleStaff
}
