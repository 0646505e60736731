package models

import "time"

// UserRole represents the recognised roles. Anything else is rejected at the
// service boundary.
type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

// ValidRole reports whether the value is one of the recognised roles.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered platform user. Email is the natural key used
// for all identity-scoped lookups.
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Role      UserRole  `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *UserRole
	Search   string
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// RoleLookup is the internal result of a role query. Denied marks an
// identity mismatch which handlers must render as the innocuous
// non-admin payload rather than an error.
type RoleLookup struct {
	Denied bool
	Role   UserRole
}

// Admin reports whether the lookup resolved to an admin role.
func (r RoleLookup) Admin() bool {
	return !r.Denied && r.Role == RoleAdmin
}
