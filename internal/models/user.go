package models

import "time"

// Role represents the closed set of platform roles.
type Role string

const (
	RoleGuest      Role = "guest"
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// roleLevels is the single authoritative ordering used for every
// authorization comparison in the application.
var roleLevels = map[Role]int{
	RoleGuest:      1,
	RoleStudent:    2,
	RoleInstructor: 3,
	RoleAdmin:      4,
}

// Level returns the hierarchy rank of the role. Unknown roles rank below guest.
func (r Role) Level() int {
	return roleLevels[r]
}

// AtLeast reports whether the role ranks at or above the required role.
func (r Role) AtLeast(required Role) bool {
	return r.Level() >= required.Level()
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// DashboardPath maps a role to its default landing page. Unknown roles fall
// back to the lowest-privilege landing page.
func (r Role) DashboardPath() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleInstructor:
		return "/instructor/dashboard"
	default:
		return "/student/dashboard"
	}
}

// User represents a platform account as stored in the user store.
type User struct {
	ID            string     `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	Name          string     `db:"name" json:"name"`
	Role          Role       `db:"role" json:"role"`
	Avatar        string     `db:"avatar" json:"avatar,omitempty"`
	EmailVerified bool       `db:"email_verified" json:"email_verified"`
	Active        bool       `db:"active" json:"active"`
	LastLogin     *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// PublicUser is the externally visible projection of a user record.
type PublicUser struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          Role      `json:"role"`
	Avatar        string    `json:"avatar,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Public strips credential material from the record.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		Avatar:        u.Avatar,
		EmailVerified: u.EmailVerified,
		Active:        u.Active,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *Role
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
