package domain

import "time"

// Role is fixed when an identity is created.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// User models a registered identity. Admins create managers and managers
// create employees; bootstrap admins have no creator.
type User struct {
	ID           int64     `json:"id"`
	UUID         string    `json:"uuid"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedByID  *int64    `json:"created_by_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreatedBy reports whether creatorID created u.
func (u *User) CreatedBy(creatorID int64) bool {
	return u.CreatedByID != nil && *u.CreatedByID == creatorID
}
