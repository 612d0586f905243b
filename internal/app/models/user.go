package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           string                 `json:"id" db:"id"`
	Name         string                 `json:"name" db:"name"`
	Email        string                 `json:"email" db:"email"`
	PasswordHash string                 `json:"-" db:"password_hash"`
	Role         RoleType               `json:"role" db:"role"`
	IsActive     bool                   `json:"isActive" db:"is_active"`
	Preferences  map[string]interface{} `json:"preferences,omitempty" db:"preferences"`
	LastLoginAt  *time.Time             `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt    time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time              `json:"updatedAt" db:"updated_at"`
}

// AsCaller converts a stored user into the per-request identity
func (u *User) AsCaller() *Caller {
	return &Caller{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
