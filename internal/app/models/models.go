package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent RoleType = "student"
	RoleAdmin   RoleType = "admin"
)

// Valid reports whether r is a known role
func (r RoleType) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// Caller is the identity resolved from the session cookie for a single request.
// A nil *Caller means the request is anonymous.
type Caller struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Role  RoleType `json:"role"`
}

// IsAdmin reports whether the caller holds the admin role
func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
