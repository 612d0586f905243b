package dto

import "github.com/yigit/deptportal/internal/app/models"

// LoginRequest represents login credentials. Type names the portal the user signs in to.
type LoginRequest struct {
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required"`
	Type     models.RoleType `json:"type" binding:"required,oneof=student admin"`
}

// SignupRequest creates a student account
type SignupRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// SessionResponse is returned after a successful login or signup
type SessionResponse struct {
	Role models.RoleType `json:"role"`
	Name string          `json:"name"`
}

// MeResponse describes the current caller
type MeResponse struct {
	ID    string          `json:"id"`
	Email string          `json:"email"`
	Name  string          `json:"name"`
	Role  models.RoleType `json:"role"`
}
