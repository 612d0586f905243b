package dto

import (
	"time"

	"github.com/yigit/deptportal/internal/app/models"
)

// CreateUserRequest is used by admins to add accounts
type CreateUserRequest struct {
	Name     string          `json:"name" binding:"required,max=120"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8"`
	Role     models.RoleType `json:"role" binding:"required,oneof=student admin"`
}

// UpdateUserRequest is used by admins; nil fields are left unchanged
type UpdateUserRequest struct {
	ID       string           `json:"id" binding:"required"`
	Name     *string          `json:"name,omitempty" binding:"omitempty,max=120"`
	Email    *string          `json:"email,omitempty" binding:"omitempty,email"`
	Password *string          `json:"password,omitempty" binding:"omitempty,min=8"`
	Role     *models.RoleType `json:"role,omitempty" binding:"omitempty,oneof=student admin"`
	IsActive *bool            `json:"isActive,omitempty"`
}

// UpdateProfileRequest is a user's update of their own account
type UpdateProfileRequest struct {
	Name            *string                `json:"name,omitempty" binding:"omitempty,max=120"`
	Preferences     map[string]interface{} `json:"preferences,omitempty"`
	CurrentPassword string                 `json:"currentPassword,omitempty"`
	NewPassword     *string                `json:"newPassword,omitempty" binding:"omitempty,min=8"`
}

// UserResponse represents a user without credentials
type UserResponse struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Email       string                 `json:"email"`
	Role        models.RoleType        `json:"role"`
	IsActive    bool                   `json:"isActive"`
	Preferences map[string]interface{} `json:"preferences,omitempty"`
	LastLoginAt *time.Time             `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// NewUserResponse maps a user model to its response
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		IsActive:    u.IsActive,
		Preferences: u.Preferences,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
