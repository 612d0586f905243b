package dto

import "github.com/yigit/deptportal/internal/app/models"

// CreateNotificationRequest creates a notification addressed to a user or a role
type CreateNotificationRequest struct {
	Type       string           `json:"type" binding:"required,max=64"`
	Title      string           `json:"title" binding:"required,max=200"`
	Message    string           `json:"message" binding:"max=2000"`
	UserID     *string          `json:"userId,omitempty"`
	TargetRole *models.RoleType `json:"targetRole,omitempty" binding:"omitempty,oneof=student admin"`
	QuizID     *string          `json:"quizId,omitempty"`
	StudentID  *string          `json:"studentId,omitempty"`
}

// UpdateNotificationRequest changes status and/or read flag
type UpdateNotificationRequest struct {
	ID     string                     `json:"id" binding:"required"`
	Status *models.NotificationStatus `json:"status,omitempty" binding:"omitempty,oneof=pending approved rejected"`
	Read   *bool                      `json:"read,omitempty"`
}

// DeleteRequest carries the id of the record to delete
type DeleteRequest struct {
	ID string `json:"id" binding:"required"`
}
