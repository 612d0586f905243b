package models

import "time"

// NotificationStatus tracks the approval state of a request notification
type NotificationStatus string

const (
	NotificationPending  NotificationStatus = "pending"
	NotificationApproved NotificationStatus = "approved"
	NotificationRejected NotificationStatus = "rejected"
)

// Valid reports whether s is a known status
func (s NotificationStatus) Valid() bool {
	switch s {
	case NotificationPending, NotificationApproved, NotificationRejected:
		return true
	}
	return false
}

// Notification types produced by the portal itself
const (
	NotificationTypeQuizAccessRequest  = "quiz_access_request"
	NotificationTypeQuizAccessApproved = "quiz_access_approved"
	NotificationTypeQuizAccessRejected = "quiz_access_rejected"
)

// Notification is addressed either to one user (UserID) or to every user of a role (TargetRole)
type Notification struct {
	ID         string             `json:"id" db:"id"`
	Type       string             `json:"type" db:"type"`
	Title      string             `json:"title" db:"title"`
	Message    string             `json:"message" db:"message"`
	UserID     *string            `json:"userId,omitempty" db:"user_id"`
	TargetRole *RoleType          `json:"targetRole,omitempty" db:"target_role"`
	QuizID     *string            `json:"quizId,omitempty" db:"quiz_id"`
	StudentID  *string            `json:"studentId,omitempty" db:"student_id"`
	Status     NotificationStatus `json:"status" db:"status"`
	Read       bool               `json:"read" db:"read"`
	CreatedAt  time.Time          `json:"createdAt" db:"created_at"`
}

// AddressedTo reports whether the notification is visible to the caller
func (n *Notification) AddressedTo(c *Caller) bool {
	if c == nil {
		return false
	}
	if n.UserID != nil && *n.UserID == c.ID {
		return true
	}
	return n.TargetRole != nil && *n.TargetRole == c.Role
}

// NotificationUpdate lists the mutable fields of a notification; nil means unchanged
type NotificationUpdate struct {
	Status *NotificationStatus
	Read   *bool
}
