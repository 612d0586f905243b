package websocket

import (
	"encoding/json"
	"time"

	"github.com/yigit/deptportal/internal/app/models"
)

// Envelope is the frame written to notification sockets
type Envelope struct {
	Type         string               `json:"type"`
	Notification *models.Notification `json:"notification,omitempty"`
	SentAt       time.Time            `json:"sentAt"`
}

func newNotificationEnvelope(n *models.Notification) *Envelope {
	return &Envelope{Type: "notification", Notification: n, SentAt: time.Now().UTC()}
}

// addressedTo reports whether a connection of userID with role should receive the frame
func (e *Envelope) addressedTo(userID string, role models.RoleType) bool {
	n := e.Notification
	if n == nil {
		return false
	}
	if n.UserID != nil {
		return *n.UserID == userID
	}
	if n.TargetRole != nil {
		return *n.TargetRole == role
	}
	return false
}

func (e *Envelope) encode() ([]byte, error) {
	return json.Marshal(e)
}
