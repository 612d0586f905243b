package dto

import (
	"encoding/json"

	"github.com/yigit/deptportal/internal/app/models"
)

// ResourceQuery selects the collection of a resource request
type ResourceQuery struct {
	Type string `form:"type" binding:"required"`
	ID   string `form:"id"`
}

// RegisterRequest is the event-registration form of a resource update
type RegisterRequest struct {
	ID                  string            `json:"id"`
	AddRegisteredUserID string            `json:"addRegisteredUserId"`
	RegistrationData    map[string]string `json:"registrationData"`
}

// ResourcePatch is the raw body of a create or update
type ResourcePatch map[string]json.RawMessage

// ID returns the string id carried by the body, if any
func (p ResourcePatch) ID() string {
	raw, ok := p["id"]
	if !ok {
		raw, ok = p["_id"]
	}
	if !ok {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return ""
	}
	return id
}

// IsRegistration reports whether the body is an event registration rather than a field update
func (p ResourcePatch) IsRegistration() bool {
	_, ok := p["addRegisteredUserId"]
	return ok
}

// RegistrationResponse reports the registration outcome
type RegistrationResponse struct {
	EventID           string `json:"eventId"`
	UserID            string `json:"userId"`
	AlreadyRegistered bool   `json:"alreadyRegistered"`
	RegisteredCount   int    `json:"registeredCount"`
	Capacity          int    `json:"capacity"`
}

// NewRegistrationResponse maps an outcome to its response
func NewRegistrationResponse(o *models.RegistrationOutcome) RegistrationResponse {
	return RegistrationResponse{
		EventID:           o.EventID,
		UserID:            o.UserID,
		AlreadyRegistered: o.AlreadyRegistered,
		RegisteredCount:   o.RegisteredCount,
		Capacity:          o.Capacity,
	}
}

// BookmarkResponse reports the caller's bookmark state after a toggle
type BookmarkResponse struct {
	ResourceID string `json:"resourceId"`
	Bookmarked bool   `json:"bookmarked"`
}
