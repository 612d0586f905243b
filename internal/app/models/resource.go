package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ResourceType is the closed set of resource collections
type ResourceType string

const (
	ResourceEvents         ResourceType = "events"
	ResourcePYQs           ResourceType = "pyqs"
	ResourceCertifications ResourceType = "certifications"
	ResourceHackathons     ResourceType = "hackathons"
	ResourceInterviews     ResourceType = "interviews"
	ResourceQuizzes        ResourceType = "quizzes"
	ResourceFlashcardSets  ResourceType = "flashcardSets"
)

// FieldKind is the input kind of a custom registration field
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldEmail    FieldKind = "email"
	FieldNumber   FieldKind = "number"
	FieldTel      FieldKind = "tel"
	FieldTextarea FieldKind = "textarea"
	FieldSelect   FieldKind = "select"
)

// Valid reports whether k is a known field kind
func (k FieldKind) Valid() bool {
	switch k {
	case FieldText, FieldEmail, FieldNumber, FieldTel, FieldTextarea, FieldSelect:
		return true
	}
	return false
}

// RegistrationField describes one custom input an event asks registrants for
type RegistrationField struct {
	Label    string    `json:"label"`
	Kind     FieldKind `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
}

// Registration is one entry of the append-only registration detail log
type Registration struct {
	UserID    string            `json:"userId"`
	Data      map[string]string `json:"data"`
	CreatedAt time.Time         `json:"createdAt"`
}

// EventDetails holds the event-only part of a resource
type EventDetails struct {
	Date               string              `json:"date"`
	Time               string              `json:"time"`
	Location           string              `json:"location"`
	Capacity           int                 `json:"capacity"`
	RegistrationFields []RegistrationField `json:"registrationFields"`
	// RegisteredUsers is ordered and holds each user id at most once
	RegisteredUsers []string       `json:"registeredUsers"`
	Registrations   []Registration `json:"registrations,omitempty"`
}

// HasRegistrant reports whether userID already holds a seat
func (e *EventDetails) HasRegistrant(userID string) bool {
	return containsString(e.RegisteredUsers, userID)
}

// Full reports whether a new registrant would exceed capacity. Zero capacity means unlimited.
func (e *EventDetails) Full() bool {
	return e.Capacity > 0 && len(e.RegisteredUsers) >= e.Capacity
}

// CertificationDetails holds the certification-only part of a resource
type CertificationDetails struct {
	IssuedTo []string `json:"issuedTo"`
}

// Resource is the common envelope of every resource type. Type-specific
// fields without a typed home are kept in Attributes.
type Resource struct {
	ID            string
	Type          ResourceType
	Title         string
	Description   string
	CreatedBy     *string
	IsActive      bool
	AssignedTo    []string
	BookmarkedBy  []string
	FileID        *string
	Downloads     int64
	Attributes    map[string]interface{}
	Event         *EventDetails
	Certification *CertificationDetails
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// VisibleTo reports whether a non-admin caller may see an owned-type record
func (r *Resource) VisibleTo(c *Caller) bool {
	if c == nil {
		return false
	}
	if c.IsAdmin() || r.IsActive {
		return true
	}
	if r.CreatedBy != nil && *r.CreatedBy == c.ID {
		return true
	}
	return containsString(r.AssignedTo, c.ID)
}

// Assign adds userID to AssignedTo; it reports false when already present
func (r *Resource) Assign(userID string) bool {
	var added bool
	r.AssignedTo, added = addUnique(r.AssignedTo, userID)
	return added
}

// ToggleBookmark flips userID's membership in BookmarkedBy and returns the new state
func (r *Resource) ToggleBookmark(userID string) bool {
	if containsString(r.BookmarkedBy, userID) {
		r.BookmarkedBy = removeString(r.BookmarkedBy, userID)
		return false
	}
	r.BookmarkedBy = append(r.BookmarkedBy, userID)
	return true
}

// Clone returns a deep copy so stores never share slices with callers
func (r *Resource) Clone() *Resource {
	out := *r
	out.CreatedBy = cloneStringPtr(r.CreatedBy)
	out.FileID = cloneStringPtr(r.FileID)
	out.AssignedTo = append([]string(nil), r.AssignedTo...)
	out.BookmarkedBy = append([]string(nil), r.BookmarkedBy...)
	if r.Attributes != nil {
		out.Attributes = make(map[string]interface{}, len(r.Attributes))
		for k, v := range r.Attributes {
			out.Attributes[k] = v
		}
	}
	if r.Event != nil {
		ev := *r.Event
		ev.RegistrationFields = append([]RegistrationField(nil), r.Event.RegistrationFields...)
		ev.RegisteredUsers = append([]string(nil), r.Event.RegisteredUsers...)
		ev.Registrations = append([]Registration(nil), r.Event.Registrations...)
		out.Event = &ev
	}
	if r.Certification != nil {
		out.Certification = &CertificationDetails{IssuedTo: append([]string(nil), r.Certification.IssuedTo...)}
	}
	return &out
}

// keys owned by the store or the registration engine; never written from a request body
var protectedKeys = map[string]struct{}{
	"id":              {},
	"_id":             {},
	"type":            {},
	"createdBy":       {},
	"createdAt":       {},
	"updatedAt":       {},
	"downloads":       {},
	"registeredUsers": {},
	"registrations":   {},
}

// ApplyPatch writes every field present in patch onto r and leaves the others untouched.
// Unknown keys are stored in Attributes.
func (r *Resource) ApplyPatch(patch map[string]json.RawMessage) error {
	for key, raw := range patch {
		if _, skip := protectedKeys[key]; skip {
			continue
		}
		if err := r.applyField(key, raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}
	return nil
}

func (r *Resource) applyField(key string, raw json.RawMessage) error {
	switch key {
	case "title":
		return json.Unmarshal(raw, &r.Title)
	case "description":
		return json.Unmarshal(raw, &r.Description)
	case "isActive":
		return json.Unmarshal(raw, &r.IsActive)
	case "fileId":
		return json.Unmarshal(raw, &r.FileID)
	case "assignedTo":
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			return err
		}
		r.AssignedTo = dedupe(ids)
		return nil
	case "bookmarkedBy":
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			return err
		}
		r.BookmarkedBy = dedupe(ids)
		return nil
	}

	if r.Event != nil {
		switch key {
		case "date":
			return json.Unmarshal(raw, &r.Event.Date)
		case "time":
			return json.Unmarshal(raw, &r.Event.Time)
		case "location":
			return json.Unmarshal(raw, &r.Event.Location)
		case "capacity":
			return json.Unmarshal(raw, &r.Event.Capacity)
		case "registrationFields":
			return json.Unmarshal(raw, &r.Event.RegistrationFields)
		}
	}

	if r.Certification != nil && key == "issuedTo" {
		var ids []string
		if err := json.Unmarshal(raw, &ids); err != nil {
			return err
		}
		r.Certification.IssuedTo = dedupe(ids)
		return nil
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	if r.Attributes == nil {
		r.Attributes = make(map[string]interface{})
	}
	r.Attributes[key] = v
	return nil
}

// MarshalJSON flattens the envelope, the typed details and Attributes into one object
func (r *Resource) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Attributes)+16)
	for k, v := range r.Attributes {
		out[k] = v
	}
	out["id"] = r.ID
	out["type"] = r.Type
	out["title"] = r.Title
	out["description"] = r.Description
	out["isActive"] = r.IsActive
	out["assignedTo"] = nonNil(r.AssignedTo)
	out["bookmarkedBy"] = nonNil(r.BookmarkedBy)
	out["downloads"] = r.Downloads
	out["createdAt"] = r.CreatedAt
	out["updatedAt"] = r.UpdatedAt
	if r.CreatedBy != nil {
		out["createdBy"] = *r.CreatedBy
	}
	if r.FileID != nil {
		out["fileId"] = *r.FileID
	}
	if r.Event != nil {
		out["date"] = r.Event.Date
		out["time"] = r.Event.Time
		out["location"] = r.Event.Location
		out["capacity"] = r.Event.Capacity
		fields := r.Event.RegistrationFields
		if fields == nil {
			fields = []RegistrationField{}
		}
		out["registrationFields"] = fields
		out["registeredUsers"] = nonNil(r.Event.RegisteredUsers)
	}
	if r.Certification != nil {
		out["issuedTo"] = nonNil(r.Certification.IssuedTo)
	}
	return json.Marshal(out)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func addUnique(list []string, v string) ([]string, bool) {
	if containsString(list, v) {
		return list, false
	}
	return append(list, v), true
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func dedupe(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out, _ = addUnique(out, s)
	}
	return out
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
