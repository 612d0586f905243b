package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yigit/deptportal/internal/pkg/apperrors"
)

// ReadPolicy decides who may list and fetch records of a type
type ReadPolicy int

const (
	// ReadPublic allows anonymous reads
	ReadPublic ReadPolicy = iota
	// ReadAuthenticated requires a session
	ReadAuthenticated
	// ReadOwned requires a session and limits non-admins to records they created, were assigned, or that are active
	ReadOwned
)

// Schema is the per-type definition used by the generic resource store
type Schema struct {
	Type     ResourceType
	Read     ReadPolicy
	init     func(*Resource)
	validate func(*Resource) error
}

var schemas = map[ResourceType]Schema{
	ResourceEvents: {
		Type:     ResourceEvents,
		Read:     ReadPublic,
		init:     initEvent,
		validate: validateEvent,
	},
	ResourcePYQs:       {Type: ResourcePYQs, Read: ReadPublic},
	ResourceHackathons: {Type: ResourceHackathons, Read: ReadPublic},
	ResourceInterviews: {Type: ResourceInterviews, Read: ReadPublic},
	ResourceCertifications: {
		Type: ResourceCertifications,
		Read: ReadPublic,
		init: func(r *Resource) {
			if r.Certification == nil {
				r.Certification = &CertificationDetails{}
			}
			if r.Certification.IssuedTo == nil {
				r.Certification.IssuedTo = []string{}
			}
		},
	},
	ResourceQuizzes: {
		Type:     ResourceQuizzes,
		Read:     ReadOwned,
		validate: validateListAttribute("questions"),
	},
	ResourceFlashcardSets: {
		Type:     ResourceFlashcardSets,
		Read:     ReadOwned,
		validate: validateListAttribute("cards"),
	},
}

// ParseResourceType maps a query value onto the closed type enum
func ParseResourceType(s string) (ResourceType, error) {
	t := ResourceType(s)
	if _, ok := schemas[t]; !ok {
		return "", apperrors.NewCustomError(apperrors.ErrInvalidType, fmt.Sprintf("invalid resource type %q", s))
	}
	return t, nil
}

// SchemaFor returns the schema of t
func SchemaFor(t ResourceType) (Schema, bool) {
	s, ok := schemas[t]
	return s, ok
}

// ResourceTypes lists every valid type in a stable order
func ResourceTypes() []ResourceType {
	out := make([]ResourceType, 0, len(schemas))
	for t := range schemas {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NewResource returns an empty record of type t with its typed sections allocated
func (s Schema) NewResource() *Resource {
	r := &Resource{Type: s.Type, Attributes: map[string]interface{}{}}
	if s.Type == ResourceEvents {
		r.Event = &EventDetails{}
	}
	if s.Type == ResourceCertifications {
		r.Certification = &CertificationDetails{}
	}
	return r
}

// Init sets the empty collections every new record of this type starts with
func (s Schema) Init(r *Resource) {
	r.BookmarkedBy = []string{}
	if r.AssignedTo == nil {
		r.AssignedTo = []string{}
	}
	if s.init != nil {
		s.init(r)
	}
}

// Validate checks the common envelope and the type-specific rules
func (s Schema) Validate(r *Resource) error {
	fields := map[string]interface{}{}
	if strings.TrimSpace(r.Title) == "" {
		fields["title"] = "title is required"
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("resource validation failed", fields)
	}
	if s.validate != nil {
		return s.validate(r)
	}
	return nil
}

func initEvent(r *Resource) {
	if r.Event == nil {
		r.Event = &EventDetails{}
	}
	r.Event.RegisteredUsers = []string{}
	r.Event.Registrations = []Registration{}
	if r.Event.RegistrationFields == nil {
		r.Event.RegistrationFields = []RegistrationField{}
	}
}

func validateEvent(r *Resource) error {
	fields := map[string]interface{}{}
	if r.Event == nil {
		return apperrors.NewValidationError("event details missing", nil)
	}
	if r.Event.Capacity < 0 {
		fields["capacity"] = "capacity must not be negative"
	}
	seen := map[string]bool{}
	for i, f := range r.Event.RegistrationFields {
		key := fmt.Sprintf("registrationFields[%d]", i)
		switch {
		case strings.TrimSpace(f.Label) == "":
			fields[key] = "label is required"
		case seen[f.Label]:
			fields[key] = "duplicate label " + f.Label
		case !f.Kind.Valid():
			fields[key] = fmt.Sprintf("unknown field type %q", f.Kind)
		case f.Kind == FieldSelect && len(f.Options) == 0:
			fields[key] = "select fields need options"
		}
		seen[f.Label] = true
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("event validation failed", fields)
	}
	return nil
}

func validateListAttribute(key string) func(*Resource) error {
	return func(r *Resource) error {
		v, ok := r.Attributes[key]
		if !ok || v == nil {
			return nil
		}
		if _, isList := v.([]interface{}); !isList {
			return apperrors.NewValidationError("resource validation failed", map[string]interface{}{key: key + " must be a list"})
		}
		return nil
	}
}
