// Package auth holds the authorization gate every resource operation passes through.
package auth

import (
	"fmt"

	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/app/repositories"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
)

// Verb is an operation attempted on a resource type
type Verb string

const (
	VerbRead     Verb = "read"
	VerbCreate   Verb = "create"
	VerbUpdate   Verb = "update"
	VerbDelete   Verb = "delete"
	VerbRegister Verb = "register"
)

// Authorize decides whether caller may perform verb on records of type t.
// A nil caller is anonymous.
func Authorize(caller *models.Caller, t models.ResourceType, verb Verb) error {
	schema, ok := models.SchemaFor(t)
	if !ok {
		return apperrors.NewCustomError(apperrors.ErrInvalidType, fmt.Sprintf("invalid resource type %q", t))
	}

	switch verb {
	case VerbCreate, VerbUpdate, VerbDelete:
		if !caller.IsAdmin() {
			return apperrors.NewForbiddenError(fmt.Sprintf("only admins may %s %s", verb, t))
		}
		return nil

	case VerbRegister:
		if caller == nil {
			return apperrors.ErrUnauthenticated
		}
		if t != models.ResourceEvents {
			return apperrors.NewBadRequestError("only events accept registrations")
		}
		return nil

	case VerbRead:
		if schema.Read != models.ReadPublic && caller == nil {
			return apperrors.ErrUnauthenticated
		}
		return nil
	}

	return apperrors.NewForbiddenError(fmt.Sprintf("unknown operation %q", verb))
}

// ReadScope returns the listing filter for caller on type t. Callers must pass Authorize first.
func ReadScope(caller *models.Caller, t models.ResourceType) repositories.ResourceFilter {
	schema, _ := models.SchemaFor(t)
	if schema.Read == models.ReadOwned && !caller.IsAdmin() {
		return repositories.ResourceFilter{VisibleTo: caller}
	}
	return repositories.ResourceFilter{}
}

// CanRead reports whether a single fetched record is visible to caller
func CanRead(caller *models.Caller, r *models.Resource) bool {
	schema, _ := models.SchemaFor(r.Type)
	if schema.Read != models.ReadOwned {
		return true
	}
	return r.VisibleTo(caller)
}
