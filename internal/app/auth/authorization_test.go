package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
)

var (
	admin   = &models.Caller{ID: "a1", Role: models.RoleAdmin}
	student = &models.Caller{ID: "s1", Role: models.RoleStudent}
)

func TestAuthorizeWrites(t *testing.T) {
	for _, typ := range models.ResourceTypes() {
		for _, verb := range []Verb{VerbCreate, VerbUpdate, VerbDelete} {
			require.NoError(t, Authorize(admin, typ, verb), "%s %s", verb, typ)
			require.True(t, errors.Is(Authorize(student, typ, verb), apperrors.ErrPermissionDenied), "%s %s", verb, typ)
			require.True(t, errors.Is(Authorize(nil, typ, verb), apperrors.ErrPermissionDenied), "%s %s", verb, typ)
		}
	}
}

func TestAuthorizeRead(t *testing.T) {
	tests := []struct {
		name    string
		caller  *models.Caller
		typ     models.ResourceType
		wantErr error
	}{
		{"anonymous events", nil, models.ResourceEvents, nil},
		{"anonymous pyqs", nil, models.ResourcePYQs, nil},
		{"anonymous certifications", nil, models.ResourceCertifications, nil},
		{"anonymous hackathons", nil, models.ResourceHackathons, nil},
		{"anonymous interviews", nil, models.ResourceInterviews, nil},
		{"anonymous quizzes", nil, models.ResourceQuizzes, apperrors.ErrUnauthenticated},
		{"anonymous flashcards", nil, models.ResourceFlashcardSets, apperrors.ErrUnauthenticated},
		{"student quizzes", student, models.ResourceQuizzes, nil},
		{"admin flashcards", admin, models.ResourceFlashcardSets, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.caller, tt.typ, VerbRead)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

func TestAuthorizeRegister(t *testing.T) {
	require.True(t, errors.Is(Authorize(nil, models.ResourceEvents, VerbRegister), apperrors.ErrUnauthenticated))
	require.NoError(t, Authorize(student, models.ResourceEvents, VerbRegister))
	require.True(t, errors.Is(Authorize(student, models.ResourcePYQs, VerbRegister), apperrors.ErrBadRequest))
}

func TestAuthorizeUnknownType(t *testing.T) {
	require.True(t, errors.Is(Authorize(admin, "blogs", VerbRead), apperrors.ErrInvalidType))
}

func TestReadScope(t *testing.T) {
	require.Nil(t, ReadScope(admin, models.ResourceQuizzes).VisibleTo)
	require.Nil(t, ReadScope(student, models.ResourceEvents).VisibleTo)
	require.Equal(t, student, ReadScope(student, models.ResourceQuizzes).VisibleTo)
}

func TestCanRead(t *testing.T) {
	quiz := &models.Resource{Type: models.ResourceQuizzes}
	require.False(t, CanRead(student, quiz))
	require.True(t, CanRead(admin, quiz))
	require.True(t, CanRead(nil, &models.Resource{Type: models.ResourcePYQs}))
}
