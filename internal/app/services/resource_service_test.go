package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
)

func TestResourceCreateRequiresAdmin(t *testing.T) {
	svc := NewResourceService(newTestRepos().Resources, nopLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, testStudent, "pyqs", body(t, `{"title":"2023 Algorithms"}`))
	require.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = svc.Create(ctx, nil, "pyqs", body(t, `{"title":"2023 Algorithms"}`))
	require.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = svc.Create(ctx, testAdmin, "blogs", body(t, `{"title":"x"}`))
	require.True(t, errors.Is(err, apperrors.ErrInvalidType))
}

func TestResourceCreateInitialisesCollections(t *testing.T) {
	svc := NewResourceService(newTestRepos().Resources, nopLogger())

	ev := mustCreate(t, svc, "events", `{"title":"<b>Orientation</b>","capacity":50,"registeredUsers":["intruder"]}`)
	require.NotEmpty(t, ev.ID)
	require.Equal(t, "Orientation", ev.Title)
	require.Equal(t, testAdmin.ID, *ev.CreatedBy)
	require.Empty(t, ev.Event.RegisteredUsers)
	require.NotNil(t, ev.BookmarkedBy)

	cert := mustCreate(t, svc, "certifications", `{"title":"Cloud Practitioner"}`)
	require.NotNil(t, cert.Certification)
	require.Empty(t, cert.Certification.IssuedTo)
}

func TestResourceUpdateIsPartial(t *testing.T) {
	svc := NewResourceService(newTestRepos().Resources, nopLogger())
	ctx := context.Background()
	ev := mustCreate(t, svc, "events", `{"title":"Talk","description":"Intro","location":"Hall A","capacity":2}`)

	updated, err := svc.Update(ctx, testAdmin, "events", ev.ID, body(t, `{"title":"Talk v2","capacity":1}`))
	require.NoError(t, err)
	require.Equal(t, "Talk v2", updated.Title)
	require.Equal(t, "Intro", updated.Description)
	require.Equal(t, "Hall A", updated.Event.Location)
	require.Equal(t, 1, updated.Event.Capacity)

	_, err = svc.Update(ctx, testStudent, "events", ev.ID, body(t, `{"title":"hijack"}`))
	require.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = svc.Update(ctx, testAdmin, "events", "missing", body(t, `{"title":"x"}`))
	require.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}

func TestResourceDelete(t *testing.T) {
	svc := NewResourceService(newTestRepos().Resources, nopLogger())
	ctx := context.Background()
	p := mustCreate(t, svc, "pyqs", `{"title":"Networks 2022"}`)

	require.True(t, errors.Is(svc.Delete(ctx, testAdmin, "pyqs", "nope"), apperrors.ErrResourceNotFound))
	require.True(t, errors.Is(svc.Delete(ctx, testStudent, "pyqs", p.ID), apperrors.ErrPermissionDenied))
	require.NoError(t, svc.Delete(ctx, testAdmin, "pyqs", p.ID))

	_, err := svc.Get(ctx, nil, "pyqs", p.ID)
	require.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}

func TestResourceListOwnedTypes(t *testing.T) {
	svc := NewResourceService(newTestRepos().Resources, nopLogger())
	ctx := context.Background()

	hidden := mustCreate(t, svc, "quizzes", `{"title":"Draft quiz"}`)
	active := mustCreate(t, svc, "quizzes", `{"title":"Live quiz","isActive":true}`)
	assigned := mustCreate(t, svc, "quizzes", `{"title":"Assigned quiz","assignedTo":["student-1"]}`)

	_, err := svc.List(ctx, nil, "quizzes")
	require.True(t, errors.Is(err, apperrors.ErrUnauthenticated))

	list, err := svc.List(ctx, testStudent, "quizzes")
	require.NoError(t, err)
	ids := map[string]bool{}
	for _, r := range list {
		ids[r.ID] = true
	}
	require.True(t, ids[active.ID])
	require.True(t, ids[assigned.ID])
	require.False(t, ids[hidden.ID])

	all, err := svc.List(ctx, testAdmin, "quizzes")
	require.NoError(t, err)
	require.Len(t, all, 3)

	_, err = svc.Get(ctx, otherStudent, "quizzes", hidden.ID)
	require.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}

func TestResourcePublicRead(t *testing.T) {
	svc := NewResourceService(newTestRepos().Resources, nopLogger())
	mustCreate(t, svc, "hackathons", `{"title":"HackUni"}`)

	list, err := svc.List(context.Background(), nil, "hackathons")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, models.ResourceHackathons, list[0].Type)
}

func TestResourceToggleBookmark(t *testing.T) {
	svc := NewResourceService(newTestRepos().Resources, nopLogger())
	ctx := context.Background()
	r := mustCreate(t, svc, "interviews", `{"title":"Mock interview"}`)

	on, err := svc.ToggleBookmark(ctx, testStudent, "interviews", r.ID)
	require.NoError(t, err)
	require.True(t, on)

	off, err := svc.ToggleBookmark(ctx, testStudent, "interviews", r.ID)
	require.NoError(t, err)
	require.False(t, off)

	_, err = svc.ToggleBookmark(ctx, nil, "interviews", r.ID)
	require.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
}
