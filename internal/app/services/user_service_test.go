package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/app/models/dto"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
	"github.com/yigit/deptportal/internal/pkg/auth"
)

func TestUserAdminOnly(t *testing.T) {
	svc := NewUserService(newTestRepos().Users, nopLogger())
	ctx := context.Background()

	_, err := svc.ListUsers(ctx, nil)
	require.True(t, errors.Is(err, apperrors.ErrUnauthenticated))

	_, err = svc.ListUsers(ctx, testStudent)
	require.True(t, errors.Is(err, apperrors.ErrPermissionDenied))

	_, err = svc.CreateUser(ctx, testStudent, &dto.CreateUserRequest{Name: "X", Email: "x@uni.edu", Password: "secret123", Role: models.RoleAdmin})
	require.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
}

func TestUserLifecycle(t *testing.T) {
	svc := NewUserService(newTestRepos().Users, nopLogger())
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, testAdmin, &dto.CreateUserRequest{Name: "Grace", Email: "Grace@Uni.edu", Password: "cobol1959", Role: models.RoleStudent})
	require.NoError(t, err)
	require.Equal(t, "grace@uni.edu", u.Email)

	role := models.RoleAdmin
	updated, err := svc.UpdateUser(ctx, testAdmin, &dto.UpdateUserRequest{ID: u.ID, Role: &role})
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, updated.Role)

	list, err := svc.ListUsers(ctx, testAdmin)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.DeleteUser(ctx, testAdmin, u.ID))
	_, err = svc.GetUser(ctx, testAdmin, u.ID)
	require.True(t, errors.Is(err, apperrors.ErrUserNotFound))
}

func TestAdminCannotRemoveThemselves(t *testing.T) {
	svc := NewUserService(newTestRepos().Users, nopLogger())
	ctx := context.Background()

	me, err := svc.CreateUser(ctx, testAdmin, &dto.CreateUserRequest{Name: "Root", Email: "root@uni.edu", Password: "rootpass1", Role: models.RoleAdmin})
	require.NoError(t, err)
	self := me.AsCaller()

	role := models.RoleStudent
	_, err = svc.UpdateUser(ctx, self, &dto.UpdateUserRequest{ID: me.ID, Role: &role})
	require.True(t, errors.Is(err, apperrors.ErrBadRequest))

	err = svc.DeleteUser(ctx, self, me.ID)
	require.True(t, errors.Is(err, apperrors.ErrBadRequest))
}

func TestUpdateProfilePassword(t *testing.T) {
	repos := newTestRepos()
	svc := NewUserService(repos.Users, nopLogger())
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, testAdmin, &dto.CreateUserRequest{Name: "Linus", Email: "linus@uni.edu", Password: "kernel1991", Role: models.RoleStudent})
	require.NoError(t, err)
	caller := u.AsCaller()

	next := "git2005rocks"
	_, err = svc.UpdateProfile(ctx, caller, &dto.UpdateProfileRequest{CurrentPassword: "wrong", NewPassword: &next})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	name := "Linus T."
	updated, err := svc.UpdateProfile(ctx, caller, &dto.UpdateProfileRequest{
		Name:            &name,
		CurrentPassword: "kernel1991",
		NewPassword:     &next,
		Preferences:     map[string]interface{}{"theme": "dark"},
	})
	require.NoError(t, err)
	require.Equal(t, "Linus T.", updated.Name)
	require.Equal(t, "dark", updated.Preferences["theme"])

	stored, err := repos.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, auth.CheckPassword(stored.PasswordHash, next))
}
