package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/app/repositories"
	"github.com/yigit/deptportal/internal/app/repositories/memory"
)

var (
	testAdmin    = &models.Caller{ID: "admin-1", Name: "Admin", Role: models.RoleAdmin}
	testStudent  = &models.Caller{ID: "student-1", Name: "Stu", Role: models.RoleStudent}
	otherStudent = &models.Caller{ID: "student-2", Name: "Other", Role: models.RoleStudent}
)

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestRepos() *repositories.Repositories {
	return memory.NewRepositories()
}

func body(t *testing.T, s string) map[string]json.RawMessage {
	t.Helper()
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(s), &out))
	return out
}

func mustCreate(t *testing.T, svc ResourceService, typ, payload string) *models.Resource {
	t.Helper()
	res, err := svc.Create(context.Background(), testAdmin, typ, body(t, payload))
	require.NoError(t, err)
	return res
}
