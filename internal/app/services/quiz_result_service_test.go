package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yigit/deptportal/internal/app/models/dto"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
)

func score(v float64) *float64 { return &v }

func TestQuizResultUpsertKeepsLatest(t *testing.T) {
	repos := newTestRepos()
	quiz := mustCreate(t, NewResourceService(repos.Resources, nopLogger()), "quizzes", `{"title":"Recursion"}`)
	svc := NewQuizResultService(repos.QuizResults, repos.Resources, nopLogger())
	impl := svc.(*quizResultServiceImpl)
	ctx := context.Background()

	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	impl.now = func() time.Time { return clock }
	first, err := svc.Submit(ctx, testStudent, &dto.SubmitQuizResultRequest{QuizID: quiz.ID, Score: score(4), Answers: json.RawMessage(`[1,2]`)})
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	second, err := svc.Submit(ctx, testStudent, &dto.SubmitQuizResultRequest{QuizID: quiz.ID, Score: score(9)})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	mine, err := svc.ListMine(ctx, testStudent)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, 9.0, mine[0].Score)
	require.Equal(t, clock, mine[0].Timestamp)

	others, err := svc.ListMine(ctx, otherStudent)
	require.NoError(t, err)
	require.Empty(t, others)
}

func TestQuizResultValidation(t *testing.T) {
	repos := newTestRepos()
	svc := NewQuizResultService(repos.QuizResults, repos.Resources, nopLogger())
	ctx := context.Background()

	_, err := svc.Submit(ctx, nil, &dto.SubmitQuizResultRequest{QuizID: "q", Score: score(1)})
	require.True(t, errors.Is(err, apperrors.ErrUnauthenticated))

	_, err = svc.Submit(ctx, testStudent, &dto.SubmitQuizResultRequest{QuizID: "missing", Score: score(1)})
	require.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}
