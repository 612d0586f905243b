package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/app/models/dto"
	"github.com/yigit/deptportal/internal/app/repositories"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
)

// QuizResultService stores the latest attempt of each user at each quiz
type QuizResultService interface {
	Submit(ctx context.Context, caller *models.Caller, req *dto.SubmitQuizResultRequest) (*models.QuizResult, error)
	ListMine(ctx context.Context, caller *models.Caller) ([]*models.QuizResult, error)
}

type quizResultServiceImpl struct {
	results   repositories.IQuizResultRepository
	resources repositories.IResourceRepository
	logger    zerolog.Logger
	now       func() time.Time
}

// NewQuizResultService creates a new QuizResultService
func NewQuizResultService(results repositories.IQuizResultRepository, resources repositories.IResourceRepository, logger zerolog.Logger) QuizResultService {
	return &quizResultServiceImpl{
		results:   results,
		resources: resources,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit replaces any earlier result of the caller for the same quiz
func (s *quizResultServiceImpl) Submit(ctx context.Context, caller *models.Caller, req *dto.SubmitQuizResultRequest) (*models.QuizResult, error) {
	if caller == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if req.Score == nil {
		return nil, apperrors.NewValidationError("score is required", map[string]interface{}{"score": "score is required"})
	}
	if _, err := s.resources.GetByID(ctx, models.ResourceQuizzes, req.QuizID); err != nil {
		return nil, err
	}

	answers := req.Answers
	if len(answers) > 0 && !json.Valid(answers) {
		return nil, apperrors.NewValidationError("answers must be valid JSON", map[string]interface{}{"answers": "invalid JSON"})
	}

	result := &models.QuizResult{
		ID:        uuid.NewString(),
		UserID:    caller.ID,
		QuizID:    req.QuizID,
		Score:     *req.Score,
		Answers:   answers,
		Timestamp: s.now().UTC(),
	}
	if err := s.results.Upsert(ctx, result); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("userID", caller.ID).Str("quizID", req.QuizID).Float64("score", result.Score).Msg("Quiz result stored")
	return result, nil
}

func (s *quizResultServiceImpl) ListMine(ctx context.Context, caller *models.Caller) ([]*models.QuizResult, error) {
	if caller == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return s.results.ListByUser(ctx, caller.ID)
}
