package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/deptportal/internal/app/auth"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/app/repositories"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
	"github.com/yigit/deptportal/internal/pkg/sanitize"
)

// ResourceService is the generic CRUD dispatcher over every resource type
type ResourceService interface {
	List(ctx context.Context, caller *models.Caller, typ string) ([]*models.Resource, error)
	Get(ctx context.Context, caller *models.Caller, typ, id string) (*models.Resource, error)
	Create(ctx context.Context, caller *models.Caller, typ string, body map[string]json.RawMessage) (*models.Resource, error)
	Update(ctx context.Context, caller *models.Caller, typ, id string, patch map[string]json.RawMessage) (*models.Resource, error)
	Delete(ctx context.Context, caller *models.Caller, typ, id string) error
	ToggleBookmark(ctx context.Context, caller *models.Caller, typ, id string) (bool, error)
}

type resourceServiceImpl struct {
	repo   repositories.IResourceRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewResourceService creates a new ResourceService
func NewResourceService(repo repositories.IResourceRepository, logger zerolog.Logger) ResourceService {
	return &resourceServiceImpl{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *resourceServiceImpl) gate(caller *models.Caller, typ string, verb auth.Verb) (models.ResourceType, error) {
	t, err := models.ParseResourceType(typ)
	if err != nil {
		return "", err
	}
	if err := auth.Authorize(caller, t, verb); err != nil {
		return "", err
	}
	return t, nil
}

func (s *resourceServiceImpl) List(ctx context.Context, caller *models.Caller, typ string) ([]*models.Resource, error) {
	t, err := s.gate(caller, typ, auth.VerbRead)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, t, auth.ReadScope(caller, t))
}

func (s *resourceServiceImpl) Get(ctx context.Context, caller *models.Caller, typ, id string) (*models.Resource, error) {
	t, err := s.gate(caller, typ, auth.VerbRead)
	if err != nil {
		return nil, err
	}
	res, err := s.repo.GetByID(ctx, t, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanRead(caller, res) {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("%s %s not found", t, id))
	}
	return res, nil
}

func (s *resourceServiceImpl) Create(ctx context.Context, caller *models.Caller, typ string, body map[string]json.RawMessage) (*models.Resource, error) {
	t, err := s.gate(caller, typ, auth.VerbCreate)
	if err != nil {
		return nil, err
	}

	schema, _ := models.SchemaFor(t)
	res := schema.NewResource()
	if err := res.ApplyPatch(body); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	schema.Init(res)
	cleanText(res)
	if err := schema.Validate(res); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	creator := caller.ID
	res.ID = uuid.NewString()
	res.CreatedBy = &creator
	res.CreatedAt = now
	res.UpdatedAt = now

	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}

	s.logger.Info().Str("type", string(t)).Str("id", res.ID).Str("userID", caller.ID).Msg("Resource created")
	return s.repo.GetByID(ctx, t, res.ID)
}

// Update replaces only the fields present in patch. Capacity is not re-checked against existing seats.
func (s *resourceServiceImpl) Update(ctx context.Context, caller *models.Caller, typ, id string, patch map[string]json.RawMessage) (*models.Resource, error) {
	t, err := s.gate(caller, typ, auth.VerbUpdate)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, apperrors.NewValidationError("id is required", map[string]interface{}{"id": "id is required"})
	}

	res, err := s.repo.GetByID(ctx, t, id)
	if err != nil {
		return nil, err
	}

	schema, _ := models.SchemaFor(t)
	if err := res.ApplyPatch(patch); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	cleanText(res)
	if err := schema.Validate(res); err != nil {
		return nil, err
	}
	res.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, t, id)
}

func (s *resourceServiceImpl) Delete(ctx context.Context, caller *models.Caller, typ, id string) error {
	t, err := s.gate(caller, typ, auth.VerbDelete)
	if err != nil {
		return err
	}
	if id == "" {
		return apperrors.NewValidationError("id is required", map[string]interface{}{"id": "id is required"})
	}
	if err := s.repo.Delete(ctx, t, id); err != nil {
		return err
	}
	s.logger.Info().Str("type", string(t)).Str("id", id).Str("userID", caller.ID).Msg("Resource deleted")
	return nil
}

func (s *resourceServiceImpl) ToggleBookmark(ctx context.Context, caller *models.Caller, typ, id string) (bool, error) {
	if caller == nil {
		return false, apperrors.ErrUnauthenticated
	}
	if _, err := s.Get(ctx, caller, typ, id); err != nil {
		return false, err
	}
	return s.repo.ToggleBookmark(ctx, models.ResourceType(typ), id, caller.ID)
}

func cleanText(r *models.Resource) {
	r.Title = sanitize.Text(r.Title)
	r.Description = sanitize.Text(r.Description)
	if r.Event != nil {
		r.Event.Location = sanitize.Text(r.Event.Location)
	}
}
