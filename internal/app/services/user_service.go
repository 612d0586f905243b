package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/app/models/dto"
	"github.com/yigit/deptportal/internal/app/repositories"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
	"github.com/yigit/deptportal/internal/pkg/auth"
	"github.com/yigit/deptportal/internal/pkg/sanitize"
)

// UserService defines the interface for user operations
type UserService interface {
	ListUsers(ctx context.Context, caller *models.Caller) ([]*models.User, error)
	GetUser(ctx context.Context, caller *models.Caller, id string) (*models.User, error)
	CreateUser(ctx context.Context, caller *models.Caller, req *dto.CreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, caller *models.Caller, req *dto.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, caller *models.Caller, id string) error
	UpdateProfile(ctx context.Context, caller *models.Caller, req *dto.UpdateProfileRequest) (*models.User, error)
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	userRepo repositories.IUserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.IUserRepository, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		logger:   logger,
	}
}

func requireAdmin(caller *models.Caller) error {
	if caller == nil {
		return apperrors.ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		return apperrors.NewForbiddenError("admin role required")
	}
	return nil
}

func (s *userServiceImpl) ListUsers(ctx context.Context, caller *models.Caller) ([]*models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, caller *models.Caller, id string) (*models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

func (s *userServiceImpl) CreateUser(ctx context.Context, caller *models.Caller, req *dto.CreateUserRequest) (*models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]interface{}{"password": err.Error()})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         sanitize.Text(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
		Preferences:  map[string]interface{}{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("userID", user.ID).Str("role", string(user.Role)).Str("by", caller.ID).Msg("User created")
	return user, nil
}

func (s *userServiceImpl) UpdateUser(ctx context.Context, caller *models.Caller, req *dto.UpdateUserRequest) (*models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = sanitize.Text(*req.Name)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Role != nil {
		if req.ID == caller.ID && *req.Role != models.RoleAdmin {
			return nil, apperrors.NewBadRequestError("admins cannot demote themselves")
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		if err := auth.ValidatePassword(*req.Password); err != nil {
			return nil, apperrors.NewValidationError(err.Error(), map[string]interface{}{"password": err.Error()})
		}
		if user.PasswordHash, err = auth.HashPassword(*req.Password); err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, caller *models.Caller, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if id == caller.ID {
		return apperrors.NewBadRequestError("admins cannot delete their own account")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("userID", id).Str("by", caller.ID).Msg("User deleted")
	return nil
}

// UpdateProfile lets any signed-in user change their name, preferences and password
func (s *userServiceImpl) UpdateProfile(ctx context.Context, caller *models.Caller, req *dto.UpdateProfileRequest) (*models.User, error) {
	if caller == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	user, err := s.userRepo.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := sanitize.Text(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name is required", map[string]interface{}{"name": "name is required"})
		}
		user.Name = name
	}
	if req.Preferences != nil {
		user.Preferences = req.Preferences
	}
	if req.NewPassword != nil {
		if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
			return nil, apperrors.ErrInvalidCredentials
		}
		if err := auth.ValidatePassword(*req.NewPassword); err != nil {
			return nil, apperrors.NewValidationError(err.Error(), map[string]interface{}{"newPassword": err.Error()})
		}
		if user.PasswordHash, err = auth.HashPassword(*req.NewPassword); err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
