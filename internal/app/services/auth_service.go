package services

import (
	"context"
	"errors"
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
	"github.com/yigit/deptportal/internal/pkg/session"
)

// AuthService handles login, signup and logout
type AuthService struct {
	userRepo   repositories.IUserRepository
	jwtService *auth.JWTService
	revoker    session.Revoker
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	jwtService *auth.JWTService,
	revoker session.Revoker,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		revoker:    revoker,
		logger:     logger,
		now:        time.Now,
	}
}

// Session is an authenticated user with a freshly signed token
type Session struct {
	User  *models.User
	Token *auth.SessionToken
}

// Login checks the credentials against the portal the user signs in to.
// A wrong password, an unknown email and a role that does not match the portal all give the same error.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) || user.Role != req.Type {
		s.logger.Info().Str("email", email).Str("portal", string(req.Type)).Msg("Rejected login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		s.logger.Warn().Err(err).Str("userID", user.ID).Msg("Could not record last login")
	}

	return s.newSession(user)
}

// Signup creates a student account and signs it in
func (s *AuthService) Signup(ctx context.Context, req *dto.SignupRequest) (*Session, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]interface{}{"password": err.Error()})
	}

	name := sanitize.Text(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]interface{}{"name": "name is required"})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         models.RoleStudent,
		IsActive:     true,
		Preferences:  map[string]interface{}{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("userID", user.ID).Msg("Student account created")
	return s.newSession(user)
}

// Logout revokes the token id until the token would have expired anyway
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	expiresAt := s.now().Add(s.jwtService.SessionTTL())
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.revoker.Revoke(ctx, claims.ID, expiresAt); err != nil {
		return fmt.Errorf("error revoking session: %w", err)
	}
	return nil
}

func (s *AuthService) newSession(user *models.User) (*Session, error) {
	token, err := s.jwtService.GenerateSessionToken(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}
