package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/deptportal/internal/app/models"
	appRepos "github.com/yigit/deptportal/internal/app/repositories"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
	"github.com/yigit/deptportal/internal/pkg/auth"
)

// AdminAccount describes the account created by EnsureAdmin
type AdminAccount struct {
	Name     string
	Email    string
	Password string
}

// EnsureAdmin creates the admin account unless a user with that email already exists.
// It reports whether a new account was created.
func EnsureAdmin(ctx context.Context, users appRepos.IUserRepository, account AdminAccount, lgr zerolog.Logger) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	if email == "" || account.Password == "" {
		lgr.Debug().Msg("No default admin configured, skipping")
		return false, nil
	}

	if _, err := users.GetByEmail(ctx, email); err == nil {
		lgr.Debug().Str("email", email).Msg("Admin account already exists")
		return false, nil
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return false, fmt.Errorf("looking up admin account: %w", err)
	}

	if err := auth.ValidatePassword(account.Password); err != nil {
		return false, fmt.Errorf("admin password: %w", err)
	}
	hash, err := auth.HashPassword(account.Password)
	if err != nil {
		return false, fmt.Errorf("hashing admin password: %w", err)
	}

	name := account.Name
	if name == "" {
		name = "Administrator"
	}
	now := time.Now().UTC()
	admin := &appModels.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         appModels.RoleAdmin,
		IsActive:     true,
		Preferences:  map[string]interface{}{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return false, nil
		}
		return false, fmt.Errorf("creating admin account: %w", err)
	}

	lgr.Info().Str("email", email).Str("userID", admin.ID).Msg("Default admin account created")
	return true, nil
}
