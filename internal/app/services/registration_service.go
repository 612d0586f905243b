package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/deptportal/internal/app/auth"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/app/repositories"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
	"github.com/yigit/deptportal/internal/pkg/metrics"
	"github.com/yigit/deptportal/internal/pkg/sanitize"
)

// RegistrationPolicy selects how strictly registrations are checked
type RegistrationPolicy struct {
	// EnforceCapacity rejects new registrants once an event is full
	EnforceCapacity bool
	// ValidateFields checks the submitted form against the event's registration fields
	ValidateFields bool
}

// RegistrationService adds users to events
type RegistrationService interface {
	Register(ctx context.Context, caller *models.Caller, eventID, userID string, data map[string]string) (*models.RegistrationOutcome, error)
	Registrations(ctx context.Context, caller *models.Caller, eventID string) ([]models.Registration, error)
}

type registrationServiceImpl struct {
	resources     repositories.IResourceRepository
	registrations repositories.IRegistrationRepository
	policy        RegistrationPolicy
	logger        zerolog.Logger
	now           func() time.Time
}

// NewRegistrationService creates a new RegistrationService
func NewRegistrationService(
	resources repositories.IResourceRepository,
	registrations repositories.IRegistrationRepository,
	policy RegistrationPolicy,
	logger zerolog.Logger,
) RegistrationService {
	return &registrationServiceImpl{
		resources:     resources,
		registrations: registrations,
		policy:        policy,
		logger:        logger,
		now:           time.Now,
	}
}

// Register takes a seat for userID at the event. An empty userID means the caller.
// Registering again appends a detail entry without taking a second seat.
func (s *registrationServiceImpl) Register(ctx context.Context, caller *models.Caller, eventID, userID string, data map[string]string) (*models.RegistrationOutcome, error) {
	if err := auth.Authorize(caller, models.ResourceEvents, auth.VerbRegister); err != nil {
		return nil, err
	}
	if eventID == "" {
		return nil, apperrors.NewValidationError("id is required", map[string]interface{}{"id": "id is required"})
	}

	if userID == "" {
		userID = caller.ID
	}
	if userID != caller.ID && !caller.IsAdmin() {
		return nil, apperrors.NewForbiddenError("users may only register themselves")
	}

	event, err := s.resources.GetByID(ctx, models.ResourceEvents, eventID)
	if err != nil {
		return nil, err
	}

	if s.policy.ValidateFields && event.Event != nil {
		if problems := models.ValidateRegistrationData(event.Event.RegistrationFields, data); problems != nil {
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
			return nil, apperrors.NewValidationError("registration data is invalid", problems)
		}
	}
	data = sanitize.TextMap(data)

	reg := models.Registration{UserID: userID, Data: data, CreatedAt: s.now().UTC()}
	out, err := s.registrations.Register(ctx, eventID, reg, s.policy.EnforceCapacity)
	if err != nil {
		if errors.Is(err, apperrors.ErrCapacityExceeded) {
			metrics.RegistrationsTotal.WithLabelValues("full").Inc()
			s.logger.Info().Str("eventID", eventID).Str("userID", userID).Msg("Registration rejected, event is full")
		}
		return nil, err
	}

	switch {
	case out.AlreadyRegistered:
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
	case out.Overbooked:
		metrics.RegistrationsTotal.WithLabelValues("overbooked").Inc()
		s.logger.Warn().Str("eventID", eventID).Int("capacity", out.Capacity).Int("registered", out.RegisteredCount).Msg("Event overbooked")
	default:
		metrics.RegistrationsTotal.WithLabelValues("registered").Inc()
	}

	s.logger.Info().Str("eventID", eventID).Str("userID", userID).Bool("alreadyRegistered", out.AlreadyRegistered).Msg("Event registration recorded")
	return out, nil
}

// Registrations returns the detail log of an event; admins only
func (s *registrationServiceImpl) Registrations(ctx context.Context, caller *models.Caller, eventID string) ([]models.Registration, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.registrations.ListRegistrations(ctx, eventID)
}
