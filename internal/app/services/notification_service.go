package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/app/models/dto"
	"github.com/yigit/deptportal/internal/app/repositories"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
	"github.com/yigit/deptportal/internal/pkg/metrics"
	"github.com/yigit/deptportal/internal/pkg/sanitize"
)

// Publisher pushes a stored notification to connected clients. Delivery is best effort.
type Publisher interface {
	Publish(n *models.Notification)
}

// NotificationService relays notifications between students and admins
type NotificationService interface {
	List(ctx context.Context, caller *models.Caller) ([]*models.Notification, error)
	Create(ctx context.Context, caller *models.Caller, req *dto.CreateNotificationRequest) (*models.Notification, error)
	Update(ctx context.Context, caller *models.Caller, req *dto.UpdateNotificationRequest) (*models.Notification, error)
	Delete(ctx context.Context, caller *models.Caller, id string) error
}

type notificationServiceImpl struct {
	notifications repositories.INotificationRepository
	resources     repositories.IResourceRepository
	publisher     Publisher
	logger        zerolog.Logger
	now           func() time.Time
	newBackOff    func(ctx context.Context) backoff.BackOff
}

// NewNotificationService creates a new NotificationService. publisher may be nil.
func NewNotificationService(
	notifications repositories.INotificationRepository,
	resources repositories.IResourceRepository,
	publisher Publisher,
	logger zerolog.Logger,
) NotificationService {
	return &notificationServiceImpl{
		notifications: notifications,
		resources:     resources,
		publisher:     publisher,
		logger:        logger,
		now:           time.Now,
		newBackOff:    defaultCascadeBackOff,
	}
}

func defaultCascadeBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 5 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(b, 4), ctx)
}

func (s *notificationServiceImpl) List(ctx context.Context, caller *models.Caller) ([]*models.Notification, error) {
	if caller == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return s.notifications.ListFor(ctx, caller)
}

func (s *notificationServiceImpl) Create(ctx context.Context, caller *models.Caller, req *dto.CreateNotificationRequest) (*models.Notification, error) {
	if caller == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	hasUser := req.UserID != nil && *req.UserID != ""
	hasRole := req.TargetRole != nil && *req.TargetRole != ""
	if hasUser == hasRole {
		return nil, apperrors.NewValidationError("exactly one of userId and targetRole is required",
			map[string]interface{}{"userId": "set either userId or targetRole", "targetRole": "set either userId or targetRole"})
	}

	n := &models.Notification{
		ID:        uuid.NewString(),
		Type:      sanitize.Text(req.Type),
		Title:     sanitize.Text(req.Title),
		Message:   sanitize.Text(req.Message),
		QuizID:    req.QuizID,
		StudentID: req.StudentID,
		Status:    models.NotificationPending,
		CreatedAt: s.now().UTC(),
	}
	if hasUser {
		n.UserID = req.UserID
	} else {
		n.TargetRole = req.TargetRole
	}
	if !caller.IsAdmin() {
		self := caller.ID
		n.StudentID = &self
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, err
	}
	s.publish(n)
	return n, nil
}

// Update changes status and/or the read flag. Status changes are admin only.
// Approving or rejecting a quiz access request assigns the quiz and notifies the student;
// if those follow-up writes still fail after retries the stored status is kept and
// ErrCascadeIncomplete is returned alongside the updated notification.
func (s *notificationServiceImpl) Update(ctx context.Context, caller *models.Caller, req *dto.UpdateNotificationRequest) (*models.Notification, error) {
	if caller == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	current, err := s.notifications.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil && !caller.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only admins may change a notification status")
	}
	if req.Read != nil && !caller.IsAdmin() && !current.AddressedTo(caller) {
		return nil, apperrors.NewForbiddenError("only the recipient may mark a notification as read")
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]interface{}{"status": "must be pending, approved or rejected"})
	}

	updated, moved, err := s.notifications.Update(ctx, req.ID, models.NotificationUpdate{Status: req.Status, Read: req.Read})
	if err != nil {
		return nil, err
	}

	// current.Status may be stale; only the writer that moved the row cascades
	if !moved {
		return updated, nil
	}
	if err := s.cascade(ctx, updated); err != nil {
		return updated, err
	}
	return updated, nil
}

// cascade performs the follow-up writes of an approved or rejected quiz access request
func (s *notificationServiceImpl) cascade(ctx context.Context, n *models.Notification) error {
	if n.QuizID == nil || n.StudentID == nil || *n.QuizID == "" || *n.StudentID == "" {
		return nil
	}
	quizID, studentID := *n.QuizID, *n.StudentID

	var reply *models.Notification
	switch n.Status {
	case models.NotificationApproved:
		if err := s.retry(ctx, func() error {
			return s.resources.AddAssignee(ctx, models.ResourceQuizzes, quizID, studentID)
		}); err != nil {
			return s.cascadeFailed(n, "assign quiz", err)
		}
		reply = s.reply(n, models.NotificationTypeQuizAccessApproved, "Quiz access approved",
			"Your request for quiz access has been approved.")
	case models.NotificationRejected:
		reply = s.reply(n, models.NotificationTypeQuizAccessRejected, "Quiz access rejected",
			"Your request for quiz access has been rejected.")
	default:
		return nil
	}

	if err := s.retry(ctx, func() error { return s.notifications.Create(ctx, reply) }); err != nil {
		return s.cascadeFailed(n, "notify student", err)
	}
	s.publish(reply)

	s.logger.Info().Str("notificationID", n.ID).Str("quizID", quizID).Str("studentID", studentID).
		Str("status", string(n.Status)).Msg("Quiz access request resolved")
	return nil
}

func (s *notificationServiceImpl) reply(n *models.Notification, typ, title, message string) *models.Notification {
	student := *n.StudentID
	quiz := *n.QuizID
	return &models.Notification{
		ID:        uuid.NewString(),
		Type:      typ,
		Title:     title,
		Message:   message,
		UserID:    &student,
		QuizID:    &quiz,
		StudentID: &student,
		Status:    n.Status,
		CreatedAt: s.now().UTC(),
	}
}

func (s *notificationServiceImpl) retry(ctx context.Context, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}, s.newBackOff(ctx))
}

func (s *notificationServiceImpl) cascadeFailed(n *models.Notification, step string, err error) error {
	metrics.CascadeFailuresTotal.Inc()
	s.logger.Error().Err(err).Str("notificationID", n.ID).Str("step", step).Msg("Quiz access cascade incomplete")
	return apperrors.NewCustomError(apperrors.ErrCascadeIncomplete,
		fmt.Sprintf("notification %s was updated but %s failed: %v", n.ID, step, err))
}

func (s *notificationServiceImpl) Delete(ctx context.Context, caller *models.Caller, id string) error {
	if caller == nil {
		return apperrors.ErrUnauthenticated
	}
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() && !n.AddressedTo(caller) {
		return apperrors.NewForbiddenError("only the recipient may delete a notification")
	}
	return s.notifications.Delete(ctx, id)
}

func (s *notificationServiceImpl) publish(n *models.Notification) {
	if s.publisher != nil {
		s.publisher.Publish(n)
	}
}
