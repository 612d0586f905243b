package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
)

var notificationColumns = []string{
	"id", "type", "title", "message", "user_id", "target_role", "quiz_id", "student_id", "status", "read", "created_at",
}

// NotificationRepository handles notification database operations
type NotificationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	n := &models.Notification{}
	err := row.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.UserID, &n.TargetRole, &n.QuizID, &n.StudentID, &n.Status, &n.Read, &n.CreatedAt)
	return n, err
}

// ListFor returns notifications addressed to the caller or to the caller's role, newest first
func (r *NotificationRepository) ListFor(ctx context.Context, caller *models.Caller) ([]*models.Notification, error) {
	sql, args, err := r.sb.Select(notificationColumns...).
		From("notifications").
		Where(squirrel.Or{squirrel.Eq{"user_id": caller.ID}, squirrel.Eq{"target_role": caller.Role}}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list notifications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying notifications: %w", err)
	}
	defer rows.Close()

	out := []*models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning notification row: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetByID retrieves a notification by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	sql, args, err := r.sb.Select(notificationColumns...).From("notifications").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get notification query: %w", err)
	}

	n, err := scanNotification(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("notification %s not found", id))
		}
		return nil, fmt.Errorf("error getting notification: %w", err)
	}
	return n, nil
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	sql, args, err := r.sb.Insert("notifications").
		Columns(notificationColumns...).
		Values(n.ID, n.Type, n.Title, n.Message, n.UserID, n.TargetRole, n.QuizID, n.StudentID, n.Status, n.Read, n.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create notification query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

// Update applies the non-nil fields of upd and returns the stored notification.
// The status write is guarded by "status <> new" so that of two concurrent
// writers of the same status only one sees a row come back.
func (r *NotificationRepository) Update(ctx context.Context, id string, upd models.NotificationUpdate) (*models.Notification, bool, error) {
	set := map[string]interface{}{}
	if upd.Read != nil {
		set["read"] = *upd.Read
	}

	if upd.Status != nil {
		withStatus := map[string]interface{}{"status": *upd.Status}
		for k, v := range set {
			withStatus[k] = v
		}
		n, err := r.updateWhere(ctx, withStatus, squirrel.Eq{"id": id}, squirrel.NotEq{"status": *upd.Status})
		if err == nil {
			return n, true, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, false, err
		}
	}

	if len(set) == 0 {
		n, err := r.GetByID(ctx, id)
		return n, false, err
	}
	n, err := r.updateWhere(ctx, set, squirrel.Eq{"id": id})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, apperrors.NewResourceNotFoundError(fmt.Sprintf("notification %s not found", id))
		}
		return nil, false, err
	}
	return n, false, nil
}

func (r *NotificationRepository) updateWhere(ctx context.Context, set map[string]interface{}, where ...squirrel.Sqlizer) (*models.Notification, error) {
	sql, args, err := r.sb.Update("notifications").
		SetMap(set).
		Where(squirrel.And(where)).
		Suffix("RETURNING " + joinColumns(notificationColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update notification query: %w", err)
	}

	n, err := scanNotification(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating notification: %w", err)
	}
	return n, nil
}

// Delete removes a notification
func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("notification %s not found", id))
	}
	return nil
}

func joinColumns(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
