package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
	"github.com/yigit/deptportal/internal/pkg/logger"
)

// registeredUsersColumn aggregates the ordered seat list of an event
const registeredUsersColumn = `COALESCE((SELECT array_agg(er.user_id ORDER BY er.position) FROM event_registrants er WHERE er.event_id = resources.id), '{}') AS registered_users`

var resourceColumns = []string{
	"id", "type", "title", "description", "created_by", "is_active", "assigned_to", "bookmarked_by",
	"file_id", "downloads", "attributes", "event_date", "event_time", "location", "capacity",
	"registration_fields", "issued_to", "created_at", "updated_at", registeredUsersColumn,
}

// ResourceRepository handles resource database operations for every resource type
type ResourceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewResourceRepository creates a new ResourceRepository
func NewResourceRepository(db *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// resourceRow mirrors the nullable columns of the resources table
type resourceRow struct {
	eventDate, eventTime, location *string
	capacity                       *int
	attributes, fields             []byte
	issuedTo                       []string
	registeredUsers                []string
}

func scanResource(row pgx.Row) (*models.Resource, error) {
	r := &models.Resource{}
	var raw resourceRow
	err := row.Scan(
		&r.ID, &r.Type, &r.Title, &r.Description, &r.CreatedBy, &r.IsActive, &r.AssignedTo, &r.BookmarkedBy,
		&r.FileID, &r.Downloads, &raw.attributes, &raw.eventDate, &raw.eventTime, &raw.location, &raw.capacity,
		&raw.fields, &raw.issuedTo, &r.CreatedAt, &r.UpdatedAt, &raw.registeredUsers,
	)
	if err != nil {
		return nil, err
	}

	if len(raw.attributes) > 0 {
		if err := json.Unmarshal(raw.attributes, &r.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes: %w", err)
		}
	}
	if r.Attributes == nil {
		r.Attributes = map[string]interface{}{}
	}

	switch r.Type {
	case models.ResourceEvents:
		ev := &models.EventDetails{RegisteredUsers: raw.registeredUsers}
		if raw.eventDate != nil {
			ev.Date = *raw.eventDate
		}
		if raw.eventTime != nil {
			ev.Time = *raw.eventTime
		}
		if raw.location != nil {
			ev.Location = *raw.location
		}
		if raw.capacity != nil {
			ev.Capacity = *raw.capacity
		}
		if len(raw.fields) > 0 {
			if err := json.Unmarshal(raw.fields, &ev.RegistrationFields); err != nil {
				return nil, fmt.Errorf("decode registration fields: %w", err)
			}
		}
		r.Event = ev
	case models.ResourceCertifications:
		issued := raw.issuedTo
		if issued == nil {
			issued = []string{}
		}
		r.Certification = &models.CertificationDetails{IssuedTo: issued}
	}
	return r, nil
}

// typedColumns returns the column values derived from the typed sections of r
func typedColumns(r *models.Resource) (map[string]interface{}, error) {
	attrs := r.Attributes
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	attrJSON, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}

	cols := map[string]interface{}{
		"title":               r.Title,
		"description":         r.Description,
		"is_active":           r.IsActive,
		"assigned_to":         nonNilStrings(r.AssignedTo),
		"bookmarked_by":       nonNilStrings(r.BookmarkedBy),
		"file_id":             r.FileID,
		"attributes":          attrJSON,
		"event_date":          nil,
		"event_time":          nil,
		"location":            nil,
		"capacity":            nil,
		"registration_fields": nil,
		"issued_to":           nil,
		"updated_at":          r.UpdatedAt,
	}
	if r.Event != nil {
		fields, err := json.Marshal(r.Event.RegistrationFields)
		if err != nil {
			return nil, fmt.Errorf("encode registration fields: %w", err)
		}
		cols["event_date"] = r.Event.Date
		cols["event_time"] = r.Event.Time
		cols["location"] = r.Event.Location
		cols["capacity"] = r.Event.Capacity
		cols["registration_fields"] = fields
	}
	if r.Certification != nil {
		cols["issued_to"] = nonNilStrings(r.Certification.IssuedTo)
	}
	return cols, nil
}

// List returns the records of one type, newest first
func (r *ResourceRepository) List(ctx context.Context, t models.ResourceType, filter ResourceFilter) ([]*models.Resource, error) {
	q := r.sb.Select(resourceColumns...).From("resources").Where(squirrel.Eq{"type": t})
	if c := filter.VisibleTo; c != nil && !c.IsAdmin() {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"created_by": c.ID},
			squirrel.Expr("? = ANY(assigned_to)", c.ID),
			squirrel.Eq{"is_active": true},
		})
	}

	sql, args, err := q.OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list resources query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("type", string(t)).Msg("Error querying resources")
		return nil, fmt.Errorf("error querying resources: %w", err)
	}
	defer rows.Close()

	out := []*models.Resource{}
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning resource row: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resource rows: %w", err)
	}
	return out, nil
}

// GetByID retrieves one record of type t
func (r *ResourceRepository) GetByID(ctx context.Context, t models.ResourceType, id string) (*models.Resource, error) {
	sql, args, err := r.sb.Select(resourceColumns...).
		From("resources").
		Where(squirrel.Eq{"id": id, "type": t}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get resource query: %w", err)
	}

	res, err := scanResource(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("%s %s not found", t, id))
		}
		return nil, fmt.Errorf("error getting resource: %w", err)
	}
	return res, nil
}

// Create inserts a new record; seats and registration entries live in their own tables
func (r *ResourceRepository) Create(ctx context.Context, res *models.Resource) error {
	cols, err := typedColumns(res)
	if err != nil {
		return err
	}
	cols["id"] = res.ID
	cols["type"] = res.Type
	cols["created_by"] = res.CreatedBy
	cols["downloads"] = res.Downloads
	cols["created_at"] = res.CreatedAt

	sql, args, err := r.sb.Insert("resources").SetMap(cols).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create resource query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("type", string(res.Type)).Msg("Error creating resource")
		return fmt.Errorf("error creating resource: %w", err)
	}
	return nil
}

// Update writes the mutable columns of an existing record
func (r *ResourceRepository) Update(ctx context.Context, res *models.Resource) error {
	cols, err := typedColumns(res)
	if err != nil {
		return err
	}

	sql, args, err := r.sb.Update("resources").
		SetMap(cols).
		Where(squirrel.Eq{"id": res.ID, "type": res.Type}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update resource query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("%s %s not found", res.Type, res.ID))
	}
	return nil
}

// Delete removes a record; seats and registration entries cascade with it
func (r *ResourceRepository) Delete(ctx context.Context, t models.ResourceType, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM resources WHERE id = $1 AND type = $2`, id, t)
	if err != nil {
		return fmt.Errorf("error deleting resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("%s %s not found", t, id))
	}
	return nil
}

// IncrementDownloads bumps the download counter by one
func (r *ResourceRepository) IncrementDownloads(ctx context.Context, t models.ResourceType, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE resources SET downloads = downloads + 1 WHERE id = $1 AND type = $2`, id, t)
	if err != nil {
		return fmt.Errorf("error incrementing downloads: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// AddAssignee adds userID to the assigned set; adding an existing member is a no-op
func (r *ResourceRepository) AddAssignee(ctx context.Context, t models.ResourceType, id, userID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE resources
		SET assigned_to = CASE WHEN $1 = ANY(assigned_to) THEN assigned_to ELSE array_append(assigned_to, $1) END,
		    updated_at = now()
		WHERE id = $2 AND type = $3`, userID, id, t)
	if err != nil {
		return fmt.Errorf("error assigning resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("%s %s not found", t, id))
	}
	return nil
}

// ToggleBookmark flips userID's membership in bookmarked_by and returns the new state
func (r *ResourceRepository) ToggleBookmark(ctx context.Context, t models.ResourceType, id, userID string) (bool, error) {
	var bookmarked bool
	err := r.db.QueryRow(ctx, `
		UPDATE resources
		SET bookmarked_by = CASE WHEN $1 = ANY(bookmarked_by) THEN array_remove(bookmarked_by, $1) ELSE array_append(bookmarked_by, $1) END
		WHERE id = $2 AND type = $3
		RETURNING $1 = ANY(bookmarked_by)`, userID, id, t).Scan(&bookmarked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.NewResourceNotFoundError(fmt.Sprintf("%s %s not found", t, id))
		}
		return false, fmt.Errorf("error toggling bookmark: %w", err)
	}
	return bookmarked, nil
}

func nonNilStrings(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
