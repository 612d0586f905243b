package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/db"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
	"github.com/yigit/deptportal/internal/pkg/logger"
)

// RegistrationRepository performs event seat allocation inside a transaction
type RegistrationRepository struct {
	db *db.PostgresDB
}

// NewRegistrationRepository creates a new RegistrationRepository
func NewRegistrationRepository(database *db.PostgresDB) *RegistrationRepository {
	return &RegistrationRepository{db: database}
}

// Register locks the event row, checks membership and capacity, then records the seat and the detail entry.
// A user already holding a seat gets a new detail entry but no second seat.
func (r *RegistrationRepository) Register(ctx context.Context, eventID string, reg models.Registration, enforceCapacity bool) (*models.RegistrationOutcome, error) {
	out := &models.RegistrationOutcome{EventID: eventID, UserID: reg.UserID}

	data, err := json.Marshal(reg.Data)
	if err != nil {
		return nil, fmt.Errorf("encode registration data: %w", err)
	}

	err = r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var capacity *int
		err := tx.QueryRow(ctx,
			`SELECT capacity FROM resources WHERE id = $1 AND type = $2 FOR UPDATE`,
			eventID, models.ResourceEvents).Scan(&capacity)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewResourceNotFoundError(fmt.Sprintf("event %s not found", eventID))
			}
			return fmt.Errorf("lock event: %w", err)
		}
		if capacity != nil {
			out.Capacity = *capacity
		}

		var count int
		if err := tx.QueryRow(ctx,
			`SELECT count(*), COALESCE(bool_or(user_id = $2), false) FROM event_registrants WHERE event_id = $1`,
			eventID, reg.UserID).Scan(&count, &out.AlreadyRegistered); err != nil {
			return fmt.Errorf("count registrants: %w", err)
		}

		if !out.AlreadyRegistered {
			if out.Capacity > 0 && count >= out.Capacity {
				if enforceCapacity {
					return apperrors.NewCustomError(apperrors.ErrCapacityExceeded,
						fmt.Sprintf("event %s is full (%d/%d)", eventID, count, out.Capacity))
				}
				out.Overbooked = true
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO event_registrants (event_id, user_id, registered_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
				eventID, reg.UserID, reg.CreatedAt); err != nil {
				return fmt.Errorf("insert registrant: %w", err)
			}
			count++
		}
		out.RegisteredCount = count

		if _, err := tx.Exec(ctx,
			`INSERT INTO event_registrations (id, event_id, user_id, data, created_at) VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), eventID, reg.UserID, data, reg.CreatedAt); err != nil {
			return fmt.Errorf("insert registration entry: %w", err)
		}

		_, err = tx.Exec(ctx, `UPDATE resources SET updated_at = $1 WHERE id = $2`, reg.CreatedAt, eventID)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrResourceNotFound) && !errors.Is(err, apperrors.ErrCapacityExceeded) {
			logger.Error().Err(err).Str("eventID", eventID).Str("userID", reg.UserID).Msg("Error registering for event")
		}
		return nil, err
	}
	return out, nil
}

// ListRegistrations returns the detail log of an event in submission order
func (r *RegistrationRepository) ListRegistrations(ctx context.Context, eventID string) ([]models.Registration, error) {
	var exists bool
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM resources WHERE id = $1 AND type = $2)`, eventID, models.ResourceEvents).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check event: %w", err)
	}
	if !exists {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("event %s not found", eventID))
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT user_id, data, created_at FROM event_registrations WHERE event_id = $1 ORDER BY created_at ASC, id ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("error querying registrations: %w", err)
	}
	defer rows.Close()

	out := []models.Registration{}
	for rows.Next() {
		var reg models.Registration
		var data []byte
		if err := rows.Scan(&reg.UserID, &data, &reg.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning registration row: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &reg.Data); err != nil {
				return nil, fmt.Errorf("decode registration data: %w", err)
			}
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}
