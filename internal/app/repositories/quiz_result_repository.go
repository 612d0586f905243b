package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/deptportal/internal/app/models"
)

// QuizResultRepository handles quiz result database operations
type QuizResultRepository struct {
	db *pgxpool.Pool
}

// NewQuizResultRepository creates a new QuizResultRepository
func NewQuizResultRepository(db *pgxpool.Pool) *QuizResultRepository {
	return &QuizResultRepository{db: db}
}

// Upsert stores the result, replacing any earlier one for the same (user, quiz).
// The stored row id is written back to result.ID.
func (r *QuizResultRepository) Upsert(ctx context.Context, result *models.QuizResult) error {
	answers := []byte(result.Answers)
	if len(answers) == 0 {
		answers = []byte("null")
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO quiz_results (id, user_id, quiz_id, score, answers, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, quiz_id)
		DO UPDATE SET score = EXCLUDED.score, answers = EXCLUDED.answers, submitted_at = EXCLUDED.submitted_at
		RETURNING id`,
		result.ID, result.UserID, result.QuizID, result.Score, answers, result.Timestamp,
	).Scan(&result.ID)
	if err != nil {
		return fmt.Errorf("error saving quiz result: %w", err)
	}
	return nil
}

// ListByUser returns a user's results, newest first
func (r *QuizResultRepository) ListByUser(ctx context.Context, userID string) ([]*models.QuizResult, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, quiz_id, score, answers, submitted_at
		FROM quiz_results
		WHERE user_id = $1
		ORDER BY submitted_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying quiz results: %w", err)
	}
	defer rows.Close()

	out := []*models.QuizResult{}
	for rows.Next() {
		res := &models.QuizResult{}
		var answers []byte
		if err := rows.Scan(&res.ID, &res.UserID, &res.QuizID, &res.Score, &answers, &res.Timestamp); err != nil {
			return nil, fmt.Errorf("error scanning quiz result row: %w", err)
		}
		res.Answers = answers
		out = append(out, res)
	}
	return out, rows.Err()
}
