package models

import (
	"encoding/json"
	"time"
)

// QuizResult is the latest attempt of one user at one quiz
type QuizResult struct {
	ID        string          `json:"id" db:"id"`
	UserID    string          `json:"userId" db:"user_id"`
	QuizID    string          `json:"quizId" db:"quiz_id"`
	Score     float64         `json:"score" db:"score"`
	Answers   json.RawMessage `json:"answers,omitempty" db:"answers"`
	Timestamp time.Time       `json:"timestamp" db:"submitted_at"`
}
