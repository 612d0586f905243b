package dto

import "encoding/json"

// SubmitQuizResultRequest records the caller's attempt at a quiz
type SubmitQuizResultRequest struct {
	QuizID  string          `json:"quizId" binding:"required"`
	Score   *float64        `json:"score" binding:"required,min=0"`
	Answers json.RawMessage `json:"answers,omitempty"`
}
