package dto

import "github.com/yigit/deptportal/internal/pkg/genai"

// QuizGenerationRequest asks for generated multiple-choice questions
type QuizGenerationRequest struct {
	Topic      string `json:"topic" binding:"required,max=200"`
	Count      int    `json:"numQuestions" binding:"omitempty,min=1,max=30"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// FlashcardGenerationRequest asks for generated flashcards
type FlashcardGenerationRequest struct {
	Topic string `json:"topic" binding:"required,max=200"`
	Count int    `json:"numCards" binding:"omitempty,min=1,max=50"`
}

// ChatRequest is one chat turn with optional prior history
type ChatRequest struct {
	Message string       `json:"message" binding:"required,max=4000"`
	History []genai.Turn `json:"history,omitempty"`
}

// GenerationResponse carries the payload and which path produced it
type GenerationResponse struct {
	Source string      `json:"source"`
	Result interface{} `json:"result"`
}
