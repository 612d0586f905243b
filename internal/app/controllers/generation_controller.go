package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/deptportal/internal/app/models/dto"
	"github.com/yigit/deptportal/internal/app/services"
	"github.com/yigit/deptportal/internal/middleware"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
)

// GenerationController exposes the AI helpers. Model failures never surface as errors;
// the response says whether the model or the fallback answered.
type GenerationController struct {
	generation services.GenerationService
	maxPDF     int64
	logger     zerolog.Logger
}

// NewGenerationController creates a new GenerationController
func NewGenerationController(generation services.GenerationService, maxPDF int64, logger zerolog.Logger) *GenerationController {
	return &GenerationController{generation: generation, maxPDF: maxPDF, logger: logger}
}

func respondGenerated[T any](ctx *gin.Context, g services.Generated[T]) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.GenerationResponse{
		Source: string(g.Source),
		Result: g.Value,
	}))
}

// Quiz generates multiple-choice questions
// @Summary Generate a quiz
// @Tags generation
// @Accept json
// @Produce json
// @Param request body dto.QuizGenerationRequest true "Topic"
// @Success 200 {object} dto.APIResponse{data=dto.GenerationResponse}
// @Router /quiz-generation [post]
func (c *GenerationController) Quiz(ctx *gin.Context) {
	var req dto.QuizGenerationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	respondGenerated(ctx, c.generation.GenerateQuiz(ctx.Request.Context(), req.Topic, req.Count, req.Difficulty))
}

// Flashcards generates study cards
// @Summary Generate flashcards
// @Tags generation
// @Accept json
// @Produce json
// @Param request body dto.FlashcardGenerationRequest true "Topic"
// @Success 200 {object} dto.APIResponse{data=dto.GenerationResponse}
// @Router /flashcard-generation [post]
func (c *GenerationController) Flashcards(ctx *gin.Context) {
	var req dto.FlashcardGenerationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	respondGenerated(ctx, c.generation.GenerateFlashcards(ctx.Request.Context(), req.Topic, req.Count))
}

// Chat answers one message
// @Summary Chat assistant
// @Tags generation
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Message"
// @Success 200 {object} dto.APIResponse{data=dto.GenerationResponse}
// @Router /chatbot [post]
func (c *GenerationController) Chat(ctx *gin.Context) {
	var req dto.ChatRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	respondGenerated(ctx, c.generation.Chat(ctx.Request.Context(), req.Message, req.History))
}

// AnalyzePDF answers a question about an uploaded PDF (multipart fields "file" and "question")
// @Summary Ask about a PDF
// @Tags generation
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF document"
// @Param question formData string false "Question"
// @Success 200 {object} dto.APIResponse{data=dto.GenerationResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing file"
// @Router /chatbot-analyze-pdf [post]
func (c *GenerationController) AnalyzePDF(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxPDF+multipartOverhead)

	header, err := ctx.FormFile("file")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("file is required", map[string]interface{}{"file": "a PDF file is required"}))
		return
	}
	src, err := header.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, c.maxPDF))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondGenerated(ctx, c.generation.AnalyzePDF(ctx.Request.Context(), data, ctx.PostForm("question")))
}
