package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/deptportal/internal/app/models/dto"
	"github.com/yigit/deptportal/internal/app/services"
	"github.com/yigit/deptportal/internal/middleware"
)

// QuizResultController stores and lists quiz attempts
type QuizResultController struct {
	results services.QuizResultService
}

// NewQuizResultController creates a new QuizResultController
func NewQuizResultController(results services.QuizResultService) *QuizResultController {
	return &QuizResultController{results: results}
}

// Submit records the caller's latest attempt at a quiz
// @Summary Submit a quiz result
// @Tags quiz-results
// @Accept json
// @Produce json
// @Param request body dto.SubmitQuizResultRequest true "Result"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Router /quiz-results [post]
func (c *QuizResultController) Submit(ctx *gin.Context) {
	var req dto.SubmitQuizResultRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	result, err := c.results.Submit(ctx.Request.Context(), middleware.CallerFrom(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// ListMine returns the caller's results
// @Summary List own quiz results
// @Tags quiz-results
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Router /quiz-results [get]
func (c *QuizResultController) ListMine(ctx *gin.Context) {
	list, err := c.results.ListMine(ctx.Request.Context(), middleware.CallerFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}
