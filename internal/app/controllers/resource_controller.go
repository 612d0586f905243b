package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/app/models/dto"
	"github.com/yigit/deptportal/internal/app/services"
	"github.com/yigit/deptportal/internal/middleware"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
)

// ResourceController serves every resource collection through one set of handlers
type ResourceController struct {
	resources     services.ResourceService
	registrations services.RegistrationService
	logger        zerolog.Logger
}

// NewResourceController creates a new ResourceController
func NewResourceController(resources services.ResourceService, registrations services.RegistrationService, logger zerolog.Logger) *ResourceController {
	return &ResourceController{
		resources:     resources,
		registrations: registrations,
		logger:        logger,
	}
}

// List returns the visible records of a type, or one record when id is given
// @Summary List resources
// @Tags resources
// @Produce json
// @Param type query string true "Resource type" Enums(events, pyqs, certifications, hackathons, interviews, quizzes, flashcardSets)
// @Param id query string false "Record id"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Unknown type"
// @Failure 401 {object} dto.ErrorResponse "Sign-in required for this type"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Router /resources [get]
func (c *ResourceController) List(ctx *gin.Context) {
	var q dto.ResourceQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	caller := middleware.CallerFrom(ctx)

	if q.ID != "" {
		res, err := c.resources.Get(ctx.Request.Context(), caller, q.Type, q.ID)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(res))
		return
	}

	list, err := c.resources.List(ctx.Request.Context(), caller, q.Type)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// Create stores a new record
// @Summary Create a resource (admin)
// @Tags resources
// @Accept json
// @Produce json
// @Param type query string true "Resource type"
// @Success 201 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Router /resources [post]
func (c *ResourceController) Create(ctx *gin.Context) {
	var q dto.ResourceQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	var body dto.ResourcePatch
	if !middleware.BindJSON(ctx, &body) {
		return
	}

	res, err := c.resources.Create(ctx.Request.Context(), middleware.CallerFrom(ctx), q.Type, body)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(res))
}

// Update patches a record. An events body carrying addRegisteredUserId is a registration instead.
// @Summary Update a resource or register for an event
// @Tags resources
// @Accept json
// @Produce json
// @Param type query string true "Resource type"
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Not allowed"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Failure 409 {object} dto.ErrorResponse "Event is full"
// @Router /resources [put]
func (c *ResourceController) Update(ctx *gin.Context) {
	var q dto.ResourceQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	var body dto.ResourcePatch
	if !middleware.BindJSON(ctx, &body) {
		return
	}
	caller := middleware.CallerFrom(ctx)

	if body.IsRegistration() {
		c.register(ctx, caller, q.Type, body)
		return
	}

	id := body.ID()
	if id == "" {
		id = q.ID
	}
	if id == "" {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("id is required", map[string]interface{}{"id": "id is required"}))
		return
	}

	res, err := c.resources.Update(ctx.Request.Context(), caller, q.Type, id, body)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(res))
}

func (c *ResourceController) register(ctx *gin.Context, caller *models.Caller, typ string, body dto.ResourcePatch) {
	if typ != string(models.ResourceEvents) {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("only events accept registrations"))
		return
	}

	raw, err := json.Marshal(body)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.RegisterRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("invalid registration payload",
			map[string]interface{}{"registrationData": "must be an object of strings"}))
		return
	}

	out, err := c.registrations.Register(ctx.Request.Context(), caller, req.ID, req.AddRegisteredUserID, req.RegistrationData)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewRegistrationResponse(out)))
}

// Delete removes a record by ?id= or a body {id}
// @Summary Delete a resource (admin)
// @Tags resources
// @Produce json
// @Param type query string true "Resource type"
// @Param id query string false "Record id"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Router /resources [delete]
func (c *ResourceController) Delete(ctx *gin.Context) {
	var q dto.ResourceQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	id := q.ID
	if id == "" {
		var body dto.DeleteRequest
		if !middleware.BindJSON(ctx, &body) {
			return
		}
		id = body.ID
	}

	if err := c.resources.Delete(ctx.Request.Context(), middleware.CallerFrom(ctx), q.Type, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Deleted"}))
}

// Registrations returns the registration log of an event
// @Summary Event registration log (admin)
// @Tags resources
// @Produce json
// @Param id query string true "Event id"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /resources/registrations [get]
func (c *ResourceController) Registrations(ctx *gin.Context) {
	list, err := c.registrations.Registrations(ctx.Request.Context(), middleware.CallerFrom(ctx), ctx.Query("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// Bookmark toggles the caller's bookmark on a record
// @Summary Toggle bookmark
// @Tags resources
// @Produce json
// @Param type query string true "Resource type"
// @Param id query string true "Record id"
// @Success 200 {object} dto.APIResponse{data=dto.BookmarkResponse}
// @Router /resources/bookmark [post]
func (c *ResourceController) Bookmark(ctx *gin.Context) {
	var q dto.ResourceQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	on, err := c.resources.ToggleBookmark(ctx.Request.Context(), middleware.CallerFrom(ctx), q.Type, q.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.BookmarkResponse{ResourceID: q.ID, Bookmarked: on}))
}
