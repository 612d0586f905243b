package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/deptportal/internal/app/models/dto"
	"github.com/yigit/deptportal/internal/app/services"
	"github.com/yigit/deptportal/internal/middleware"
	"github.com/yigit/deptportal/internal/pkg/websocket"
)

// NotificationController handles the notification relay
type NotificationController struct {
	notifications services.NotificationService
	upgrader      *websocket.Upgrader
	logger        zerolog.Logger
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notifications services.NotificationService, upgrader *websocket.Upgrader, logger zerolog.Logger) *NotificationController {
	return &NotificationController{
		notifications: notifications,
		upgrader:      upgrader,
		logger:        logger,
	}
}

// List returns the notifications addressed to the caller or the caller's role
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	list, err := c.notifications.List(ctx.Request.Context(), middleware.CallerFrom(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// Create adds a notification
// @Summary Create a notification
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body dto.CreateNotificationRequest true "Notification"
// @Success 201 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /notifications [post]
func (c *NotificationController) Create(ctx *gin.Context) {
	var req dto.CreateNotificationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	n, err := c.notifications.Create(ctx.Request.Context(), middleware.CallerFrom(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(n))
}

// Update changes the status or read flag of a notification
// @Summary Update a notification
// @Description Approving a quiz access request assigns the quiz and notifies the student
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body dto.UpdateNotificationRequest true "Changes"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Status changes are admin-only"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse "Status saved but follow-up actions failed"
// @Router /notifications [put]
func (c *NotificationController) Update(ctx *gin.Context) {
	var req dto.UpdateNotificationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	n, err := c.notifications.Update(ctx.Request.Context(), middleware.CallerFrom(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(n))
}

// Delete removes a notification by ?id= or a body {id}
// @Summary Delete a notification
// @Tags notifications
// @Produce json
// @Param id query string false "Notification id"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /notifications [delete]
func (c *NotificationController) Delete(ctx *gin.Context) {
	id := ctx.Query("id")
	if id == "" {
		var body dto.DeleteRequest
		if !middleware.BindJSON(ctx, &body) {
			return
		}
		id = body.ID
	}
	if err := c.notifications.Delete(ctx.Request.Context(), middleware.CallerFrom(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Deleted"}))
}

// Subscribe upgrades to a websocket that receives new notifications for the caller
// @Summary Live notifications
// @Tags notifications
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} dto.ErrorResponse
// @Router /notifications/ws [get]
func (c *NotificationController) Subscribe(ctx *gin.Context) {
	caller := middleware.CallerFrom(ctx)
	if err := c.upgrader.Serve(ctx.Writer, ctx.Request, caller); err != nil {
		c.logger.Warn().Err(err).Str("userID", caller.ID).Msg("Failed to upgrade notification socket")
	}
}
