package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/app/models/dto"
	"github.com/yigit/deptportal/internal/app/services"
	"github.com/yigit/deptportal/internal/middleware"
)

// UserController handles user-related operations
type UserController struct {
	userService services.UserService
}

// NewUserController creates a new user controller
func NewUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

func userResponses(users []*models.User) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.NewUserResponse(u))
	}
	return out
}

// List returns every user, or one user when ?id= is given
// @Summary List users (admin)
// @Tags users
// @Produce json
// @Param id query string false "User id"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /users [get]
func (c *UserController) List(ctx *gin.Context) {
	caller := middleware.CallerFrom(ctx)
	if id := ctx.Query("id"); id != "" {
		user, err := c.userService.GetUser(ctx.Request.Context(), caller, id)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewUserResponse(user)))
		return
	}

	users, err := c.userService.ListUsers(ctx.Request.Context(), caller)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(userResponses(users)))
}

// Create adds a user account
// @Summary Create a user (admin)
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "User"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /users [post]
func (c *UserController) Create(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	user, err := c.userService.CreateUser(ctx.Request.Context(), middleware.CallerFrom(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewUserResponse(user)))
}

// Update changes a user account
// @Summary Update a user (admin)
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.UpdateUserRequest true "Changes"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Router /users [put]
func (c *UserController) Update(ctx *gin.Context) {
	var req dto.UpdateUserRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	user, err := c.userService.UpdateUser(ctx.Request.Context(), middleware.CallerFrom(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewUserResponse(user)))
}

// Delete removes a user account by ?id= or a body {id}
// @Summary Delete a user (admin)
// @Tags users
// @Produce json
// @Param id query string false "User id"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Router /users [delete]
func (c *UserController) Delete(ctx *gin.Context) {
	id := ctx.Query("id")
	if id == "" {
		var body dto.DeleteRequest
		if !middleware.BindJSON(ctx, &body) {
			return
		}
		id = body.ID
	}
	if err := c.userService.DeleteUser(ctx.Request.Context(), middleware.CallerFrom(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Deleted"}))
}

// UpdateMe changes the caller's own profile
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Changes"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 401 {object} dto.ErrorResponse "Current password is wrong"
// @Router /users/me [put]
func (c *UserController) UpdateMe(ctx *gin.Context) {
	var req dto.UpdateProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	user, err := c.userService.UpdateProfile(ctx.Request.Context(), middleware.CallerFrom(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewUserResponse(user)))
}
