// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/deptportal/internal/app/models/dto"
	"github.com/yigit/deptportal/internal/app/services"
	"github.com/yigit/deptportal/internal/middleware"
)

// CookieSettings controls how the session cookie is written
type CookieSettings struct {
	Name   string
	Secure bool
}

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	cookie      CookieSettings
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, cookie CookieSettings, logger zerolog.Logger) *AuthController {
	if cookie.Name == "" {
		cookie.Name = "session"
	}
	return &AuthController{
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

// Login handles user login
// @Summary Sign in to the student or admin portal
// @Description Checks the credentials against the portal named by type and sets the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Account disabled"
// @Failure 429 {object} dto.ErrorResponse "Too many attempts"
// @Router /auth [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	sess, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setSessionCookie(ctx, sess.Token.Token, sess.Token.ExpiresAt)
	c.logger.Info().Str("userID", sess.User.ID).Str("role", string(sess.User.Role)).Msg("User logged in")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SessionResponse{Role: sess.User.Role, Name: sess.User.Name}))
}

// Signup creates a student account
// @Summary Create a student account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Account details"
// @Success 201 {object} dto.APIResponse{data=dto.SessionResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /auth/signup [post]
func (c *AuthController) Signup(ctx *gin.Context) {
	var req dto.SignupRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	sess, err := c.authService.Signup(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setSessionCookie(ctx, sess.Token.Token, sess.Token.ExpiresAt)
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.SessionResponse{Role: sess.User.Role, Name: sess.User.Name}))
}

// Logout clears the session cookie and revokes the token
// @Summary Sign out
// @Tags auth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Router /auth [delete]
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.authService.Logout(ctx.Request.Context(), middleware.ClaimsFrom(ctx)); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to revoke session")
	}
	c.setSessionCookie(ctx, "", time.Unix(0, 0))
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Logged out"}))
}

// Me returns the current caller
// @Summary Current session
// @Tags auth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.MeResponse}
// @Failure 401 {object} dto.ErrorResponse "Not signed in"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	caller := middleware.CallerFrom(ctx)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MeResponse{
		ID:    caller.ID,
		Email: caller.Email,
		Name:  caller.Name,
		Role:  caller.Role,
	}))
}

func (c *AuthController) setSessionCookie(ctx *gin.Context, value string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if value == "" || maxAge <= 0 {
		maxAge = -1
	}
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     c.cookie.Name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
