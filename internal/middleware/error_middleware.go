package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/deptportal/internal/app/models/dto"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
	"github.com/yigit/deptportal/internal/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order; the first sentinel in the chain wins
var errorMappings = []errorMapping{
	{apperrors.ErrUnauthenticated, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeForbidden, "Account is disabled"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrInvalidType, http.StatusBadRequest, dto.ErrorCodeInvalidType, "Invalid resource type"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrInvalidEmail, http.StatusBadRequest, dto.ErrorCodeInvalidEmail, "Invalid email"},
	{apperrors.ErrInvalidPassword, http.StatusBadRequest, dto.ErrorCodeInvalidPassword, "Invalid password"},
	{apperrors.ErrFileTooLarge, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "File too large"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeResourceInvalid, "Bad request"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrCapacityExceeded, http.StatusConflict, dto.ErrorCodeCapacityExceeded, "Event is full"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Conflict"},
	{apperrors.ErrTooManyRequests, http.StatusTooManyRequests, dto.ErrorCodeTooManyRequests, "Too many requests"},
	{apperrors.ErrCascadeIncomplete, http.StatusInternalServerError, dto.ErrorCodeCascadeIncomplete, "Approval recorded but follow-up actions failed"},
	{apperrors.ErrUpstreamFailure, http.StatusBadGateway, dto.ErrorCodeExternalServiceError, "Upstream service unavailable"},
}

// HandleAPIError writes the error envelope for err. Messages of CustomErrors are passed
// through for client errors; server errors get a generic message and are logged.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorDetailFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}

func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		detail := dto.NewErrorDetail(m.code, m.message)
		if ce, ok := apperrors.AsCustom(err); ok && m.status < http.StatusInternalServerError {
			if ce.Message != "" {
				detail.Message = ce.Message
			}
			if len(ce.Details) > 0 {
				detail = detail.WithDetails(ce.Details)
			}
		}
		return m.status, detail
	}
	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}
