package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/deptportal/internal/app/models"
	"github.com/yigit/deptportal/internal/app/models/dto"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
	"github.com/yigit/deptportal/internal/pkg/auth"
	"github.com/yigit/deptportal/internal/pkg/session"
)

// Context keys set by Resolve
const (
	callerKey    = "caller"
	claimsKey    = "claims"
	authErrorKey = "authError"
)

// UserLookup loads the stored account behind a session
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware resolves the session of each request
type AuthMiddleware struct {
	jwtService *auth.JWTService
	revoker    session.Revoker
	users      UserLookup
	cookieName string
	logger     zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, revoker session.Revoker, users UserLookup, cookieName string, logger zerolog.Logger) *AuthMiddleware {
	if cookieName == "" {
		cookieName = "session"
	}
	return &AuthMiddleware{
		jwtService: jwtService,
		revoker:    revoker,
		users:      users,
		cookieName: cookieName,
		logger:     logger,
	}
}

// CookieName is the name of the session cookie
func (m *AuthMiddleware) CookieName() string {
	return m.cookieName
}

// Resolve reads the session cookie, or a bearer token when no cookie is sent, and stores
// the caller in the context. The caller is rebuilt from the stored account on every request,
// so a deleted, disabled or demoted user loses access immediately.
// A missing or bad token leaves the request anonymous.
func (m *AuthMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.tokenFrom(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			c.Set(authErrorKey, err)
			c.Next()
			return
		}

		revoked, err := m.revoker.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			m.logger.Warn().Err(err).Msg("Revocation check failed, treating session as valid")
		}
		if revoked {
			c.Set(authErrorKey, auth.ErrInvalidToken)
			c.Next()
			return
		}

		user, err := m.users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if !errors.Is(err, apperrors.ErrUserNotFound) {
				m.logger.Error().Err(err).Str("userID", claims.UserID).Msg("Failed to load session user")
			}
			c.Set(authErrorKey, auth.ErrInvalidToken)
			c.Next()
			return
		}
		if !user.IsActive {
			c.Set(authErrorKey, auth.ErrInvalidToken)
			c.Next()
			return
		}

		c.Set(claimsKey, claims)
		c.Set(callerKey, user.AsCaller())
		c.Next()
	}
}

func (m *AuthMiddleware) tokenFrom(c *gin.Context) string {
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	token, err := auth.ExtractBearerToken(strings.Trim(header, "\"'"))
	if err != nil {
		return ""
	}
	return token
}

// RequireAuth rejects anonymous requests with 401
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CallerFrom(c) == nil {
			abortUnauthenticated(c)
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFrom(c)
		if caller == nil {
			abortUnauthenticated(c)
			return
		}
		if !caller.IsAdmin() {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
	if v, ok := c.Get(authErrorKey); ok {
		if err, _ := v.(error); errors.Is(err, auth.ErrExpiredToken) {
			errorDetail = dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Session expired")
		} else {
			errorDetail = dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid session")
		}
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// CallerFrom returns the resolved caller, or nil for anonymous requests
func CallerFrom(c *gin.Context) *models.Caller {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*models.Caller)
	return caller
}

// ClaimsFrom returns the validated token claims, or nil for anonymous requests
func ClaimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
