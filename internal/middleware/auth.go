package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carewell/carehome-api/internal/handler"
	authsvc "github.com/carewell/carehome-api/internal/service/auth"
	apperrors "github.com/carewell/carehome-api/pkg/errors"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
)

type AuthMiddleware struct {
	authService *authsvc.Service
}

func NewAuthMiddleware(authService *authsvc.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the JWT token and sets user info in context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Abort()
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse(http.StatusUnauthorized, "invalid token"))
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID.String())
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin verifies the JWT token and checks the caller's current role
// against the users table, so a revoked admin cannot keep using an old token.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Abort()
			return
		}

		claims, err := m.authService.VerifyAdmin(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			message := "invalid token"
			if appErr, ok := apperrors.AsAppError(err); ok {
				status = appErr.StatusCode()
				message = appErr.Message
			}
			c.JSON(status, handler.NewErrorResponse(status, message))
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID.String())
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse(http.StatusUnauthorized, "missing authorization header"))
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse(http.StatusUnauthorized, "invalid authorization format"))
		return "", false
	}
	return parts[1], true
}
