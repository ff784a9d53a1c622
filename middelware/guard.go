package middelware

import (
	"fmt"
	"net/http"

	"eduadmin-client/models"
	"eduadmin-client/session"
	"eduadmin-client/utils/logger"

	"github.com/gin-gonic/gin"
)

// SessionGuard adapts the session service's predicates into gin middleware
// for the reference HTTP surface.
type SessionGuard struct {
	sessions *session.SessionService
	logger   logger.Logger
}

// NewSessionGuard creates a new session guard
func NewSessionGuard(sessions *session.SessionService, log logger.Logger) *SessionGuard {
	return &SessionGuard{
		sessions: sessions,
		logger:   log,
	}
}

// RequireAuth rejects requests while no session is live
func (g *SessionGuard) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.sessions.IsAuthenticated() {
			c.JSON(http.StatusUnauthorized, models.APIResponse{
				Status:  "error",
				Code:    http.StatusUnauthorized,
				Message: "Authentication required",
				Error: &models.APIError{
					Type:    "AuthenticationError",
					Details: "No active session",
				},
			})
			c.Abort()
			return
		}

		c.Set("session_user", g.sessions.User())
		c.Next()
	}
}

// RequirePermission checks an explicit permission grant on the session user
func (g *SessionGuard) RequirePermission(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.sessions.IsAuthenticated() {
			g.unauthorized(c)
			return
		}

		if !g.sessions.HasPermission(key) {
			g.logger.Warnf("Permission denied: %s", key)
			g.forbidden(c, fmt.Sprintf("Required permission: %s", key))
			return
		}

		c.Next()
	}
}

// RequireAnyPermission passes when at least one of the keys is granted
func (g *SessionGuard) RequireAnyPermission(keys ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.sessions.IsAuthenticated() {
			g.unauthorized(c)
			return
		}

		if !g.sessions.HasAnyPermission(keys...) {
			g.forbidden(c, fmt.Sprintf("Required one of: %v", keys))
			return
		}

		c.Next()
	}
}

// RequireRole checks role containment under the inheritance table, so a
// SUPER_ADMIN passes a guard declared for SCHOOL_ADMIN
func (g *SessionGuard) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.sessions.IsAuthenticated() {
			g.unauthorized(c)
			return
		}

		if !g.sessions.HasRole(role) {
			g.logger.Warnf("Role check failed: %s", role)
			g.forbidden(c, fmt.Sprintf("Required role: %s", role))
			return
		}

		c.Next()
	}
}

// RequireDataScope checks data-scope membership, honoring the wildcard grant
func (g *SessionGuard) RequireDataScope(dataScope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.sessions.IsAuthenticated() {
			g.unauthorized(c)
			return
		}

		if !g.sessions.HasDataScope(dataScope) {
			g.forbidden(c, fmt.Sprintf("Required data scope: %s", dataScope))
			return
		}

		c.Next()
	}
}

func (g *SessionGuard) unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, models.APIResponse{
		Status:  "error",
		Code:    http.StatusUnauthorized,
		Message: "Authentication required",
		Error: &models.APIError{
			Type:    "AuthenticationError",
			Details: "No active session",
		},
	})
	c.Abort()
}

func (g *SessionGuard) forbidden(c *gin.Context, details string) {
	c.JSON(http.StatusForbidden, models.APIResponse{
		Status:  "error",
		Code:    http.StatusForbidden,
		Message: "Insufficient permissions",
		Error: &models.APIError{
			Type:    "AuthorizationError",
			Details: details,
		},
	})
	c.Abort()
}
