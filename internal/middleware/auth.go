package middleware

import (
	"net/http"
	"strings"

	"meetingtracker-be/config"
	"meetingtracker-be/internal/access"
	"meetingtracker-be/internal/models"
	"meetingtracker-be/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID    = "userID"
	ContextPrincipal = "principal"
)

// AuthMiddleware accepts a bearer access token and stores the caller in the context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Missing bearer token",
			})
			return
		}

		claims, err := utils.ValidateToken(strings.TrimPrefix(header, "Bearer "), cfg.JWTSecret)
		if err != nil || claims.TokenType != utils.TokenTypeAccess {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "invalid_token",
				Message: "Invalid or expired access token",
			})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextPrincipal, access.NewPrincipal(claims.UserID, claims.Email, claims.Role, claims.Zones))
		c.Next()
	}
}

// RequireRole rejects callers whose role is not listed.
func RequireRole(roles ...access.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetPrincipal(c).HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Error:   "forbidden",
				Message: "Insufficient role",
			})
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller, or nil outside AuthMiddleware.
func GetPrincipal(c *gin.Context) *access.Principal {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return nil
	}
	p, _ := v.(*access.Principal)
	return p
}
