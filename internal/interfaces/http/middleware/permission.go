package middleware

import (
	"net/http"
	"slices"

	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PermissionConfig holds configuration for permission middleware
type PermissionConfig struct {
	Logger *zap.Logger
}

// RequireStaff admits admins and tutors
func RequireStaff() gin.HandlerFunc {
	return RequireRolesWithConfig(PermissionConfig{}, identity.RoleAdmin, identity.RoleTutor)
}

// RequireRoles admits sessions holding any of the given roles
func RequireRoles(roleIDs ...int64) gin.HandlerFunc {
	return RequireRolesWithConfig(PermissionConfig{}, roleIDs...)
}

// RequireRolesWithConfig admits sessions holding any of the given roles
func RequireRolesWithConfig(cfg PermissionConfig, roleIDs ...int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := GetSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewFailResponse(shared.CodeUnauthorized, "Authentication required"))
			return
		}
		if !slices.Contains(roleIDs, session.RoleID) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Role check failed",
					zap.String("zid", session.Zid),
					zap.Int64("role_id", session.RoleID),
					zap.Int64s("required_any", roleIDs),
					zap.String("path", c.FullPath()))
			}
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewFailResponse(shared.CodeForbidden, "You do not have permission to perform this action"))
			return
		}
		c.Next()
	}
}
