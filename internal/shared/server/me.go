package server

import (
	"github.com/gin-gonic/gin"

	"github.com/mona5211005/certificate-system/internal/shared/server/middleware"
	"github.com/mona5211005/certificate-system/internal/shared/server/respond"
	"github.com/mona5211005/certificate-system/internal/users"
)

// registerMeRoutes attaches the identity echo endpoint. The headers only
// carry id and role; the profile comes from the users table when a record
// exists.
func registerMeRoutes(rg *gin.RouterGroup, usersSvc *users.Service) {
	rg.GET("/me", func(c *gin.Context) {
		userID := middleware.UserIDFromContext(c)
		response := gin.H{
			"userId": userID,
			"role":   middleware.UserRoleFromContext(c),
		}
		if usersSvc != nil {
			if user, err := usersSvc.GetByID(c.Request.Context(), userID); err == nil {
				response["account"] = user.Account
				response["name"] = user.Name
				response["college"] = user.College
				response["role"] = user.Role
			}
		}
		respond.OK(c, response)
	})
}
