package user

import (
	"go-leavedesk/internal/middleware"
	"go-leavedesk/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	directory middleware.ActorDirectory,
	rbacService rbac.Service,
) {
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware(directory))
	{
		// Any authenticated caller may list managers for the
		// assignment dropdown; everything else is admin-only.
		users.GET("/managers", handler.GetManagers)

		manage := middleware.RBACAuthorize(rbacService, rbac.ResourceUser, rbac.ActionManage)
		users.GET("", manage, handler.GetAll)
		users.POST("", manage, handler.Create)
		users.GET("/:id", manage, handler.GetByID)
		users.PUT("/:id", manage, handler.Update)
		users.PATCH("/:id/toggle-status", manage, handler.ToggleStatus)
	}
}
