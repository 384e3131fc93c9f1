package policy

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
	policies := r.Group("/policies")
	policies.Use(middleware.AuthMiddleware(directory))
	{
		// Reads are open to any authenticated caller (the catalog
		// feeds the leave-request form); writes are admin-only.
		policies.GET("", handler.GetAll)
		policies.GET("/:id", handler.GetByID)

		write := middleware.RBACAuthorize(rbacService, rbac.ResourcePolicy, rbac.ActionWrite)
		policies.POST("", write, handler.Create)
		policies.PUT("/:id", write, handler.Update)
		policies.DELETE("/:id", write, handler.Delete)
	}
}
