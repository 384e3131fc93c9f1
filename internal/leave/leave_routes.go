package leave

import (
	"go-leavedesk/internal/middleware"
	"go-leavedesk/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	directory middleware.ActorDirectory,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware(directory))
	{
		// Any authenticated caller may file and cancel their own
		// requests; the service enforces ownership for cancel.
		leaves.POST("", middleware.Idempotency(rdb), handler.Create)
		leaves.GET("/my", handler.GetMine)
		leaves.DELETE("/:id", handler.Cancel)

		leaves.GET("/team", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReadTeam), handler.GetTeam)
		leaves.GET("/all", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReadAll), handler.GetAll)
		leaves.PATCH("/:id/status", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionDecide), handler.Decide)
	}
}
