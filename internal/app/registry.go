package app

import (
	"database/sql"

	"go-leavedesk/internal/auth"
	"go-leavedesk/internal/leave"
	"go-leavedesk/internal/messaging/kafka"
	"go-leavedesk/internal/middleware"
	"go-leavedesk/internal/policy"
	"go-leavedesk/internal/rbac"
	"go-leavedesk/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	userRepo := user.NewRepository(gormDB)
	policyRepo := policy.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	rbacService, err := rbac.NewService()
	if err != nil {
		return err
	}

	// --- Services ---
	authService := auth.NewService(userRepo)
	userService := user.NewService(db, userRepo)
	policyService := policy.NewService(db, policyRepo, rdb)
	leaveService := leave.NewServiceWithOutbox(db, leaveRepo, policyService, outboxRepo)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService)
	policyHandler := policy.NewHandler(policyService)
	leaveHandler := leave.NewHandlerWithRedis(leaveService, rdb)

	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, userRepo)
		user.RegisterRoutes(api, userHandler, userRepo, rbacService)
		policy.RegisterRoutes(api, policyHandler, userRepo, rbacService)
		leave.RegisterRoutes(api, leaveHandler, userRepo, rbacService, rdb)
	}

	return nil
}
