package app

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"leavetracker/internal/audit"
	"leavetracker/internal/balance"
	"leavetracker/internal/directory"
	"leavetracker/internal/leave"
	"leavetracker/internal/messaging/kafka"
	"leavetracker/internal/middleware"
	"leavetracker/internal/policy"
	"leavetracker/internal/rbac"
	"leavetracker/internal/rbac/infra"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	minAdvanceNoticeDays int,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	directoryRepo := directory.NewRepository(gormDB)
	policyRepo := policy.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB, db)
	applicationRepo := leave.NewApplicationRepository(gormDB, db)
	stepRepo := leave.NewStepRepository(gormDB, db)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	directoryService := directory.NewService(directoryRepo)
	policyService := policy.NewService(policyRepo, minAdvanceNoticeDays)
	balanceService := balance.NewService(db, balanceRepo, policyService)
	chainResolver := leave.NewChainResolver(directoryService, policyService)
	auditSink := audit.NewZapSink()
	leaveService := leave.NewServiceWithRedis(
		db,
		applicationRepo,
		stepRepo,
		balanceRepo,
		outboxRepo,
		chainResolver,
		directoryService,
		policyService,
		auditSink,
		rdb,
	)

	// --- Handlers ---
	balanceHandler := balance.NewHandler(balanceService)
	leaveHandler := leave.NewHandler(leaveService)

	// --- Routes Registration ---
	router.Use(middleware.RequestContext(zap.L()))

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitByIP(rate.Limit(20), 40))
	{
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb)
		balance.RegisterRoutes(api, balanceHandler, rbacService)
	}

	return nil
}
