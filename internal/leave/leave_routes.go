package leave

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"leavetracker/internal/middleware"
	"leavetracker/internal/rbac"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	redisClient *redis.Client,
) {
	// Idempotency keys are scoped per user, so the lock must run inside the
	// authenticated group, after AuthMiddleware has seeded the actor.
	idempotency := func(c *gin.Context) { c.Next() }
	if redisClient != nil {
		idempotency = middleware.Idempotency(redisClient)
	}

	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.POST("",
			middleware.RateLimitByUser(1, 5),
			idempotency,
			middleware.RBACAuthorize(rbacService, "leave", "create"),
			handler.Submit,
		)
		leaves.GET("", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.ListMine)
		leaves.GET("/pending-approvals", middleware.RBACAuthorize(rbacService, "leave", "approve"), handler.PendingApprovals)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetByID)
		leaves.POST("/:id/approve",
			middleware.RateLimitByUser(2, 5),
			idempotency,
			middleware.RBACAuthorize(rbacService, "leave", "approve"),
			handler.Approve,
		)
		leaves.POST("/:id/reject",
			middleware.RateLimitByUser(2, 5),
			idempotency,
			middleware.RBACAuthorize(rbacService, "leave", "approve"),
			handler.Reject,
		)
		leaves.POST("/:id/cancel",
			middleware.RateLimitByUser(2, 5),
			idempotency,
			middleware.RBACAuthorize(rbacService, "leave", "read"),
			handler.Cancel,
		)
		leaves.POST("/:id/revoke",
			middleware.RateLimitByUser(0.5, 2),
			idempotency,
			middleware.RBACAuthorize(rbacService, "leave", "revoke"),
			handler.Revoke,
		)
	}
}
