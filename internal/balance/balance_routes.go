package balance

import (
	"github.com/gin-gonic/gin"

	"leavetracker/internal/middleware"
	"leavetracker/internal/rbac"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	balances := r.Group("/balances")
	balances.Use(middleware.AuthMiddleware())
	{
		balances.GET("/me", middleware.RBACAuthorize(rbacService, "balance", "read"), handler.GetMine)
	}
}
