package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"leavetracker/internal/domain"
	"leavetracker/internal/shared/apperror"
	"leavetracker/internal/shared/response"
)

// RBACService is a local interface so this package stays decoupled from the
// rbac package; anything with a matching Enforce fits.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing auth context", nil)
			c.Abort()
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			UserID:   userID,
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			response.Error(c, http.StatusInternalServerError, apperror.CodeInternalError, "authorization check failed", nil)
			c.Abort()
			return
		}

		if !allowed {
			response.Error(c, http.StatusForbidden, apperror.CodeForbidden,
				"you do not have permission to "+action+" "+resource, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
