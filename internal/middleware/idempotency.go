package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"leavetracker/internal/shared/apperror"
	"leavetracker/internal/shared/contextutil"
	"leavetracker/internal/shared/response"
)

const idempotencyLockTTL = 30 * time.Second

// Idempotency guards POST endpoints against double submission. A client
// sending the same Idempotency-Key while the first request is still in
// flight gets a conflict instead of a second workflow run. The lock expires
// on its own, so a crashed handler cannot wedge the key.
//
// The lock is scoped per user, so this must sit after AuthMiddleware in the
// chain; two users reusing the same client-chosen key must not collide.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		userID := contextutil.GetActorID(c.Request.Context())
		lockKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), userID, idempKey)

		isNew, err := rdb.SetNX(c.Request.Context(), lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			// Redis being down should not block writes; the workflow's own
			// compare-and-set transitions still hold.
			c.Next()
			return
		}
		if !isNew {
			response.Error(c, http.StatusConflict, apperror.CodeConflict, "a request with this idempotency key is already being processed", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
