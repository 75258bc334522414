package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"leavetracker/internal/middleware"
	"leavetracker/internal/shared/contextutil"
)

// seedActor stands in for AuthMiddleware: it puts the authenticated user on
// the request context the way the real middleware does.
func seedActor(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Request = c.Request.WithContext(contextutil.WithActorID(c.Request.Context(), userID))
		c.Next()
	}
}

func idempotencyRouter(rdb *redis.Client, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/leaves", seedActor(userID), middleware.Idempotency(rdb), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func postWithKey(r *gin.Engine, key string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/leaves", nil)
	req.Header.Set("Idempotency-Key", key)
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency(t *testing.T) {
	t.Run("success lock key is scoped to the authenticated user", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()

		// The expectation pins the full key shape; a key missing the user
		// segment would fail ExpectationsWereMet.
		mock.ExpectSetNX("idemp:/leaves:user-a:checkout-1", "locked", 30*time.Second).SetVal(true)

		w := postWithKey(idempotencyRouter(rdb, "user-a"), "checkout-1")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success same key from another user takes its own lock", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()

		mock.ExpectSetNX("idemp:/leaves:user-b:checkout-1", "locked", 30*time.Second).SetVal(true)

		w := postWithKey(idempotencyRouter(rdb, "user-b"), "checkout-1")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative duplicate in-flight key conflicts", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()

		mock.ExpectSetNX("idemp:/leaves:user-a:checkout-1", "locked", 30*time.Second).SetVal(false)

		w := postWithKey(idempotencyRouter(rdb, "user-a"), "checkout-1")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success request without key passes through", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()

		r := idempotencyRouter(rdb, "user-a")
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/leaves", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
