package middleware_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-leavedesk/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type idempEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error map[string]any  `json:"error"`
}

func newIdempotencyRouter(rdb *redis.Client, userID string, handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.POST("/leaves",
		func(c *gin.Context) {
			c.Set("user_id_validated", userID)
			c.Next()
		},
		middleware.Idempotency(rdb),
		handler,
	)
	return r
}

func performIdempotentPost(r *gin.Engine, key string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/leaves", nil)
	req.Header.Set("Idempotency-Key", key)
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency(t *testing.T) {
	userID := "b7e6d6a0-0000-0000-0000-000000000001"
	key := "req-1"
	cacheKey := fmt.Sprintf("idemp:%s:%s:%s", "/leaves", userID, key)
	lockKey := cacheKey + ":lock"

	t.Run("cached response replays in the standard envelope", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		redisMock.ExpectGet(cacheKey).SetVal(`{"id":"abc","status":"pending"}`)

		r := newIdempotencyRouter(rdb, userID, func(c *gin.Context) {
			t.Fatal("handler must not run on a cached replay")
		})

		w := performIdempotentPost(r, key)

		assert.Equal(t, http.StatusOK, w.Code)

		var env idempEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.Ok)
		assert.Nil(t, env.Error)

		var data map[string]any
		assert.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "abc", data["id"])
		assert.Equal(t, "pending", data["status"])

		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("corrupt cache entry is dropped and the request reprocessed", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		redisMock.ExpectGet(cacheKey).SetVal(`{broken`)
		redisMock.ExpectDel(cacheKey).SetVal(1)
		redisMock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(true)

		handled := false
		r := newIdempotencyRouter(rdb, userID, func(c *gin.Context) {
			handled = true
			c.JSON(http.StatusCreated, gin.H{"ok": true})
		})

		w := performIdempotentPost(r, key)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, handled)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("in-flight duplicate gets a conflict in the standard envelope", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		redisMock.ExpectGet(cacheKey).RedisNil()
		redisMock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(false)

		r := newIdempotencyRouter(rdb, userID, func(c *gin.Context) {
			t.Fatal("handler must not run while a duplicate is in flight")
		})

		w := performIdempotentPost(r, key)

		assert.Equal(t, http.StatusConflict, w.Code)

		var env idempEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.False(t, env.Ok)
		assert.Equal(t, "PROCESSING", env.Error["code"])

		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("request without a key passes straight through", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()

		handled := false
		r := newIdempotencyRouter(rdb, userID, func(c *gin.Context) {
			handled = true
			c.JSON(http.StatusCreated, gin.H{"ok": true})
		})

		w := performIdempotentPost(r, "")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, handled)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})
}
