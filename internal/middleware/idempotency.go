package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go-leavedesk/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Idempotency deduplicates POSTs carrying an Idempotency-Key header.
// A cached response is replayed as-is; an in-flight duplicate gets 409.
// The lock expires on its own in case the server dies mid-request.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		userID := c.GetString("user_id_validated")

		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), userID, idempKey)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(c.Request.Context(), cacheKey).Result()
		if err == nil {
			var cached any
			if unmarshalErr := json.Unmarshal([]byte(val), &cached); unmarshalErr == nil {
				response.Success(c, http.StatusOK, cached, nil)
				c.Abort()
				return
			}
			// Corrupt cache entry; drop it and process the request fresh.
			rdb.Del(c.Request.Context(), cacheKey)
		}

		isNew, _ := rdb.SetNX(c.Request.Context(), lockKey, "locked", 30*time.Second).Result()

		if !isNew {
			response.Error(c, http.StatusConflict, "PROCESSING",
				"Your request is still being processed, please wait", nil)
			c.Abort()
			return
		}

		// Handed to the handler so it can cache the response and drop
		// the lock once done.
		c.Set("idempotency_cache_key", cacheKey)
		c.Set("idempotency_lock_key", lockKey)

		c.Next()
	}
}
