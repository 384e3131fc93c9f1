package middleware

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go-leavedesk/internal/domain"
	"go-leavedesk/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ActorDirectory resolves a token subject to a live directory record.
// Any package with this method fits; the user module's repository does.
type ActorDirectory interface {
	FindActor(ctx context.Context, id string) (domain.Actor, error)
}

// AuthMiddleware verifies the bearer token and re-resolves the actor
// from the directory on every request, so disabled accounts lose access
// immediately rather than when their token expires.
func AuthMiddleware(directory ActorDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token not found", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err != nil || !token.Valid {
			code := "INVALID_TOKEN"
			msg := "Invalid token"
			if err != nil && strings.Contains(err.Error(), "expired") {
				code = "TOKEN_EXPIRED"
				msg = "Token has expired"
			}
			response.Error(c, http.StatusUnauthorized, code, msg, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token claims", nil)
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "User ID not found in token", nil)
			c.Abort()
			return
		}

		actor, err := directory.FindActor(c.Request.Context(), userID)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not found", nil)
			c.Abort()
			return
		}

		if !actor.IsActive {
			response.Error(c, http.StatusUnauthorized, "ACCOUNT_DISABLED", "Your account has been disabled", nil)
			c.Abort()
			return
		}

		c.Set("user_id", actor.ID)
		c.Set("user_id_validated", actor.ID)
		c.Set("role", actor.Role)

		c.Next()
	}
}
