package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const SessionUserKey = "user_id"

// RequireAuth rejects requests without a session user. InjectUser must run
// first.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "fail",
				"message": "authentication required",
			})
			return
		}
		c.Next()
	}
}

// Login stores the user id in the session.
func Login(c *gin.Context, userID uint) error {
	sess := sessions.Default(c)
	sess.Set(SessionUserKey, userID)
	return sess.Save()
}

// Logout clears the session and evicts the session user from the cache.
func Logout(c *gin.Context) error {
	forgetCurrentUser(c)
	sess := sessions.Default(c)
	sess.Clear()
	return sess.Save()
}
