package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// OptionalAuthMiddleware renseigne user_id si un token valide est présent,
// sans jamais bloquer la requête
func OptionalAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		// Les navigateurs ne peuvent pas poser d'en-tête sur un WebSocket
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr = c.Query("access_token")
		}
		if tokenStr == "" {
			c.Next()
			return
		}

		if userID, err := parseUserID(tokenStr, jwtSecret); err == nil {
			c.Set("user_id", userID)
			c.Set("access_token", tokenStr)
		}

		c.Next()
	}
}

// RequireUserMiddleware exige un user_id posé par OptionalAuthMiddleware
func RequireUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_id") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token obrigatório"})
			return
		}
		c.Next()
	}
}
