package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thunderstudio021/fitly/internal/logs"
	"github.com/thunderstudio021/fitly/internal/session"
)

// AdminOnlyMiddleware permet de protéger certaines routes aux admins uniquement
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		s := session.Current(c)

		if s.Anonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Usuário não autenticado"})
			logs.LogJSON("WARN", "Non-authenticated user tried admin route", map[string]interface{}{
				"route": route,
			})
			return
		}

		if !s.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Acesso reservado aos administradores"})
			logs.LogJSON("WARN", "Non-admin user blocked from admin route", map[string]interface{}{
				"route":  route,
				"userID": s.UserID(),
			})
			return
		}

		c.Next()
	}
}
