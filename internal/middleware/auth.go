package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token obrigatório"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := parseUserID(tokenStr, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token inválido"})
			return
		}

		c.Set("user_id", userID)
		c.Set("access_token", tokenStr)
		c.Next()
	}
}

// parseUserID valide le JWT Supabase (HS256) et retourne le claim "sub"
func parseUserID(tokenStr, jwtSecret string) (string, error) {
	if jwtSecret == "" {
		return "", fmt.Errorf("secret JWT non configuré")
	}
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		// Vérifie que Supabase a bien utilisé HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("signature invalide")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("token invalide: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("token invalide")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("claims illisibles")
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID manquant")
	}
	return userID, nil
}
