package user

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thunderstudio021/fitly/internal/logs"
)

// GetUser GET /api/admin/users/:id
func GetUser(c *gin.Context) {
	route := c.FullPath()
	currentUserID := c.GetString("user_id")
	id := c.Param("id")

	u, err := FindByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Usuário não encontrado"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar usuário"})
		}
		logs.LogJSON("WARN", "User not found", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": currentUserID,
			"extra":  fmt.Sprintf("User not found : %s", id),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": u.Public()})
}

// SearchUsers GET /api/admin/users?q=
func SearchUsers(c *gin.Context) {
	route := c.FullPath()
	query := strings.TrimSpace(c.Query("q"))

	if query != "" && len(query) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A busca deve conter pelo menos 2 caracteres"})
		logs.LogJSON("WARN", "The search must contain at least 2 characters", map[string]interface{}{
			"route": route,
			"extra": fmt.Sprintf("The search is : %s", query),
		})
		return
	}

	users, err := Search(query, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro na busca"})
		logs.LogJSON("ERROR", "Search error", map[string]interface{}{
			"error": err.Error(),
			"route": route,
			"extra": fmt.Sprintf("The search is : %s", query),
		})
		return
	}

	response := make([]map[string]interface{}, 0, len(users))
	for _, u := range users {
		response = append(response, u.Public())
	}

	c.JSON(http.StatusOK, gin.H{"users": response})
}

// SetRole PATCH /api/admin/users/:id/role
func SetRole(c *gin.Context) {
	route := c.FullPath()
	currentUserID := c.GetString("user_id")
	id := c.Param("id")

	var input struct {
		Role string `json:"role" binding:"required,oneof=admin user"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Papel inválido"})
		return
	}

	// Un admin ne peut pas se retirer ses propres droits
	if id == currentUserID && input.Role != RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Não é possível remover seu próprio acesso de administrador"})
		return
	}

	if err := UpdateRole(id, input.Role); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Usuário não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar papel"})
		logs.LogJSON("ERROR", "Role update error", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": currentUserID,
			"extra":  id,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Papel atualizado", "role": input.Role})
	logs.LogJSON("INFO", "User role updated", map[string]interface{}{
		"route":  route,
		"userID": currentUserID,
		"extra":  fmt.Sprintf("User %s is now %s", id, input.Role),
	})
}
