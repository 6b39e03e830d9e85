package storage

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thunderstudio021/fitly/internal/logs"
)

// UploadFile POST /api/integrations/upload
func UploadFile(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nenhum arquivo enviado"})
		return
	}
	defer file.Close()

	url, err := SaveMultipart(c, file, header, KindAny, "uploads")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Erro ao enviar arquivo"})
		logs.LogJSON("ERROR", "File upload failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"file_url": url})
	logs.LogJSON("INFO", "File uploaded", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  url,
	})
}

// SaveMultipart valide l'extension puis envoie le fichier sous un nom unique
func SaveMultipart(c *gin.Context, file multipart.File, header *multipart.FileHeader, kind Kind, folder string) (string, error) {
	ext, err := CheckExtension(header.Filename, kind)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	contentType := header.Header.Get("Content-Type")

	return Upload(c.Request.Context(), file, filename, contentType, folder)
}
