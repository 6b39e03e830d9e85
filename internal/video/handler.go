package video

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/thunderstudio021/fitly/internal/logs"
	"github.com/thunderstudio021/fitly/internal/storage"
)

var validate = validator.New()

type CreateVideoInput struct {
	Title        string   `json:"title" validate:"required,max=200"`
	Description  string   `json:"description" validate:"max=2000"`
	Duration     string   `json:"duration" validate:"max=50"`
	Category     Category `json:"category"`
	Type         string   `json:"type" validate:"required,oneof=youtube upload"`
	YoutubeURL   string   `json:"youtube_url" validate:"omitempty,url"`
	VideoURL     string   `json:"video_url" validate:"omitempty,url"`
	ThumbnailURL string   `json:"thumbnail_url" validate:"omitempty,url"`
}

// toVideo valide l'entrée et construit la vidéo avec sa source
func (in CreateVideoInput) toVideo(createdBy string) (*Video, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.Category == "" {
		in.Category = CategoryOther
	}
	if !in.Category.Valid() {
		return nil, fmt.Errorf("catégorie inconnue: %q", in.Category)
	}

	var src Source
	switch in.Type {
	case TypeYouTube:
		if in.YoutubeURL == "" {
			return nil, fmt.Errorf("%w: youtube_url obligatoire", ErrInvalidSource)
		}
		if _, ok := ExtractYouTubeID(in.YoutubeURL); !ok {
			return nil, fmt.Errorf("%w: lien youtube non reconnu", ErrInvalidSource)
		}
		src = ExternalLink{Link: in.YoutubeURL}
	case TypeUpload:
		if in.VideoURL == "" {
			return nil, fmt.Errorf("%w: video_url obligatoire", ErrInvalidSource)
		}
		src = UploadedMedia{MediaURL: in.VideoURL}
	}

	v := &Video{
		ID:           uuid.New().String(),
		CreatedAt:    time.Now(),
		CreatedBy:    createdBy,
		Title:        in.Title,
		Description:  in.Description,
		Duration:     in.Duration,
		Category:     in.Category,
		ThumbnailURL: in.ThumbnailURL,
	}
	v.SetSource(src)
	return v, nil
}

type Response struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_date"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Duration      string    `json:"duration,omitempty"`
	Category      Category  `json:"category"`
	CategoryLabel string    `json:"category_label"`
	Type          string    `json:"type"`
	YoutubeURL    string    `json:"youtube_url,omitempty"`
	VideoURL      string    `json:"video_url,omitempty"`
	Thumbnail     string    `json:"thumbnail"`
	Playback      *Playback `json:"playback,omitempty"`
}

func NewResponse(v Video) Response {
	resp := Response{
		ID:            v.ID,
		CreatedAt:     v.CreatedAt,
		Title:         v.Title,
		Description:   v.Description,
		Duration:      v.Duration,
		Category:      v.Category,
		CategoryLabel: v.Category.Label(),
		Type:          v.Type,
		YoutubeURL:    v.YoutubeURL,
		VideoURL:      v.VideoURL,
		Thumbnail:     Thumbnail(v),
	}
	if p, err := ResolvePlayback(v); err == nil {
		resp.Playback = &p
	}
	return resp
}

// ListVideos GET /api/videos
func ListVideos(c *gin.Context) {
	route := c.FullPath()

	category := Category(c.Query("category"))
	if category != "" && !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Categoria inválida"})
		return
	}

	videos, err := List(category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar os vídeos"})
		logs.LogJSON("ERROR", "Video list error", map[string]interface{}{
			"error": err.Error(),
			"route": route,
		})
		return
	}

	response := make([]Response, 0, len(videos))
	for _, v := range videos {
		response = append(response, NewResponse(v))
	}

	c.JSON(http.StatusOK, gin.H{"videos": response})
}

// GetVideo GET /api/videos/:id
func GetVideo(c *gin.Context) {
	id := c.Param("id")

	v, err := FindByID(id)
	if err != nil {
		if err == ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vídeo não encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar o vídeo"})
		logs.LogJSON("ERROR", "Video fetch error", map[string]interface{}{
			"error": err.Error(),
			"route": c.FullPath(),
			"extra": id,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"video": NewResponse(*v)})
}

// CreateVideo POST /api/videos (admin)
func CreateVideo(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	var input CreateVideoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requisição inválida"})
		return
	}

	v, err := input.toVideo(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados do vídeo inválidos", "details": err.Error()})
		logs.LogJSON("WARN", "Invalid video input", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	if err := Create(v); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar vídeo"})
		logs.LogJSON("ERROR", "Video creation error", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"video": NewResponse(*v)})
	logs.LogJSON("INFO", "Video created", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  fmt.Sprintf("Video created : %s", v.ID),
	})
}

// UploadVideoFile POST /api/videos/upload (admin) : envoie le fichier et renvoie son URL
func UploadVideoFile(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	file, header, err := c.Request.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nenhum vídeo enviado"})
		return
	}
	defer file.Close()

	url, err := storage.SaveMultipart(c, file, header, storage.KindVideo, "videos")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Erro ao enviar o vídeo"})
		logs.LogJSON("ERROR", "Video upload error", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"file_url": url})
}
