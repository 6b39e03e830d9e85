package conversation

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thunderstudio021/fitly/internal/logs"
)

// MessageScope est la clé de limitation des messages envoyés à l'agent
const MessageScope = "messages"

// Limiter est satisfait par middleware.Limiter
type Limiter interface {
	Allow(ctx context.Context, scope, clientID string) (remaining int, allowed bool, err error)
}

type Handler struct {
	svc     *Service
	refresh time.Duration
	limiter Limiter
}

// NewHandler accepte un limiter nil (pas de limite sur la WebSocket)
func NewHandler(svc *Service, refresh time.Duration, limiter Limiter) *Handler {
	return &Handler{svc: svc, refresh: refresh, limiter: limiter}
}

type createInput struct {
	Name string `json:"name"`
}

type messageInput struct {
	Content string `json:"content" binding:"required"`
}

// List GET /api/conversations
func (h *Handler) List(c *gin.Context) {
	userID := c.GetString("user_id")

	convs, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar conversas"})
		logs.LogJSON("ERROR", "Conversation list error", map[string]interface{}{
			"error":  err,
			"route":  c.FullPath(),
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": newResponses(convs)})
}

// Create POST /api/conversations
func (h *Handler) Create(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	var input createInput
	// Corps facultatif
	_ = c.ShouldBindJSON(&input)

	conv, err := h.svc.Create(c.Request.Context(), userID, input.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar nova conversa"})
		logs.LogJSON("ERROR", "Conversation creation error", map[string]interface{}{
			"error":  err,
			"route":  route,
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"conversation": NewResponse(*conv, nil)})
	logs.LogJSON("INFO", "Conversation created", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  conv.ID,
	})
}

// Get GET /api/conversations/:id
func (h *Handler) Get(c *gin.Context) {
	userID := c.GetString("user_id")
	id := c.Param("id")

	conv, messages, err := h.svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, err, "Erro ao carregar conversa")
		return
	}

	if messages == nil {
		messages = []Message{}
	}
	c.JSON(http.StatusOK, gin.H{"conversation": NewResponse(*conv, messages)})
}

// AddMessage POST /api/conversations/:id/messages
// La réponse de l'agent n'est pas renvoyée ici, elle arrive par l'abonnement.
func (h *Handler) AddMessage(c *gin.Context) {
	userID := c.GetString("user_id")
	id := c.Param("id")

	var input messageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Mensagem inválida"})
		return
	}

	msg, err := h.svc.AddMessage(c.Request.Context(), userID, id, input.Content)
	if err != nil {
		h.fail(c, err, "Erro ao enviar mensagem")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": msg})
}

// WhatsApp GET /api/assistant/whatsapp
func (h *Handler) WhatsApp(c *gin.Context) {
	link, err := h.svc.WhatsAppConnectURL(c.Query("agent"))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "WhatsApp indisponível"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link})
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversa não encontrada"})
	case errors.Is(err, ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Mensagem vazia"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
		logs.LogJSON("ERROR", "Conversation error", map[string]interface{}{
			"error":  err,
			"route":  c.FullPath(),
			"userID": c.GetString("user_id"),
			"extra":  c.Param("id"),
		})
	}
}
