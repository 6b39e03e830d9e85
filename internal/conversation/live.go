package conversation

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/thunderstudio021/fitly/internal/logs"
)

const (
	CommandOpen = "open"
	CommandNew  = "new"
	CommandSend = "send"

	writeWait = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Command est envoyée par le client sur la WebSocket
type Command struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	Content        string `json:"content,omitempty"`
	Name           string `json:"name,omitempty"`
}

// Live GET /api/assistant/ws : un Viewer par connexion
func (h *Handler) Live(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logs.LogJSON("WARN", "WebSocket upgrade failed", map[string]interface{}{
			"error":  err,
			"route":  route,
			"userID": userID,
		})
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	emit := func(e Event) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(e)
	}

	ctx, cancel := context.WithCancel(context.Background())
	viewer := NewViewer(h.svc, userID, emit, h.refresh)
	defer viewer.Close()
	defer cancel()

	viewer.Start(ctx)

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logs.LogJSON("WARN", "Assistant connection closed unexpectedly", map[string]interface{}{
					"error":  err,
					"route":  route,
					"userID": userID,
				})
			}
			return
		}
		h.dispatch(ctx, viewer, emit, cmd, userID)
	}
}

func (h *Handler) dispatch(ctx context.Context, viewer *Viewer, emit Emitter, cmd Command, userID string) {
	var err error
	switch cmd.Type {
	case CommandOpen:
		err = viewer.Open(ctx, cmd.ConversationID)
	case CommandNew:
		err = viewer.New(ctx, cmd.Name)
	case CommandSend:
		if !h.allowSend(ctx, userID) {
			_ = emit(Event{Type: EventError, ConversationID: viewer.CurrentID(), Error: "Muitas requisições, tente novamente em instantes"})
			return
		}
		viewer.Send(ctx, cmd.Content)
	default:
		logs.LogJSON("WARN", "Unknown assistant command", map[string]interface{}{
			"userID": userID,
			"extra":  cmd.Type,
		})
	}

	if err != nil {
		logs.LogJSON("ERROR", "Assistant command failed", map[string]interface{}{
			"error":  err,
			"userID": userID,
			"extra":  cmd.Type,
		})
	}
}

// allowSend applique aux messages WebSocket la même limite que le REST
func (h *Handler) allowSend(ctx context.Context, userID string) bool {
	if h.limiter == nil {
		return true
	}
	_, allowed, err := h.limiter.Allow(ctx, MessageScope, userID)
	if err != nil {
		// En cas d'erreur Redis, on laisse passer
		logs.LogJSON("WARN", "Rate limit counter unavailable", map[string]interface{}{
			"error":  err,
			"userID": userID,
		})
		return true
	}
	return allowed
}
