package conversation

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var e Event
	require.NoError(t, conn.ReadJSON(&e))
	return e
}

// countingLimiter autorise les max premiers messages
type countingLimiter struct {
	mu     sync.Mutex
	max    int
	calls  int
	scopes []string
}

func (l *countingLimiter) Allow(_ context.Context, scope, _ string) (int, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	l.scopes = append(l.scopes, scope)
	return l.max - l.calls, l.calls <= l.max, nil
}

func (l *countingLimiter) seen() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.scopes...)
}

func dialLive(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Next()
	})
	r.GET("/ws", h.Live)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestLiveSendIsRateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	store.add(Conversation{ID: "conv-a", CreatedBy: "user-1", AgentName: "assistente_nutricao", Name: "Almoço"})
	svc := newTestService(store, nil)
	limiter := &countingLimiter{max: 1}
	conn := dialLive(t, NewHandler(svc, time.Hour, limiter))

	assert.Equal(t, EventConversations, readEvent(t, conn).Type)
	require.NoError(t, conn.WriteJSON(Command{Type: CommandOpen, ConversationID: "conv-a"}))
	assert.Equal(t, EventConversation, readEvent(t, conn).Type)

	require.NoError(t, conn.WriteJSON(Command{Type: CommandSend, Content: "primeira"}))
	require.NoError(t, conn.WriteJSON(Command{Type: CommandSend, Content: "segunda"}))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		e := readEvent(t, conn)
		if e.Type != EventError {
			continue
		}
		assert.Equal(t, "conv-a", e.ConversationID)
		assert.NotEmpty(t, e.Error)

		messages, err := store.ListMessages(context.Background(), "conv-a")
		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, "primeira", messages[0].Content)
		assert.Equal(t, []string{MessageScope, MessageScope}, limiter.seen())
		return
	}
	t.Fatal("rate limit error was not delivered")
}

func TestLiveAssistant(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	store.add(Conversation{ID: "conv-a", CreatedBy: "user-1", AgentName: "assistente_nutricao", Name: "Almoço"})
	svc := newTestService(store, &fakeReplier{reply: "Arroz, feijão e salada."})
	h := NewHandler(svc, time.Hour, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Next()
	})
	r.GET("/ws", h.Live)

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readEvent(t, conn)
	assert.Equal(t, EventConversations, first.Type)
	require.Len(t, first.Conversations, 1)

	require.NoError(t, conn.WriteJSON(Command{Type: CommandOpen, ConversationID: "conv-a"}))
	opened := readEvent(t, conn)
	assert.Equal(t, EventConversation, opened.Type)
	assert.Equal(t, "conv-a", opened.ConversationID)

	require.NoError(t, conn.WriteJSON(Command{Type: CommandSend, Content: "O que almoçar?"}))

	// Attend le snapshot contenant la réponse de l'agent
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		e := readEvent(t, conn)
		if e.Type == EventMessages && len(e.Messages) == 2 {
			assert.Equal(t, RoleAssistant, e.Messages[1].Role)
			assert.Equal(t, "Arroz, feijão e salada.", e.Messages[1].Content)
			return
		}
	}
	t.Fatal("assistant reply was not delivered")
}
