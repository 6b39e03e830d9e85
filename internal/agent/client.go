// Package agent appelle le point d'accès externe qui génère les réponses de l'assistante.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	ErrNotConfigured = errors.New("agent non configuré")
	ErrEmptyReply    = errors.New("réponse vide de l'agent")
)

// Turn est un message de l'historique envoyé à l'agent
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type replyRequest struct {
	AgentName      string `json:"agent_name"`
	ConversationID string `json:"conversation_id"`
	Messages       []Turn `json:"messages"`
}

type replyResponse struct {
	Content string `json:"content"`
}

type Client struct {
	http *resty.Client
	url  string
}

func New(url, apiKey string, timeout time.Duration) *Client {
	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetRetryCount(1).
		SetRetryWaitTime(500 * time.Millisecond)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &Client{http: client, url: url}
}

// Reply envoie l'historique complet et renvoie le texte de la réponse
func (c *Client) Reply(ctx context.Context, agentName, conversationID string, history []Turn) (string, error) {
	if c == nil || c.url == "" {
		return "", ErrNotConfigured
	}

	var out replyResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(replyRequest{AgentName: agentName, ConversationID: conversationID, Messages: history}).
		SetResult(&out).
		Post(c.url)
	if err != nil {
		return "", fmt.Errorf("appel agent: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("appel agent: statut %d: %s", resp.StatusCode(), resp.String())
	}

	content := strings.TrimSpace(out.Content)
	if content == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}
