package conversation

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	DefaultName = "Nova conversa"
)

// Conversation est un fil entre un utilisateur et un agent
type Conversation struct {
	ID        string    `gorm:"primaryKey"`
	AgentName string    `gorm:"index;not null"`
	CreatedBy string    `gorm:"index;not null"`
	Name      string    `gorm:"not null;default:'Nova conversa'"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// Message est immuable une fois ajouté. Son ID (ULID) fixe l'ordre.
type Message struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	ConversationID string    `gorm:"index;not null" json:"conversation_id"`
	Role           string    `gorm:"not null" json:"role"`
	Content        string    `gorm:"type:text" json:"content"`
	CreatedAt      time.Time `json:"created_date"`
}

func (Message) TableName() string {
	return "conversation_messages"
}

// Snapshot est la liste complète des messages, poussée à chaque changement
type Snapshot struct {
	ConversationID string    `json:"conversation_id"`
	Messages       []Message `json:"messages"`
}

type Metadata struct {
	Name string `json:"name"`
}

type Response struct {
	ID        string    `json:"id"`
	AgentName string    `json:"agent_name"`
	CreatedBy string    `json:"created_by"`
	Metadata  Metadata  `json:"metadata"`
	CreatedAt time.Time `json:"created_date"`
	UpdatedAt time.Time `json:"updated_date"`
	Messages  []Message `json:"messages,omitempty"`
}

func NewResponse(c Conversation, messages []Message) Response {
	return Response{
		ID:        c.ID,
		AgentName: c.AgentName,
		CreatedBy: c.CreatedBy,
		Metadata:  Metadata{Name: c.Name},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Messages:  messages,
	}
}

func newResponses(convs []Conversation) []Response {
	out := make([]Response, 0, len(convs))
	for _, c := range convs {
		out = append(out, NewResponse(c, nil))
	}
	return out
}
