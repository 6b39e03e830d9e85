package conversation

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("conversa não encontrada")

// Store est la persistance des conversations
type Store interface {
	ListConversations(ctx context.Context, userID, agentName string) ([]Conversation, error)
	CreateConversation(ctx context.Context, c *Conversation) error
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]Message, error)
	AppendMessage(ctx context.Context, m *Message) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ListConversations : les plus récemment actives d'abord, ordre stable à égalité
func (s *GormStore) ListConversations(ctx context.Context, userID, agentName string) ([]Conversation, error) {
	var convs []Conversation
	err := s.db.WithContext(ctx).
		Where("created_by = ? AND agent_name = ?", userID, agentName).
		Order("updated_at DESC").
		Order("id ASC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

func (s *GormStore) CreateConversation(ctx context.Context, c *Conversation) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *GormStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var c Conversation
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListMessages renvoie les messages dans l'ordre attribué par le serveur
func (s *GormStore) ListMessages(ctx context.Context, conversationID string) ([]Message, error) {
	var messages []Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// AppendMessage insère le message et rafraîchit updated_at de la conversation
func (s *GormStore) AppendMessage(ctx context.Context, m *Message) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&Conversation{}).
			Where("id = ?", m.ConversationID).
			Update("updated_at", time.Now()).Error
	})
}
