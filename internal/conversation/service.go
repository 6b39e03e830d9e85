package conversation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thunderstudio021/fitly/internal/agent"
	"github.com/thunderstudio021/fitly/internal/logs"
)

var (
	ErrEmptyMessage        = errors.New("mensagem vazia")
	ErrWhatsAppUnavailable = errors.New("número WhatsApp não configurado")
)

// Replier génère la réponse de l'agent (agent.Client en production)
type Replier interface {
	Reply(ctx context.Context, agentName, conversationID string, history []agent.Turn) (string, error)
}

// Announcer propage un changement aux autres instances (RedisRelay)
type Announcer interface {
	Announce(ctx context.Context, conversationID string) error
}

type Options struct {
	AgentName      string
	WhatsAppNumber string
	ReplyTimeout   time.Duration
}

type Service struct {
	store   Store
	hub     *Hub
	replier Replier
	opts    Options

	relayMu sync.RWMutex
	relay   Announcer

	pending sync.WaitGroup
}

func NewService(store Store, hub *Hub, replier Replier, opts Options) *Service {
	if opts.ReplyTimeout <= 0 {
		opts.ReplyTimeout = 60 * time.Second
	}
	return &Service{store: store, hub: hub, replier: replier, opts: opts}
}

// SetRelay active la diffusion multi-instances, nil revient à la publication locale
func (s *Service) SetRelay(r Announcer) {
	s.relayMu.Lock()
	defer s.relayMu.Unlock()
	s.relay = r
}

func (s *Service) currentRelay() Announcer {
	s.relayMu.RLock()
	defer s.relayMu.RUnlock()
	return s.relay
}

func (s *Service) Hub() *Hub {
	return s.hub
}

func (s *Service) AgentName() string {
	return s.opts.AgentName
}

func (s *Service) List(ctx context.Context, userID string) ([]Conversation, error) {
	return s.store.ListConversations(ctx, userID, s.opts.AgentName)
}

func (s *Service) Create(ctx context.Context, userID, name string) (*Conversation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}

	now := time.Now()
	conv := &Conversation{
		ID:        uuid.New().String(),
		AgentName: s.opts.AgentName,
		CreatedBy: userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("création conversation: %w", err)
	}
	return conv, nil
}

// Get renvoie la conversation et son historique. Une conversation d'un autre
// utilisateur est traitée comme inexistante.
func (s *Service) Get(ctx context.Context, userID, id string) (*Conversation, []Message, error) {
	conv, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}

	messages, err := s.store.ListMessages(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("historique conversation: %w", err)
	}
	return conv, messages, nil
}

// AddMessage ajoute le message de l'utilisateur, publie le snapshot et
// déclenche la réponse de l'agent en arrière-plan.
func (s *Service) AddMessage(ctx context.Context, userID, id, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		ID:             newMessageID(),
		ConversationID: id,
		Role:           RoleUser,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("ajout message: %w", err)
	}
	s.notify(ctx, id)

	if s.replier == nil {
		return msg, nil
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		s.reply(*conv)
	}()

	return msg, nil
}

// Broadcast recharge l'historique et le pousse aux abonnés locaux
func (s *Service) Broadcast(ctx context.Context, id string) error {
	messages, err := s.store.ListMessages(ctx, id)
	if err != nil {
		return err
	}
	s.hub.Publish(Snapshot{ConversationID: id, Messages: messages})
	return nil
}

// Wait attend la fin des réponses de l'agent en cours
func (s *Service) Wait() {
	s.pending.Wait()
}

// WhatsAppConnectURL construit le lien wa.me qui ouvre une discussion avec l'agent
func (s *Service) WhatsAppConnectURL(agentName string) (string, error) {
	number := strings.TrimLeft(strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s.opts.WhatsAppNumber), "0")
	if number == "" {
		return "", ErrWhatsAppUnavailable
	}
	if agentName == "" {
		agentName = s.opts.AgentName
	}

	text := url.QueryEscape(fmt.Sprintf("Olá! Quero conversar com %s", agentName))
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, text), nil
}

func (s *Service) owned(ctx context.Context, userID, id string) (*Conversation, error) {
	conv, err := s.store.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv.CreatedBy != userID {
		return nil, ErrNotFound
	}
	return conv, nil
}

func (s *Service) notify(ctx context.Context, id string) {
	if relay := s.currentRelay(); relay != nil {
		err := relay.Announce(ctx, id)
		if err == nil {
			return
		}
		logs.LogJSON("WARN", "Conversation relay announce failed, publishing locally", map[string]interface{}{
			"error": err,
			"extra": id,
		})
	}

	if err := s.Broadcast(ctx, id); err != nil {
		logs.LogJSON("ERROR", "Conversation broadcast failed", map[string]interface{}{
			"error": err,
			"extra": id,
		})
	}
}

func (s *Service) reply(conv Conversation) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ReplyTimeout)
	defer cancel()

	messages, err := s.store.ListMessages(ctx, conv.ID)
	if err != nil {
		logs.LogJSON("ERROR", "Agent history load failed", map[string]interface{}{
			"error":  err,
			"userID": conv.CreatedBy,
			"extra":  conv.ID,
		})
		return
	}

	history := make([]agent.Turn, 0, len(messages))
	for _, m := range messages {
		history = append(history, agent.Turn{Role: m.Role, Content: m.Content})
	}

	content, err := s.replier.Reply(ctx, conv.AgentName, conv.ID, history)
	if err != nil {
		logs.LogJSON("ERROR", "Agent reply failed", map[string]interface{}{
			"error":  err,
			"userID": conv.CreatedBy,
			"extra":  conv.ID,
		})
		return
	}

	msg := &Message{
		ID:             newMessageID(),
		ConversationID: conv.ID,
		Role:           RoleAssistant,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		logs.LogJSON("ERROR", "Agent reply could not be saved", map[string]interface{}{
			"error":  err,
			"userID": conv.CreatedBy,
			"extra":  conv.ID,
		})
		return
	}
	s.notify(ctx, conv.ID)
}
