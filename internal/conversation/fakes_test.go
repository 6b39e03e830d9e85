package conversation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/thunderstudio021/fitly/internal/agent"
)

type memStore struct {
	mu        sync.Mutex
	convs     map[string]Conversation
	messages  map[string][]Message
	appendErr error
}

func newMemStore() *memStore {
	return &memStore{
		convs:    make(map[string]Conversation),
		messages: make(map[string][]Message),
	}
}

func (s *memStore) ListConversations(_ context.Context, userID, agentName string) ([]Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Conversation
	for _, c := range s.convs {
		if c.CreatedBy == userID && c.AgentName == agentName {
			out = append(out, c)
		}
	}
	// Même ordre que GormStore
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memStore) CreateConversation(_ context.Context, c *Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[c.ID] = *c
	return nil
}

func (s *memStore) GetConversation(_ context.Context, id string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.convs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *memStore) ListMessages(_ context.Context, conversationID string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages[conversationID]...), nil
}

func (s *memStore) AppendMessage(_ context.Context, m *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.appendErr != nil {
		return s.appendErr
	}
	s.messages[m.ConversationID] = append(s.messages[m.ConversationID], *m)
	c := s.convs[m.ConversationID]
	c.UpdatedAt = time.Now()
	s.convs[m.ConversationID] = c
	return nil
}

func (s *memStore) add(c Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[c.ID] = c
}

type fakeReplier struct {
	reply string
	err   error
	calls chan []agent.Turn
}

func (f *fakeReplier) Reply(_ context.Context, _, _ string, history []agent.Turn) (string, error) {
	if f.calls != nil {
		f.calls <- history
	}
	return f.reply, f.err
}

// recorder enregistre les événements émis par un Viewer
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) emit(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) count(eventType, conversationID string) int {
	n := 0
	for _, e := range r.snapshot() {
		if e.Type == eventType && e.ConversationID == conversationID {
			n++
		}
	}
	return n
}
