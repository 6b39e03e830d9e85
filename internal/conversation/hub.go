package conversation

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var activeSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "fitly_conversation_subscriptions",
	Help: "Number of live conversation subscriptions",
})

// Hub diffuse les snapshots aux abonnés d'une conversation.
// Un abonné lent ne bloque jamais Publish : seul le dernier snapshot est gardé.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscription est la poignée d'un abonnement, à fermer avec Close
type Subscription struct {
	hub            *Hub
	conversationID string
	ch             chan Snapshot
	once           sync.Once
}

func (h *Hub) Subscribe(conversationID string) *Subscription {
	sub := &Subscription{
		hub:            h,
		conversationID: conversationID,
		ch:             make(chan Snapshot, 1),
	}

	h.mu.Lock()
	if h.subs[conversationID] == nil {
		h.subs[conversationID] = make(map[*Subscription]struct{})
	}
	h.subs[conversationID][sub] = struct{}{}
	h.mu.Unlock()

	activeSubscriptions.Inc()
	return sub
}

func (h *Hub) Publish(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[snap.ConversationID] {
		select {
		case sub.ch <- snap:
		default:
			// Remplace le snapshot en attente par le plus récent
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- snap
		}
	}
}

// Active compte les abonnements ouverts sur une conversation
func (h *Hub) Active(conversationID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[conversationID])
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.subs[sub.conversationID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.conversationID)
		}
	}
	close(sub.ch)
}

func (s *Subscription) ConversationID() string {
	return s.conversationID
}

// Updates se ferme quand l'abonnement est fermé
func (s *Subscription) Updates() <-chan Snapshot {
	return s.ch
}

// Close est idempotent
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		activeSubscriptions.Dec()
	})
}
