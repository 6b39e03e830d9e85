package conversation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/thunderstudio021/fitly/internal/logs"
)

const (
	EventMessages      = "messages"
	EventConversation  = "conversation"
	EventConversations = "conversations"
	EventError         = "error"
)

// Event est poussé au client de l'assistante
type Event struct {
	Type           string     `json:"type"`
	ConversationID string     `json:"conversation_id,omitempty"`
	Messages       []Message  `json:"messages,omitempty"`
	Conversation   *Response  `json:"conversation,omitempty"`
	Conversations  []Response `json:"conversations,omitempty"`
	Error          string     `json:"error,omitempty"`
}

type Emitter func(Event) error

// Viewer pilote l'écran de l'assistante pour une connexion : au plus un
// abonnement vivant, fermé avant d'en ouvrir un autre.
type Viewer struct {
	svc     *Service
	userID  string
	emit    Emitter
	refresh time.Duration

	mu       sync.Mutex
	current  *Subscription
	conv     *Conversation
	lastList string
	listSent bool
	closed   bool

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewViewer(svc *Service, userID string, emit Emitter, refresh time.Duration) *Viewer {
	return &Viewer{
		svc:     svc,
		userID:  userID,
		emit:    emit,
		refresh: refresh,
		stop:    make(chan struct{}),
	}
}

// Start envoie la liste initiale puis la rafraîchit à intervalle fixe
func (v *Viewer) Start(ctx context.Context) {
	v.refreshList(ctx)

	if v.refresh <= 0 {
		return
	}
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		ticker := time.NewTicker(v.refresh)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				v.refreshList(ctx)
			case <-v.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Open bascule sur une conversation existante
func (v *Viewer) Open(ctx context.Context, id string) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.release()

	// Abonnement avant la lecture de l'historique : aucune mise à jour ne se perd entre les deux
	sub := v.svc.Hub().Subscribe(id)
	conv, messages, err := v.svc.Get(ctx, v.userID, id)
	if err != nil {
		sub.Close()
		v.mu.Unlock()
		return err
	}

	v.current, v.conv = sub, conv
	resp := NewResponse(*conv, messages)
	v.send(Event{Type: EventConversation, ConversationID: id, Conversation: &resp, Messages: messages})
	v.forward(ctx, sub)
	v.mu.Unlock()

	v.refreshList(ctx)
	return nil
}

// New crée une conversation et s'y abonne
func (v *Viewer) New(ctx context.Context, name string) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.release()

	conv, err := v.svc.Create(ctx, v.userID, name)
	if err != nil {
		v.mu.Unlock()
		return err
	}

	sub := v.svc.Hub().Subscribe(conv.ID)
	v.current, v.conv = sub, conv
	resp := NewResponse(*conv, nil)
	v.send(Event{Type: EventConversation, ConversationID: conv.ID, Conversation: &resp})
	v.forward(ctx, sub)
	v.mu.Unlock()

	v.refreshList(ctx)
	return nil
}

// Send ajoute un message à la conversation ouverte. La réponse arrive par
// l'abonnement, les erreurs sont seulement journalisées.
func (v *Viewer) Send(ctx context.Context, content string) {
	v.mu.Lock()
	conv := v.conv
	v.mu.Unlock()

	if conv == nil {
		logs.LogJSON("WARN", "Message sent without an open conversation", map[string]interface{}{
			"userID": v.userID,
		})
		return
	}

	if _, err := v.svc.AddMessage(ctx, v.userID, conv.ID, content); err != nil {
		logs.LogJSON("ERROR", "Conversation send failed", map[string]interface{}{
			"error":  err,
			"userID": v.userID,
			"extra":  conv.ID,
		})
		return
	}
	v.refreshList(ctx)
}

// CurrentID renvoie l'id de la conversation ouverte
func (v *Viewer) CurrentID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.conv == nil {
		return ""
	}
	return v.conv.ID
}

// Close libère l'abonnement et arrête le rafraîchissement
func (v *Viewer) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.release()
	close(v.stop)
	v.mu.Unlock()

	v.wg.Wait()
}

// release ferme l'abonnement courant (v.mu tenu)
func (v *Viewer) release() {
	if v.current != nil {
		v.current.Close()
	}
	v.current, v.conv = nil, nil
}

// forward relaie les snapshots de sub tant qu'il reste l'abonnement courant (v.mu tenu)
func (v *Viewer) forward(ctx context.Context, sub *Subscription) {
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		for snap := range sub.Updates() {
			v.mu.Lock()
			if v.current != sub {
				v.mu.Unlock()
				return
			}
			v.send(Event{Type: EventMessages, ConversationID: snap.ConversationID, Messages: snap.Messages})
			v.mu.Unlock()

			v.refreshList(ctx)
		}
	}()
}

// refreshList n'émet la liste que si elle a changé depuis le dernier envoi
func (v *Viewer) refreshList(ctx context.Context) {
	convs, err := v.svc.List(ctx, v.userID)
	if err != nil {
		logs.LogJSON("ERROR", "Conversation list refresh failed", map[string]interface{}{
			"error":  err,
			"userID": v.userID,
		})
		return
	}

	signature := listSignature(convs)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || (v.listSent && signature == v.lastList) {
		return
	}
	v.lastList, v.listSent = signature, true
	v.send(Event{Type: EventConversations, Conversations: newResponses(convs)})
}

// send émet un événement (v.mu tenu), les erreurs sont journalisées
func (v *Viewer) send(e Event) {
	if err := v.emit(e); err != nil {
		logs.LogJSON("WARN", "Assistant event could not be delivered", map[string]interface{}{
			"error":  err,
			"userID": v.userID,
			"extra":  e.Type,
		})
	}
}

func listSignature(convs []Conversation) string {
	var b strings.Builder
	for _, c := range convs {
		b.WriteString(c.ID)
		b.WriteByte('|')
		b.WriteString(c.Name)
		b.WriteByte('|')
		b.WriteString(c.UpdatedAt.UTC().Format(time.RFC3339Nano))
		b.WriteByte(';')
	}
	return b.String()
}
