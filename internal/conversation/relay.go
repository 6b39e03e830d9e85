package conversation

import (
	"context"

	"github.com/thunderstudio021/fitly/internal/logs"
)

const relayChannel = "fitly:conversations"

// Bus est satisfait par database.Redis
type Bus interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Listen(ctx context.Context, channel string) (<-chan string, error)
}

// RedisRelay diffuse les ids de conversation modifiées à toutes les instances
type RedisRelay struct {
	bus Bus
}

func NewRedisRelay(bus Bus) *RedisRelay {
	return &RedisRelay{bus: bus}
}

func (r *RedisRelay) Announce(ctx context.Context, conversationID string) error {
	return r.bus.Publish(ctx, relayChannel, conversationID)
}

// Start branche le relais sur svc une fois l'abonnement confirmé, puis republie
// localement chaque annonce reçue. Quand l'abonnement s'arrête, svc repasse en
// publication locale.
func (r *RedisRelay) Start(ctx context.Context, svc *Service) error {
	updates, err := r.bus.Listen(ctx, relayChannel)
	if err != nil {
		return err
	}
	svc.SetRelay(r)

	go func() {
		defer svc.SetRelay(nil)

		for id := range updates {
			if err := svc.Broadcast(ctx, id); err != nil {
				logs.LogJSON("ERROR", "Relayed conversation broadcast failed", map[string]interface{}{
					"error": err,
					"extra": id,
				})
			}
		}
		logs.LogJSON("WARN", "Conversation relay stopped, publishing locally", nil)
	}()
	return nil
}
