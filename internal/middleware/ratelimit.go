package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thunderstudio021/fitly/internal/logs"
)

// Counter est satisfait par database.Redis
type Counter interface {
	IncrWithExpire(ctx context.Context, key string, expiration time.Duration) (int64, error)
}

// Limiter compte les requêtes par client sur une fenêtre fixe d'une minute.
// La minute fait partie de la clé, le compteur repart donc à zéro à chaque fenêtre.
type Limiter struct {
	counter   Counter
	perMinute int
	now       func() time.Time
}

// NewLimiter renvoie un limiteur inactif si counter est nil (Redis non configuré)
func NewLimiter(counter Counter, perMinute int) *Limiter {
	return &Limiter{counter: counter, perMinute: perMinute, now: time.Now}
}

func (l *Limiter) enabled() bool {
	return l != nil && l.counter != nil && l.perMinute > 0
}

// Allow incrémente le compteur de la minute courante pour ce client
func (l *Limiter) Allow(ctx context.Context, scope, clientID string) (remaining int, allowed bool, err error) {
	if !l.enabled() {
		return 0, true, nil
	}

	window := l.now().Unix() / 60
	key := fmt.Sprintf("ratelimit:%s:%s:%d", scope, clientID, window)

	count, err := l.counter.IncrWithExpire(ctx, key, time.Minute)
	if err != nil {
		return 0, true, err
	}

	remaining = l.perMinute - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, int(count) <= l.perMinute, nil
}

// retryAfter renvoie le nombre de secondes avant la fenêtre suivante
func (l *Limiter) retryAfter() int {
	return 60 - int(l.now().Unix()%60)
}

// RateLimitMiddleware limite le nombre de requêtes par utilisateur et par minute.
// Sans compteur, la limite est désactivée.
func RateLimitMiddleware(limiter *Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.enabled() {
			c.Next()
			return
		}

		clientID := c.GetString("user_id")
		if clientID == "" {
			clientID = c.ClientIP()
		}

		remaining, allowed, err := limiter.Allow(c.Request.Context(), scope, clientID)
		if err != nil {
			// En cas d'erreur Redis, on laisse passer
			logs.LogJSON("WARN", "Rate limit counter unavailable", map[string]interface{}{
				"error": err.Error(),
				"route": c.FullPath(),
			})
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.perMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(limiter.retryAfter()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Muitas requisições, tente novamente em instantes"})
			return
		}

		c.Next()
	}
}
