package redisad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"gezgi_admin/internal/adapters/observability"
	"gezgi_admin/internal/domain"
)

// Notices is a per-ui FIFO of flash notices; Pop drains it atomically.
type Notices struct {
	c   *redis.Client
	ttl time.Duration
}

func NewNotices(c *redis.Client, ttl time.Duration) *Notices {
	return &Notices{c: c, ttl: ttl}
}

func noticeKey(ui string) string { return keyPrefix + "notices:" + ui }

func (n *Notices) Push(ctx context.Context, ui string, x domain.Notice) error {
	b, err := json.Marshal(x)
	if err != nil {
		return err
	}
	key := noticeKey(ui)
	_, err = n.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, b)
		p.Expire(ctx, key, n.ttl)
		return nil
	})
	if err == nil {
		observability.ObserveState("notices", "push")
	}
	return err
}

func (n *Notices) Pop(ctx context.Context, ui string) ([]domain.Notice, error) {
	key := noticeKey(ui)
	var rng *redis.StringSliceCmd
	_, err := n.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		rng = p.LRange(ctx, key, 0, -1)
		p.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	raw := rng.Val()
	if len(raw) == 0 {
		return nil, nil
	}
	observability.ObserveState("notices", "pop")
	out := make([]domain.Notice, 0, len(raw))
	for _, s := range raw {
		var x domain.Notice
		if err := json.Unmarshal([]byte(s), &x); err != nil {
			log.Warn().Err(err).Str("ui", ui).Msg("dropping malformed notice")
			continue
		}
		out = append(out, x)
	}
	return out, nil
}
