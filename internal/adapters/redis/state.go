package redisad

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gezgi_admin/internal/domain"
)

const keyPrefix = "gezgi:"

var (
	_ domain.StateStore = (*States)(nil)
	_ domain.Notices    = (*Notices)(nil)
)

// States keeps accordion state per (ui session, list). Every write
// refreshes the TTL, so abandoned sessions expire on their own.
type States struct{ kv kv }

func NewStates(c *redis.Client, ttl time.Duration) *States {
	return &States{kv: kv{c: c, name: "list_state", ttl: ttl}}
}

func stateKey(ui, list string) string { return keyPrefix + "state:" + ui + ":" + list }

func (s *States) Load(ctx context.Context, ui, list string) (domain.ListState, error) {
	var st domain.ListState
	if _, err := s.kv.get(ctx, stateKey(ui, list), &st); err != nil {
		return domain.ListState{}, fmt.Errorf("load state %s: %w", list, err)
	}
	return st, nil
}

func (s *States) Save(ctx context.Context, ui, list string, st domain.ListState) error {
	if err := s.kv.set(ctx, stateKey(ui, list), st); err != nil {
		return fmt.Errorf("save state %s: %w", list, err)
	}
	return nil
}

func (s *States) Clear(ctx context.Context, ui, list string) error {
	return s.kv.del(ctx, stateKey(ui, list))
}
