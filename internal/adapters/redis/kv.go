package redisad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"gezgi_admin/internal/adapters/observability"
)

// Client opens the redis connection shared by the state and notice stores.
func Client(addr, pass string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

// kv is a JSON value store with a sliding TTL. name labels its metrics.
type kv struct {
	c    *redis.Client
	name string
	ttl  time.Duration
}

func (r kv) get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		observability.ObserveState(r.name, "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveState(r.name, "hit")
	return true, json.Unmarshal(v, dst)
}

func (r kv) set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveState(r.name, "set")
	return r.c.Set(ctx, key, b, r.ttl).Err()
}

func (r kv) del(ctx context.Context, key string) error {
	observability.ObserveState(r.name, "del")
	return r.c.Del(ctx, key).Err()
}
