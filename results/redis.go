package results

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Redis publishes every result as JSON on a pub/sub channel.
type Redis struct {
	client  *redis.Client
	channel string
}

// NewRedis connects to addr and verifies the server answers.
func NewRedis(ctx context.Context, addr, channel string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &Redis{client: client, channel: channel}, nil
}

func (r *Redis) Record(ctx context.Context, res MatchResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal match %s: %w", res.MatchID, err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("publish match %s: %w", res.MatchID, err)
	}
	return nil
}

func (r *Redis) Close(context.Context) error {
	return r.client.Close()
}
