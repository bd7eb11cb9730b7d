package events

import (
	"context"
	"encoding/json"
	"fmt"

	"propshare-backend/internal/domain"
	"propshare-backend/internal/ledger"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is used when no channel is configured.
const DefaultChannel = "propshare:events"

// RedisPublisher fans committed ledger events out on a Redis pub/sub channel
// and keeps the most recent ones in a capped list for late subscribers.
type RedisPublisher struct {
	Rdb     *redis.Client
	Channel string
	// Backlog caps the recent-events list; zero disables it.
	Backlog int64
}

var _ ledger.Publisher = (*RedisPublisher)(nil)

// RecentKey is the list holding the latest events of channel, newest first.
func RecentKey(channel string) string {
	return channel + ":recent"
}

func (p *RedisPublisher) channel() string {
	if p.Channel == "" {
		return DefaultChannel
	}
	return p.Channel
}

// Publish sends ev as JSON.
func (p *RedisPublisher) Publish(ctx context.Context, ev domain.LedgerEvent) error {
	if p == nil || p.Rdb == nil {
		return nil
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", ev.EventID, err)
	}
	ch := p.channel()
	if err := p.Rdb.Publish(ctx, ch, b).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", ch, err)
	}
	if p.Backlog > 0 {
		pipe := p.Rdb.TxPipeline()
		pipe.LPush(ctx, RecentKey(ch), b)
		pipe.LTrim(ctx, RecentKey(ch), 0, p.Backlog-1)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("record recent event: %w", err)
		}
	}
	return nil
}

// Recent returns up to limit of the latest published events, newest first.
func (p *RedisPublisher) Recent(ctx context.Context, limit int64) ([]domain.LedgerEvent, error) {
	if limit <= 0 {
		limit = p.Backlog
	}
	raw, err := p.Rdb.LRange(ctx, RecentKey(p.channel()), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.LedgerEvent, 0, len(raw))
	for _, s := range raw {
		var ev domain.LedgerEvent
		if err := json.Unmarshal([]byte(s), &ev); err != nil {
			return nil, fmt.Errorf("decode recent event: %w", err)
		}
		out = append(out, ev)
	}
	return out, nil
}
