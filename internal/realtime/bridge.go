package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"openkanban/internal/broadcast"

	"github.com/redis/go-redis/v9"
)

// ServerSender marks signals published by the API itself, e.g. after an import.
const ServerSender = "server"

// Bridge connects the hub to the redis sync channels shared with every other
// client of a board.
type Bridge struct {
	rdb     *redis.Client
	metrics *Metrics
}

func NewBridge(rdb *redis.Client, metrics *Metrics) *Bridge {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Bridge{rdb: rdb, metrics: metrics}
}

// Publish sends a sync envelope for slug on behalf of sender.
func (b *Bridge) Publish(ctx context.Context, slug, sender string) error {
	data, err := json.Marshal(broadcast.Envelope{Event: broadcast.EventSync, Sender: sender, Payload: json.RawMessage("{}")})
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, broadcast.ChannelName(slug), data).Err(); err != nil {
		b.metrics.Signals.WithLabelValues("publish_error").Inc()
		return fmt.Errorf("failed to publish sync for %q: %w", slug, err)
	}
	b.metrics.Signals.WithLabelValues("published").Inc()
	return nil
}

// PublishSync announces a change made by the API itself.
func (b *Bridge) PublishSync(ctx context.Context, slug string) error {
	return b.Publish(ctx, slug, ServerSender)
}

// Run forwards every sync signal from redis to the hub until ctx is done.
func (b *Bridge) Run(ctx context.Context, hub *Hub) error {
	pattern := broadcast.ChannelName("*")
	pubsub := b.rdb.PSubscribe(ctx, pattern)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", pattern, err)
	}
	log.Printf("✅ Realtime bridge listening on %s", pattern)

	prefix := broadcast.ChannelName("")
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env broadcast.Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil || env.Event != broadcast.EventSync {
				b.metrics.Signals.WithLabelValues("ignored").Inc()
				continue
			}
			b.metrics.Signals.WithLabelValues("received").Inc()
			hub.Deliver(strings.TrimPrefix(msg.Channel, prefix), env.Sender)
		}
	}
}
