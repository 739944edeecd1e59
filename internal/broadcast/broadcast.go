// Package broadcast carries "something changed" signals between clients
// viewing the same board. Signals have no payload; receivers refetch.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"openkanban/internal/notice"

	"github.com/redis/go-redis/v9"
)

// EventSync is the only event sent on a board channel.
const EventSync = "sync"

var ErrAlreadySubscribed = errors.New("channel already subscribed")

// ChannelName returns the pub/sub channel for a board.
func ChannelName(slug string) string {
	return "board-sync:" + slug
}

// Envelope is the wire form of a signal.
type Envelope struct {
	Event   string          `json:"event"`
	Sender  string          `json:"sender"`
	Payload json.RawMessage `json:"payload"`
}

// Channel publishes and receives sync signals for one board on behalf of one
// session. Failures never propagate to callers that ignore them; they raise a
// single warning notice until the channel works again.
type Channel struct {
	rdb      *redis.Client
	slug     string
	sender   string
	notifier notice.Notifier

	degraded atomic.Bool

	mu     sync.Mutex
	pubsub *redis.PubSub
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func New(rdb *redis.Client, slug, sender string, notifier notice.Notifier) *Channel {
	if notifier == nil {
		notifier = notice.Discard
	}
	return &Channel{rdb: rdb, slug: slug, sender: sender, notifier: notifier}
}

func (c *Channel) Sender() string {
	return c.sender
}

// Broadcast tells every other subscriber of the board to refetch.
func (c *Channel) Broadcast(ctx context.Context) error {
	data, err := json.Marshal(Envelope{Event: EventSync, Sender: c.sender, Payload: json.RawMessage("{}")})
	if err != nil {
		return fmt.Errorf("failed to encode sync event: %w", err)
	}
	if err := c.rdb.Publish(ctx, ChannelName(c.slug), data).Err(); err != nil {
		c.lost(err)
		return fmt.Errorf("failed to publish sync event: %w", err)
	}
	c.restored()
	return nil
}

// Subscribe starts delivering foreign sync signals to onSync until ctx is done
// or Close is called. onSync runs on the receiver goroutine.
func (c *Channel) Subscribe(ctx context.Context, onSync func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pubsub != nil {
		return ErrAlreadySubscribed
	}

	pubsub := c.rdb.Subscribe(ctx, ChannelName(c.slug))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		c.lost(err)
		return fmt.Errorf("failed to subscribe to board %q: %w", c.slug, err)
	}
	c.restored()

	subCtx, cancel := context.WithCancel(ctx)
	c.pubsub = pubsub
	c.cancel = cancel
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				c.restored()
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					continue
				}
				if env.Event != EventSync || env.Sender == c.sender {
					continue
				}
				onSync()
			}
		}
	}()
	return nil
}

// Close stops the receiver and waits for it to exit.
func (c *Channel) Close() error {
	c.once.Do(func() {
		c.mu.Lock()
		cancel, done := c.cancel, c.done
		c.mu.Unlock()
		if cancel == nil {
			return
		}
		cancel()
		<-done
	})
	return nil
}

func (c *Channel) lost(err error) {
	if c.degraded.CompareAndSwap(false, true) {
		log.Printf("⚠️ Realtime sync lost for board %q: %v", c.slug, err)
		c.notifier.Notify(notice.Warning("Realtime sync lost", "Live updates from other users may be delayed."))
	}
}

func (c *Channel) restored() {
	c.degraded.Store(false)
}
