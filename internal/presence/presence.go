// Package presence counts the sessions currently viewing a board.
//
// Each session keeps a timestamped entry in a per-board redis hash and
// refreshes it on a heartbeat. Entries older than the TTL are pruned whenever
// membership is recounted. Presence is best effort: errors are logged and
// never returned.
package presence

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 30 * time.Second

const (
	eventJoin      = "join"
	eventLeave     = "leave"
	eventHeartbeat = "heartbeat"
)

func ChannelName(slug string) string {
	return "board:" + slug
}

func HashKey(slug string) string {
	return "board:" + slug + ":presence"
}

// State is the value tracked for each session.
type State struct {
	OnlineAt string `json:"online_at"`
}

type event struct {
	Event string `json:"event"`
	Key   string `json:"key"`
}

type Tracker struct {
	rdb  *redis.Client
	slug string
	key  string
	ttl  time.Duration
	now  func() time.Time

	count    atomic.Int64
	onChange atomic.Pointer[func(int)]

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Tracker)

func WithTTL(ttl time.Duration) Option {
	return func(t *Tracker) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithKey sets the session key; by default a random UUID is used.
func WithKey(key string) Option {
	return func(t *Tracker) { t.key = key }
}

func New(rdb *redis.Client, slug string, opts ...Option) *Tracker {
	t := &Tracker{
		rdb:  rdb,
		slug: slug,
		key:  uuid.NewString(),
		ttl:  DefaultTTL,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.count.Store(1)
	return t
}

func (t *Tracker) Key() string {
	return t.key
}

// Count returns the last known number of viewers, at least 1.
func (t *Tracker) Count() int {
	return int(t.count.Load())
}

// OnChange installs the callback fired after every recount.
func (t *Tracker) OnChange(fn func(int)) {
	t.onChange.Store(&fn)
}

// Join announces this session and keeps it alive until Leave or until ctx is
// done.
func (t *Tracker) Join(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}

	pubsub := t.rdb.Subscribe(ctx, ChannelName(t.slug))
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Printf("⚠️ Presence unavailable for board %q: %v", t.slug, err)
		_ = pubsub.Close()
		pubsub = nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})

	t.track(ctx)
	t.publish(ctx, eventJoin)
	t.recount(ctx)

	go t.loop(loopCtx, pubsub)
}

// Leave removes this session and stops the heartbeat.
func (t *Tracker) Leave(ctx context.Context) {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done

	if err := t.rdb.HDel(ctx, HashKey(t.slug), t.key).Err(); err != nil {
		log.Printf("⚠️ Failed to untrack presence on board %q: %v", t.slug, err)
	}
	t.publish(ctx, eventLeave)
}

func (t *Tracker) loop(ctx context.Context, pubsub *redis.PubSub) {
	defer close(t.done)

	var msgs <-chan *redis.Message
	if pubsub != nil {
		defer pubsub.Close()
		msgs = pubsub.Channel()
	}

	interval := t.ttl / 3
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.track(ctx)
			t.publish(ctx, eventHeartbeat)
		case _, ok := <-msgs:
			if !ok {
				msgs = nil
				continue
			}
			t.recount(ctx)
		}
	}
}

func (t *Tracker) track(ctx context.Context) {
	data, _ := json.Marshal(State{OnlineAt: t.now().UTC().Format(time.RFC3339)})
	if err := t.rdb.HSet(ctx, HashKey(t.slug), t.key, data).Err(); err != nil {
		log.Printf("⚠️ Failed to track presence on board %q: %v", t.slug, err)
	}
}

func (t *Tracker) publish(ctx context.Context, name string) {
	data, _ := json.Marshal(event{Event: name, Key: t.key})
	if err := t.rdb.Publish(ctx, ChannelName(t.slug), data).Err(); err != nil {
		log.Printf("⚠️ Failed to publish presence on board %q: %v", t.slug, err)
	}
}

// recount reads the membership, prunes stale entries and notifies.
func (t *Tracker) recount(ctx context.Context) {
	entries, err := t.rdb.HGetAll(ctx, HashKey(t.slug)).Result()
	if err != nil {
		log.Printf("⚠️ Failed to read presence on board %q: %v", t.slug, err)
		return
	}

	cutoff := t.now().Add(-t.ttl)
	live := 0
	var stale []string
	for key, raw := range entries {
		var st State
		if err := json.Unmarshal([]byte(raw), &st); err != nil {
			stale = append(stale, key)
			continue
		}
		at, err := time.Parse(time.RFC3339, st.OnlineAt)
		if err != nil || at.Before(cutoff) {
			stale = append(stale, key)
			continue
		}
		live++
	}
	if len(stale) > 0 {
		if err := t.rdb.HDel(ctx, HashKey(t.slug), stale...).Err(); err != nil {
			log.Printf("⚠️ Failed to prune presence on board %q: %v", t.slug, err)
		}
	}

	t.count.Store(int64(max(live, 1)))
	if fn := t.onChange.Load(); fn != nil && *fn != nil {
		(*fn)(t.Count())
	}
}
