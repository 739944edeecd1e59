// Package session runs one client's view of a board: the state store, the
// sync channel that keeps it fresh and the presence tracker.
package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"openkanban/internal/board"
	"openkanban/internal/broadcast"
	"openkanban/internal/gateway"
	"openkanban/internal/presence"
	"openkanban/internal/transfer"
)

type Session struct {
	gw       gateway.Gateway
	store    *board.Store
	channel  *broadcast.Channel
	presence *presence.Tracker
}

func New(gw gateway.Gateway, store *board.Store, channel *broadcast.Channel, tracker *presence.Tracker) *Session {
	return &Session{gw: gw, store: store, channel: channel, presence: tracker}
}

func (s *Session) Store() *board.Store {
	return s.store
}

// Viewers returns the number of sessions viewing the board, at least 1.
func (s *Session) Viewers() int {
	if s.presence == nil {
		return 1
	}
	return s.presence.Count()
}

// Start loads the board and joins the realtime channels. Only a failed load is
// returned; realtime problems degrade to notices.
func (s *Session) Start(ctx context.Context) error {
	if err := s.store.Load(ctx); err != nil {
		return fmt.Errorf("board unavailable: %w", err)
	}

	bg := context.WithoutCancel(ctx)
	s.store.SetOnMutation(func() {
		_ = s.channel.Broadcast(bg)
	})
	if err := s.channel.Subscribe(ctx, func() {
		if err := s.store.Refresh(bg); err != nil {
			log.Printf("⚠️ Refresh of %q after sync failed: %v", s.store.Slug(), err)
		}
	}); err != nil {
		log.Printf("⚠️ %v", err)
	}
	if s.presence != nil {
		s.presence.Join(ctx)
	}
	return nil
}

// Close leaves the board. Mutations after Close are no longer broadcast.
func (s *Session) Close(ctx context.Context) error {
	s.store.SetOnMutation(nil)
	if s.presence != nil {
		s.presence.Leave(ctx)
	}
	return s.channel.Close()
}

// Export captures the current state as an export document.
func (s *Session) Export(now time.Time) transfer.Document {
	return transfer.Export(s.store.Slug(), s.store.Snapshot().WireColumns(), now)
}

// Import replaces the board with doc, adopts the result and tells every other
// viewer to refetch.
func (s *Session) Import(ctx context.Context, doc *transfer.Document) error {
	full, err := transfer.Import(ctx, s.gw, s.store.Slug(), doc)
	if err != nil {
		return err
	}
	s.store.ReplaceState(&full.Board, full.Columns)
	_ = s.channel.Broadcast(ctx)
	return nil
}
