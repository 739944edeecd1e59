// Package board holds the client-side state of one board and keeps it in sync
// with the persistent store.
//
// Every edit is applied to memory first and then written through the gateway.
// When the write fails the store rolls back to the snapshot taken before the
// edit and reports the failure through its notifier.
package board

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"openkanban/internal/gateway"
	"openkanban/internal/model"
	"openkanban/internal/notice"

	"github.com/google/uuid"
)

type Store struct {
	slug     string
	gw       gateway.Gateway
	notifier notice.Notifier
	now      func() time.Time

	mu        sync.Mutex
	lifecycle Lifecycle
	columns   []Column
	// recovered maps local column ids to the remote ids they were created
	// under, so restoring an older snapshot keeps the remote id.
	recovered map[ColumnID]uuid.UUID

	onMutation atomic.Pointer[func()]
	onChange   atomic.Pointer[func(Snapshot)]
}

type Option func(*Store)

func WithNotifier(n notice.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns a store for slug holding the empty template: one local
// "To Do" column, not yet persisted. Call Load to fetch the remote state.
func NewStore(slug string, gw gateway.Gateway, opts ...Option) *Store {
	s := &Store{
		slug:      slug,
		gw:        gw,
		notifier:  notice.Discard,
		now:       time.Now,
		recovered: make(map[ColumnID]uuid.UUID),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetLocked()
	return s
}

func (s *Store) Slug() string {
	return s.slug
}

// SetOnMutation installs the callback fired after every successful remote
// write. It replaces any previous callback and is safe to call at any time.
func (s *Store) SetOnMutation(fn func()) {
	s.onMutation.Store(&fn)
}

// OnChange installs an observer called with a fresh snapshot after each state
// change, including rollbacks.
func (s *Store) OnChange(fn func(Snapshot)) {
	s.onChange.Store(&fn)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Columns() []Column {
	return s.Snapshot().Columns
}

func (s *Store) Lifecycle() Lifecycle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lifecycle
}

// Board returns the persisted board, if any.
func (s *Store) Board() (model.Board, bool) {
	return s.Snapshot().Board()
}

// Load fetches the full board once. An absent board leaves the local template
// in place.
func (s *Store) Load(ctx context.Context) error {
	full, err := s.gw.GetFullBoard(ctx, s.slug)
	if err != nil {
		return fmt.Errorf("failed to load board %q: %w", s.slug, err)
	}
	if full == nil {
		s.ReplaceState(nil, nil)
		return nil
	}
	s.ReplaceState(&full.Board, full.Columns)
	return nil
}

// Refresh re-reads the board after a peer changed it. A fetch failure is
// reported and leaves the state untouched.
func (s *Store) Refresh(ctx context.Context) error {
	full, err := s.gw.GetFullBoard(ctx, s.slug)
	if err != nil {
		s.notifier.Notify(notice.Failure("refresh board", err))
		return &ActionError{Action: "refresh board", Err: err}
	}
	if full != nil {
		s.ReplaceState(&full.Board, full.Columns)
		return nil
	}

	s.mu.Lock()
	_, persisted := s.lifecycle.(Persisted)
	if persisted {
		// deleted elsewhere
		s.resetLocked()
	}
	s.mu.Unlock()
	if persisted {
		s.emitChange()
	}
	return nil
}

// ReplaceState overwrites the whole state. A nil board means the board does
// not exist remotely. An empty column list is replaced by the initial column.
func (s *Store) ReplaceState(b *model.Board, columns []model.ColumnWithTasks) {
	s.mu.Lock()
	if b == nil {
		s.lifecycle = Unpersisted{}
	} else {
		s.lifecycle = Persisted{Board: *b}
	}
	s.columns = fromWire(columns)
	if len(s.columns) == 0 {
		s.columns = []Column{initialColumn(s.now())}
	}
	s.recovered = make(map[ColumnID]uuid.UUID)
	s.mu.Unlock()
	s.emitChange()
}

// RemoveBoard deletes the board remotely, when persisted, and resets to the
// empty template. On failure the state is kept.
func (s *Store) RemoveBoard(ctx context.Context) error {
	s.mu.Lock()
	p, persisted := s.lifecycle.(Persisted)
	s.mu.Unlock()

	if persisted {
		if err := s.gw.DeleteBoard(ctx, p.Board.ID); err != nil {
			s.notifier.Notify(notice.Failure("delete board", err))
			return &ActionError{Action: "delete board", Err: err}
		}
	}

	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	s.emitChange()
	if persisted {
		s.fireMutation()
	}
	return nil
}

// effect is the remote half of an operation. It runs without the store lock.
type effect func(ctx context.Context) error

// commit applies mutate under the lock, then runs the effect it returns. A
// failing effect restores the state captured before mutate. mutate must not
// change anything when it returns an error. A nil effect means the change is
// local only.
func (s *Store) commit(ctx context.Context, action string, mutate func() (effect, error)) error {
	s.mu.Lock()
	before := s.snapshotLocked()
	eff, err := mutate()
	s.mu.Unlock()
	if errors.Is(err, errNoop) {
		return nil
	}
	if err != nil {
		return err
	}
	s.emitChange()
	if eff == nil {
		return nil
	}

	if err := eff(ctx); err != nil {
		s.mu.Lock()
		s.restoreLocked(before)
		s.mu.Unlock()
		s.emitChange()
		s.notifier.Notify(notice.Failure(action, err))
		return &ActionError{Action: action, Err: err}
	}
	s.emitChange()
	s.fireMutation()
	return nil
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{Lifecycle: s.lifecycle, Columns: cloneColumns(s.columns)}
}

func (s *Store) restoreLocked(snap Snapshot) {
	s.lifecycle = snap.Lifecycle
	s.columns = cloneColumns(snap.Columns)
	if len(s.recovered) == 0 {
		return
	}
	boardID := uuid.Nil
	if p, ok := s.lifecycle.(Persisted); ok {
		boardID = p.Board.ID
	}
	for i := range s.columns {
		c := &s.columns[i]
		rid, ok := s.recovered[c.ID]
		if !ok {
			continue
		}
		c.ID = RemoteID(rid)
		c.BoardID = boardID
		for j := range c.Tasks {
			c.Tasks[j].ColumnID = rid
		}
	}
}

func (s *Store) resetLocked() {
	s.lifecycle = Unpersisted{}
	s.columns = []Column{initialColumn(s.now())}
	s.recovered = make(map[ColumnID]uuid.UUID)
}

func (s *Store) emitChange() {
	fn := s.onChange.Load()
	if fn == nil || *fn == nil {
		return
	}
	(*fn)(s.Snapshot())
}

func (s *Store) fireMutation() {
	fn := s.onMutation.Load()
	if fn == nil || *fn == nil {
		return
	}
	(*fn)()
}

func (s *Store) persistedLocked() (model.Board, bool) {
	p, ok := s.lifecycle.(Persisted)
	return p.Board, ok
}

// canonicalLocked follows a local id to its remote id once it was created.
func (s *Store) canonicalLocked(id ColumnID) ColumnID {
	if rid, ok := s.recovered[id]; ok {
		return RemoteID(rid)
	}
	return id
}

func (s *Store) columnIndexLocked(id ColumnID) int {
	id = s.canonicalLocked(id)
	for i, c := range s.columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) taskIndexLocked(id uuid.UUID) (int, int) {
	for ci, c := range s.columns {
		for ti, t := range c.Tasks {
			if t.ID == id {
				return ci, ti
			}
		}
	}
	return -1, -1
}

// remapLocked swaps a local column id for the column the store created.
func (s *Store) remapLocked(local ColumnID, created model.Column) {
	s.recovered[local] = created.ID
	for i := range s.columns {
		c := &s.columns[i]
		if c.ID != local {
			continue
		}
		c.ID = RemoteID(created.ID)
		c.BoardID = created.BoardID
		c.CreatedAt = created.CreatedAt
		for j := range c.Tasks {
			c.Tasks[j].ColumnID = created.ID
		}
	}
}

func (s *Store) replaceTaskLocked(placeholder uuid.UUID, task model.Task) {
	ci, ti := s.taskIndexLocked(placeholder)
	if ci < 0 {
		return
	}
	task.Position = s.columns[ci].Tasks[ti].Position
	s.columns[ci].Tasks[ti] = task
}

// resolveColumn returns the remote id of a column, creating it first when it
// still carries a local id on a persisted board.
func (s *Store) resolveColumn(ctx context.Context, id ColumnID) (uuid.UUID, error) {
	if rid, ok := id.Remote(); ok {
		return rid, nil
	}

	s.mu.Lock()
	if rid, ok := s.recovered[id]; ok {
		s.mu.Unlock()
		return rid, nil
	}
	b, persisted := s.persistedLocked()
	i := s.columnIndexLocked(id)
	if !persisted || i < 0 {
		s.mu.Unlock()
		return uuid.Nil, fmt.Errorf("%w: %s", ErrColumnNotFound, id)
	}
	col := s.columns[i]
	s.mu.Unlock()

	log.Printf("⚠️ Column %s has no remote id on board %q, creating it", id, s.slug)
	created, err := s.gw.CreateColumn(ctx, model.CreateColumnInput{
		BoardID:  b.ID,
		Title:    col.Title,
		Position: col.Position,
	})
	if err != nil {
		return uuid.Nil, err
	}
	if col.IsCollapsed {
		collapsed := true
		if _, err := s.gw.UpdateColumn(ctx, model.UpdateColumnInput{ID: created.ID, IsCollapsed: &collapsed}); err != nil {
			return uuid.Nil, err
		}
		created.IsCollapsed = true
	}

	s.mu.Lock()
	s.remapLocked(id, *created)
	s.mu.Unlock()
	return created.ID, nil
}
