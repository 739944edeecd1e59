// Package gatewaytest provides an in-memory gateway.Gateway for tests, with
// call recording and failure injection.
package gatewaytest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"openkanban/internal/gateway"
	"openkanban/internal/model"

	"github.com/google/uuid"
)

// Operation names, matching the gateway.Gateway method names.
const (
	OpGetBoard           = "GetBoard"
	OpCreateBoard        = "CreateBoard"
	OpDeleteBoard        = "DeleteBoard"
	OpCreateColumn       = "CreateColumn"
	OpUpdateColumn       = "UpdateColumn"
	OpDeleteColumn       = "DeleteColumn"
	OpBatchUpdateColumns = "BatchUpdateColumns"
	OpCreateTask         = "CreateTask"
	OpUpdateTask         = "UpdateTask"
	OpDeleteTask         = "DeleteTask"
	OpBatchUpdateTasks   = "BatchUpdateTasks"
	OpGetFullBoard       = "GetFullBoard"
)

// ErrInjected is the default error returned by injected failures.
var ErrInjected = errors.New("injected failure")

type failure struct {
	nth int // 0 fails every call
	err error
}

// Memory is a goroutine-safe in-memory store.
type Memory struct {
	mu       sync.Mutex
	boards   map[uuid.UUID]*model.Board
	columns  map[uuid.UUID]*model.Column
	tasks    map[uuid.UUID]*model.Task
	calls    []string
	counts   map[string]int
	failures map[string]failure
	batches  map[string][][]uuid.UUID
}

var _ gateway.Gateway = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		boards:   make(map[uuid.UUID]*model.Board),
		columns:  make(map[uuid.UUID]*model.Column),
		tasks:    make(map[uuid.UUID]*model.Task),
		counts:   make(map[string]int),
		failures: make(map[string]failure),
		batches:  make(map[string][][]uuid.UUID),
	}
}

// FailOn makes every call of op fail with err (ErrInjected when nil).
func (m *Memory) FailOn(op string, err error) {
	m.FailNth(op, 0, err)
}

// FailNth makes only the nth call (1-based, counted from now) of op fail.
func (m *Memory) FailNth(op string, nth int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	if nth > 0 {
		nth += m.counts[op]
	}
	m.failures[op] = failure{nth: nth, err: err}
}

// Heal clears every injected failure.
func (m *Memory) Heal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = make(map[string]failure)
}

// Calls returns the recorded operation names in call order.
func (m *Memory) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how many times op was called.
func (m *Memory) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[op]
}

// ResetCalls forgets recorded calls and injected failures without touching stored data.
func (m *Memory) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.counts = make(map[string]int)
	m.batches = make(map[string][][]uuid.UUID)
	m.failures = make(map[string]failure)
}

// Batches returns the IDs sent to each call of a batch operation.
func (m *Memory) Batches(op string) [][]uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]uuid.UUID(nil), m.batches[op]...)
}

// BoardCount returns the number of stored boards.
func (m *Memory) BoardCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.boards)
}

// Column returns a copy of a stored column.
func (m *Memory) Column(id uuid.UUID) (model.Column, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.columns[id]
	if !ok {
		return model.Column{}, false
	}
	return *c, true
}

// Task returns a copy of a stored task.
func (m *Memory) Task(id uuid.UUID) (model.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return model.Task{}, false
	}
	return *t, true
}

// record must be called with m.mu held.
func (m *Memory) record(op string) error {
	m.calls = append(m.calls, op)
	m.counts[op]++
	f, ok := m.failures[op]
	if !ok {
		return nil
	}
	if f.nth == 0 || f.nth == m.counts[op] {
		if f.nth != 0 {
			delete(m.failures, op)
		}
		return &gateway.StoreError{Op: op, Message: f.err.Error(), Err: f.err}
	}
	return nil
}

func notFound(op, what string) error {
	return &gateway.StoreError{Op: op, Message: what + " not found", Code: gateway.CodeNotFound}
}

func (m *Memory) boardBySlug(slug string) *model.Board {
	for _, b := range m.boards {
		if b.Slug == slug {
			return b
		}
	}
	return nil
}

func (m *Memory) GetBoard(_ context.Context, slug string) (*model.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpGetBoard); err != nil {
		return nil, err
	}
	b := m.boardBySlug(slug)
	if b == nil {
		return nil, nil
	}
	out := *b
	return &out, nil
}

func (m *Memory) CreateBoard(_ context.Context, slug string) (*model.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpCreateBoard); err != nil {
		return nil, err
	}
	if m.boardBySlug(slug) != nil {
		return nil, &gateway.StoreError{
			Op:      OpCreateBoard,
			Message: "duplicate key value violates unique constraint \"idx_boards_slug\"",
			Code:    gateway.CodeUniqueViolation,
			Details: fmt.Sprintf("Key (slug)=(%s) already exists.", slug),
		}
	}
	now := time.Now().UTC()
	b := &model.Board{ID: uuid.New(), Slug: slug, CreatedAt: now, UpdatedAt: now}
	m.boards[b.ID] = b
	out := *b
	return &out, nil
}

func (m *Memory) DeleteBoard(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpDeleteBoard); err != nil {
		return err
	}
	if _, ok := m.boards[id]; !ok {
		return notFound(OpDeleteBoard, "board")
	}
	delete(m.boards, id)
	for cid, c := range m.columns {
		if c.BoardID == id {
			m.deleteColumnLocked(cid)
		}
	}
	return nil
}

func (m *Memory) CreateColumn(_ context.Context, in model.CreateColumnInput) (*model.Column, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpCreateColumn); err != nil {
		return nil, err
	}
	if _, ok := m.boards[in.BoardID]; !ok {
		return nil, notFound(OpCreateColumn, "board")
	}
	c := &model.Column{
		ID:        uuid.New(),
		BoardID:   in.BoardID,
		Title:     in.Title,
		Position:  in.Position,
		CreatedAt: time.Now().UTC(),
	}
	m.columns[c.ID] = c
	out := *c
	return &out, nil
}

func (m *Memory) UpdateColumn(_ context.Context, in model.UpdateColumnInput) (*model.Column, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpUpdateColumn); err != nil {
		return nil, err
	}
	c, ok := m.columns[in.ID]
	if !ok {
		return nil, notFound(OpUpdateColumn, "column")
	}
	if in.Title != nil {
		c.Title = *in.Title
	}
	if in.Position != nil {
		c.Position = *in.Position
	}
	if in.IsCollapsed != nil {
		c.IsCollapsed = *in.IsCollapsed
	}
	out := *c
	return &out, nil
}

func (m *Memory) deleteColumnLocked(id uuid.UUID) {
	delete(m.columns, id)
	for tid, t := range m.tasks {
		if t.ColumnID == id {
			delete(m.tasks, tid)
		}
	}
}

func (m *Memory) DeleteColumn(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpDeleteColumn); err != nil {
		return err
	}
	if _, ok := m.columns[id]; !ok {
		return notFound(OpDeleteColumn, "column")
	}
	m.deleteColumnLocked(id)
	return nil
}

func (m *Memory) BatchUpdateColumns(_ context.Context, columns []model.Column) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpBatchUpdateColumns); err != nil {
		return err
	}
	columns = gateway.DedupColumns(columns)
	ids := make([]uuid.UUID, 0, len(columns))
	for _, in := range columns {
		ids = append(ids, in.ID)
		c, ok := m.columns[in.ID]
		if !ok {
			continue
		}
		c.Position, c.Title, c.IsCollapsed = in.Position, in.Title, in.IsCollapsed
	}
	m.batches[OpBatchUpdateColumns] = append(m.batches[OpBatchUpdateColumns], ids)
	return nil
}

func (m *Memory) CreateTask(_ context.Context, in model.CreateTaskInput) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpCreateTask); err != nil {
		return nil, err
	}
	if _, ok := m.columns[in.ColumnID]; !ok {
		return nil, notFound(OpCreateTask, "column")
	}
	now := time.Now().UTC()
	t := &model.Task{
		ID:          uuid.New(),
		ColumnID:    in.ColumnID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority.OrDefault(),
		Position:    in.Position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.tasks[t.ID] = t
	out := *t
	return &out, nil
}

func (m *Memory) UpdateTask(_ context.Context, in model.UpdateTaskInput) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpUpdateTask); err != nil {
		return nil, err
	}
	t, ok := m.tasks[in.ID]
	if !ok {
		return nil, notFound(OpUpdateTask, "task")
	}
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.ClearDescription {
		t.Description = nil
	} else if in.Description != nil {
		d := *in.Description
		t.Description = &d
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.ColumnID != nil {
		t.ColumnID = *in.ColumnID
	}
	if in.Position != nil {
		t.Position = *in.Position
	}
	t.UpdatedAt = time.Now().UTC()
	out := *t
	return &out, nil
}

func (m *Memory) DeleteTask(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpDeleteTask); err != nil {
		return err
	}
	if _, ok := m.tasks[id]; !ok {
		return notFound(OpDeleteTask, "task")
	}
	delete(m.tasks, id)
	return nil
}

func (m *Memory) BatchUpdateTasks(_ context.Context, tasks []model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpBatchUpdateTasks); err != nil {
		return err
	}
	tasks = gateway.DedupTasks(tasks)
	ids := make([]uuid.UUID, 0, len(tasks))
	for _, in := range tasks {
		ids = append(ids, in.ID)
		t, ok := m.tasks[in.ID]
		if !ok {
			continue
		}
		t.ColumnID, t.Position = in.ColumnID, in.Position
		t.Title, t.Description, t.Priority = in.Title, in.Description, in.Priority
	}
	m.batches[OpBatchUpdateTasks] = append(m.batches[OpBatchUpdateTasks], ids)
	return nil
}

func (m *Memory) GetFullBoard(_ context.Context, slug string) (*model.FullBoard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpGetFullBoard); err != nil {
		return nil, err
	}
	b := m.boardBySlug(slug)
	if b == nil {
		return nil, nil
	}

	full := &model.FullBoard{Board: *b, Columns: []model.ColumnWithTasks{}}
	for _, c := range m.columns {
		if c.BoardID != b.ID {
			continue
		}
		col := model.ColumnWithTasks{Column: *c, Tasks: []model.Task{}}
		for _, t := range m.tasks {
			if t.ColumnID == c.ID {
				col.Tasks = append(col.Tasks, *t)
			}
		}
		sort.SliceStable(col.Tasks, func(i, j int) bool { return col.Tasks[i].Position < col.Tasks[j].Position })
		full.Columns = append(full.Columns, col)
	}
	sort.SliceStable(full.Columns, func(i, j int) bool { return full.Columns[i].Position < full.Columns[j].Position })
	return full, nil
}
