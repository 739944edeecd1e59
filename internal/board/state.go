package board

import (
	"time"

	"openkanban/internal/model"

	"github.com/google/uuid"
)

const (
	DefaultColumnTitle = "Untitled"
	InitialColumnTitle = "To Do"
)

// initialColumnID is stable so that every fresh view of an empty board starts
// from the same template.
var initialColumnID = LocalID("initial-todo")

// Column is the in-memory form of a column and its ordered tasks.
type Column struct {
	ID          ColumnID
	BoardID     uuid.UUID
	Title       string
	Position    int
	IsCollapsed bool
	CreatedAt   time.Time
	Tasks       []model.Task
}

// Snapshot is an immutable copy of the store state.
type Snapshot struct {
	Lifecycle Lifecycle
	Columns   []Column
}

// Board returns the persisted board, if any.
func (s Snapshot) Board() (model.Board, bool) {
	if p, ok := s.Lifecycle.(Persisted); ok {
		return p.Board, true
	}
	return model.Board{}, false
}

// TaskCount returns the number of tasks across all columns.
func (s Snapshot) TaskCount() int {
	n := 0
	for _, c := range s.Columns {
		n += len(c.Tasks)
	}
	return n
}

func initialColumn(now time.Time) Column {
	return Column{ID: initialColumnID, Title: InitialColumnTitle, CreatedAt: now, Tasks: []model.Task{}}
}

func fromWire(columns []model.ColumnWithTasks) []Column {
	out := make([]Column, 0, len(columns))
	for _, c := range columns {
		tasks := make([]model.Task, len(c.Tasks))
		copy(tasks, c.Tasks)
		out = append(out, Column{
			ID:          RemoteID(c.ID),
			BoardID:     c.BoardID,
			Title:       c.Title,
			Position:    c.Position,
			IsCollapsed: c.IsCollapsed,
			CreatedAt:   c.CreatedAt,
			Tasks:       tasks,
		})
	}
	return out
}

func cloneColumns(columns []Column) []Column {
	out := make([]Column, len(columns))
	for i, c := range columns {
		c.Tasks = cloneTasks(c.Tasks)
		out[i] = c
	}
	return out
}

func cloneTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out
}

func reindexColumns(columns []Column) {
	for i := range columns {
		columns[i].Position = i
	}
}

func reindexTasks(tasks []model.Task) {
	for i := range tasks {
		tasks[i].Position = i
	}
}

// toModel converts a persisted column for batch position updates.
func (c Column) toModel() (model.Column, bool) {
	id, ok := c.ID.Remote()
	if !ok {
		return model.Column{}, false
	}
	return model.Column{
		ID:          id,
		BoardID:     c.BoardID,
		Title:       c.Title,
		Position:    c.Position,
		IsCollapsed: c.IsCollapsed,
		CreatedAt:   c.CreatedAt,
	}, true
}

// WireColumns converts the snapshot columns to their wire form. Local columns
// carry a nil ID.
func (s Snapshot) WireColumns() []model.ColumnWithTasks {
	out := make([]model.ColumnWithTasks, 0, len(s.Columns))
	for _, c := range s.Columns {
		id, _ := c.ID.Remote()
		out = append(out, model.ColumnWithTasks{
			Column: model.Column{
				ID:          id,
				BoardID:     c.BoardID,
				Title:       c.Title,
				Position:    c.Position,
				IsCollapsed: c.IsCollapsed,
				CreatedAt:   c.CreatedAt,
			},
			Tasks: cloneTasks(c.Tasks),
		})
	}
	return out
}
