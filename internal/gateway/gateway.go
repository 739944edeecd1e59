// Package gateway is the typed facade over the persistent board store.
//
// Implementations hold no board state: every call is a single request/response
// and every failure surfaces as a *StoreError. Lookups by slug distinguish
// "absent" (nil, nil) from "failed" (nil, err).
package gateway

import (
	"context"

	"openkanban/internal/model"

	"github.com/google/uuid"
)

type Gateway interface {
	GetBoard(ctx context.Context, slug string) (*model.Board, error)
	CreateBoard(ctx context.Context, slug string) (*model.Board, error)
	DeleteBoard(ctx context.Context, id uuid.UUID) error

	CreateColumn(ctx context.Context, in model.CreateColumnInput) (*model.Column, error)
	UpdateColumn(ctx context.Context, in model.UpdateColumnInput) (*model.Column, error)
	DeleteColumn(ctx context.Context, id uuid.UUID) error
	BatchUpdateColumns(ctx context.Context, columns []model.Column) error

	CreateTask(ctx context.Context, in model.CreateTaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, in model.UpdateTaskInput) (*model.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	BatchUpdateTasks(ctx context.Context, tasks []model.Task) error

	GetFullBoard(ctx context.Context, slug string) (*model.FullBoard, error)
}

// DedupColumns keeps the last entry for every column ID, in first-seen order.
func DedupColumns(columns []model.Column) []model.Column {
	return dedup(columns, func(c model.Column) uuid.UUID { return c.ID })
}

// DedupTasks keeps the last entry for every task ID, in first-seen order.
func DedupTasks(tasks []model.Task) []model.Task {
	return dedup(tasks, func(t model.Task) uuid.UUID { return t.ID })
}

func dedup[T any](items []T, key func(T) uuid.UUID) []T {
	index := make(map[uuid.UUID]int, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if i, ok := index[k]; ok {
			out[i] = item
			continue
		}
		index[k] = len(out)
		out = append(out, item)
	}
	return out
}
