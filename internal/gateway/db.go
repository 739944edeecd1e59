package gateway

import (
	"context"

	"openkanban/internal/model"
	"openkanban/internal/repository"

	"github.com/google/uuid"
)

// DB is the Gateway backed directly by the gorm repositories.
type DB struct {
	boards  *repository.BoardRepository
	columns *repository.ColumnRepository
	tasks   *repository.TaskRepository
}

func NewDB(boards *repository.BoardRepository, columns *repository.ColumnRepository, tasks *repository.TaskRepository) *DB {
	return &DB{boards: boards, columns: columns, tasks: tasks}
}

func (g *DB) GetBoard(ctx context.Context, slug string) (*model.Board, error) {
	board, err := g.boards.GetBySlug(ctx, slug)
	if err != nil {
		return nil, wrapError("get board", err)
	}
	return board, nil
}

func (g *DB) CreateBoard(ctx context.Context, slug string) (*model.Board, error) {
	board := &model.Board{Slug: slug}
	if err := g.boards.Create(ctx, board); err != nil {
		return nil, wrapError("create board", err)
	}
	return board, nil
}

func (g *DB) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	return wrapError("delete board", g.boards.Delete(ctx, id))
}

func (g *DB) CreateColumn(ctx context.Context, in model.CreateColumnInput) (*model.Column, error) {
	column := &model.Column{BoardID: in.BoardID, Title: in.Title, Position: in.Position}
	if err := g.columns.Create(ctx, column); err != nil {
		return nil, wrapError("create column", err)
	}
	return column, nil
}

func (g *DB) UpdateColumn(ctx context.Context, in model.UpdateColumnInput) (*model.Column, error) {
	column, err := g.columns.Update(ctx, in)
	if err != nil {
		return nil, wrapError("update column", err)
	}
	return column, nil
}

func (g *DB) DeleteColumn(ctx context.Context, id uuid.UUID) error {
	return wrapError("delete column", g.columns.Delete(ctx, id))
}

func (g *DB) BatchUpdateColumns(ctx context.Context, columns []model.Column) error {
	if len(columns) == 0 {
		return nil
	}
	return wrapError("update column positions", g.columns.UpdatePositions(ctx, DedupColumns(columns)))
}

func (g *DB) CreateTask(ctx context.Context, in model.CreateTaskInput) (*model.Task, error) {
	task := &model.Task{
		ColumnID:    in.ColumnID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority.OrDefault(),
		Position:    in.Position,
	}
	if err := g.tasks.Create(ctx, task); err != nil {
		return nil, wrapError("create task", err)
	}
	return task, nil
}

func (g *DB) UpdateTask(ctx context.Context, in model.UpdateTaskInput) (*model.Task, error) {
	task, err := g.tasks.Update(ctx, in)
	if err != nil {
		return nil, wrapError("update task", err)
	}
	return task, nil
}

func (g *DB) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return wrapError("delete task", g.tasks.Delete(ctx, id))
}

func (g *DB) BatchUpdateTasks(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return wrapError("update task positions", g.tasks.UpdatePositions(ctx, DedupTasks(tasks)))
}

func (g *DB) GetFullBoard(ctx context.Context, slug string) (*model.FullBoard, error) {
	full, err := g.boards.GetFull(ctx, slug)
	if err != nil {
		return nil, wrapError("get full board", err)
	}
	return full, nil
}
