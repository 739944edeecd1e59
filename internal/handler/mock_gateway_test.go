package handler_test

import (
	"context"

	"openkanban/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetBoard(ctx context.Context, slug string) (*model.Board, error) {
	args := m.Called(ctx, slug)
	board := args.Get(0)
	if board == nil {
		return nil, args.Error(1)
	}
	return board.(*model.Board), args.Error(1)
}

func (m *MockGateway) CreateBoard(ctx context.Context, slug string) (*model.Board, error) {
	args := m.Called(ctx, slug)
	board := args.Get(0)
	if board == nil {
		return nil, args.Error(1)
	}
	return board.(*model.Board), args.Error(1)
}

func (m *MockGateway) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockGateway) CreateColumn(ctx context.Context, in model.CreateColumnInput) (*model.Column, error) {
	args := m.Called(ctx, in)
	column := args.Get(0)
	if column == nil {
		return nil, args.Error(1)
	}
	return column.(*model.Column), args.Error(1)
}

func (m *MockGateway) UpdateColumn(ctx context.Context, in model.UpdateColumnInput) (*model.Column, error) {
	args := m.Called(ctx, in)
	column := args.Get(0)
	if column == nil {
		return nil, args.Error(1)
	}
	return column.(*model.Column), args.Error(1)
}

func (m *MockGateway) DeleteColumn(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockGateway) BatchUpdateColumns(ctx context.Context, columns []model.Column) error {
	return m.Called(ctx, columns).Error(0)
}

func (m *MockGateway) CreateTask(ctx context.Context, in model.CreateTaskInput) (*model.Task, error) {
	args := m.Called(ctx, in)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockGateway) UpdateTask(ctx context.Context, in model.UpdateTaskInput) (*model.Task, error) {
	args := m.Called(ctx, in)
	task := args.Get(0)
	if task == nil {
		return nil, args.Error(1)
	}
	return task.(*model.Task), args.Error(1)
}

func (m *MockGateway) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockGateway) BatchUpdateTasks(ctx context.Context, tasks []model.Task) error {
	return m.Called(ctx, tasks).Error(0)
}

func (m *MockGateway) GetFullBoard(ctx context.Context, slug string) (*model.FullBoard, error) {
	args := m.Called(ctx, slug)
	full := args.Get(0)
	if full == nil {
		return nil, args.Error(1)
	}
	return full.(*model.FullBoard), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishSync(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}
