package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"openkanban/internal/model"
)

var (
	ErrTaskNotFound = errors.New("task not found")
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// Update applies the non-nil fields of in and returns the stored task
func (r *TaskRepository) Update(ctx context.Context, in model.UpdateTaskInput) (*model.Task, error) {
	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.ClearDescription {
		updates["description"] = nil
	} else if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Priority != nil {
		updates["priority"] = *in.Priority
	}
	if in.ColumnID != nil {
		updates["column_id"] = *in.ColumnID
	}
	if in.Position != nil {
		updates["position"] = *in.Position
	}

	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			result := tx.Model(&model.Task{}).Where("id = ?", in.ID).Updates(updates)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrTaskNotFound
			}
		}
		if err := tx.First(&task, "id = ?", in.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// UpdatePositions rewrites column assignment, position and content of every task
// in a single transaction
func (r *TaskRepository) UpdatePositions(ctx context.Context, tasks []model.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, task := range tasks {
			if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).
				Updates(map[string]interface{}{
					"column_id":   task.ColumnID,
					"position":    task.Position,
					"title":       task.Title,
					"description": task.Description,
					"priority":    task.Priority,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
