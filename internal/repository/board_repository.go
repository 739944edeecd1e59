package repository

import (
	"context"
	"errors"

	"openkanban/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) Create(ctx context.Context, board *model.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

func (r *BoardRepository) GetBySlug(ctx context.Context, slug string) (*model.Board, error) {
	var board model.Board
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Return nil, nil to indicate that the board was not found
		}
		return nil, err
	}
	return &board, nil
}

// GetFull loads a board with its columns and tasks, both ordered by position.
// Returns nil, nil when no board has the slug.
func (r *BoardRepository) GetFull(ctx context.Context, slug string) (*model.FullBoard, error) {
	var board model.Board
	err := r.db.WithContext(ctx).
		Preload("Columns", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Preload("Columns.Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Where("slug = ?", slug).
		First(&board).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	full := &model.FullBoard{Columns: make([]model.ColumnWithTasks, 0, len(board.Columns))}
	for _, column := range board.Columns {
		full.Columns = append(full.Columns, column.WithTasks())
	}
	board.Columns = nil
	full.Board = board
	return full, nil
}

// Delete removes a board; columns and tasks go with it through ON DELETE CASCADE.
func (r *BoardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Board{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBoardNotFound
	}
	return nil
}
