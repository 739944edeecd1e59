package repository

import (
	"context"
	"errors"

	"openkanban/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ColumnRepository struct {
	db *gorm.DB
}

func NewColumnRepository(db *gorm.DB) *ColumnRepository {
	return &ColumnRepository{db: db}
}

func (r *ColumnRepository) Create(ctx context.Context, column *model.Column) error {
	return r.db.WithContext(ctx).Create(column).Error
}

// Update applies the non-nil fields of in and returns the stored column.
func (r *ColumnRepository) Update(ctx context.Context, in model.UpdateColumnInput) (*model.Column, error) {
	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Position != nil {
		updates["position"] = *in.Position
	}
	if in.IsCollapsed != nil {
		updates["is_collapsed"] = *in.IsCollapsed
	}

	var column model.Column
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			result := tx.Model(&model.Column{}).Where("id = ?", in.ID).Updates(updates)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrColumnNotFound
			}
		}
		if err := tx.Where("id = ?", in.ID).First(&column).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrColumnNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &column, nil
}

// Delete removes a column; its tasks go with it through ON DELETE CASCADE.
func (r *ColumnRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Column{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrColumnNotFound
	}
	return nil
}

// UpdatePositions writes position, title and collapse state of every column in one transaction.
func (r *ColumnRepository) UpdatePositions(ctx context.Context, columns []model.Column) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, column := range columns {
			if err := tx.Model(&model.Column{}).Where("id = ?", column.ID).
				Updates(map[string]interface{}{
					"position":     column.Position,
					"title":        column.Title,
					"is_collapsed": column.IsCollapsed,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
