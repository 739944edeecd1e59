package model

import (
	"time"

	"github.com/google/uuid"
)

type Column struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardID     uuid.UUID `gorm:"type:uuid;not null;index" json:"board_id"`
	Title       string    `gorm:"not null" json:"title"`
	Position    int       `gorm:"not null" json:"position"`
	IsCollapsed bool      `gorm:"not null;default:false" json:"is_collapsed"`
	CreatedAt   time.Time `json:"created_at"`

	Tasks []Task `gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE" json:"-"`
}

// ColumnWithTasks is the wire and client-side shape of a column.
type ColumnWithTasks struct {
	Column
	Tasks []Task `json:"tasks"`
}

// WithTasks converts a preloaded column into its nested representation.
func (c Column) WithTasks() ColumnWithTasks {
	tasks := c.Tasks
	if tasks == nil {
		tasks = []Task{}
	}
	col := c
	col.Tasks = nil
	return ColumnWithTasks{Column: col, Tasks: tasks}
}
