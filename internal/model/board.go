package model

import (
	"time"

	"github.com/google/uuid"
)

// Board is the root of a column/task tree, addressed by its slug.
type Board struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Slug      string    `gorm:"uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Columns []Column `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
}

// FullBoard is a board together with its ordered columns and their ordered tasks.
type FullBoard struct {
	Board   Board             `json:"board"`
	Columns []ColumnWithTasks `json:"columns"`
}
