package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ErrInvalidPriority is returned when a priority is not one of the known levels.
var ErrInvalidPriority = errors.New("invalid priority")

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// OrDefault returns p, or medium when p is empty.
func (p Priority) OrDefault() Priority {
	if p == "" {
		return PriorityMedium
	}
	return p
}

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ColumnID    uuid.UUID `gorm:"type:uuid;not null;index" json:"column_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description *string   `json:"description"`
	Priority    Priority  `gorm:"type:varchar(16);not null;default:'medium'" json:"priority"`
	Position    int       `gorm:"not null" json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
