package model

import "github.com/google/uuid"

// Request payloads shared by the gateway, the REST handlers and the repositories.
// Nil pointer fields mean "leave unchanged".

type CreateBoardInput struct {
	Slug string `json:"slug" binding:"required"`
}

type CreateColumnInput struct {
	BoardID  uuid.UUID `json:"board_id" binding:"required"`
	Title    string    `json:"title"`
	Position int       `json:"position" binding:"min=0"`
}

type UpdateColumnInput struct {
	ID          uuid.UUID `json:"id"`
	Title       *string   `json:"title,omitempty"`
	Position    *int      `json:"position,omitempty" binding:"omitempty,min=0"`
	IsCollapsed *bool     `json:"is_collapsed,omitempty"`
}

type CreateTaskInput struct {
	ColumnID    uuid.UUID `json:"column_id" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description *string   `json:"description,omitempty"`
	Priority    Priority  `json:"priority,omitempty" binding:"omitempty,oneof=low medium high urgent"`
	Position    int       `json:"position" binding:"min=0"`
}

type UpdateTaskInput struct {
	ID          uuid.UUID  `json:"id"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *Priority  `json:"priority,omitempty" binding:"omitempty,oneof=low medium high urgent"`
	ColumnID    *uuid.UUID `json:"column_id,omitempty"`
	Position    *int       `json:"position,omitempty" binding:"omitempty,min=0"`

	// ClearDescription sets the description to null and wins over Description.
	ClearDescription bool `json:"clear_description,omitempty"`
}
