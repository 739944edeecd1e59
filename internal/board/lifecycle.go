package board

import "openkanban/internal/model"

// Lifecycle is the persistence state of a board: Unpersisted or Persisted.
type Lifecycle interface {
	isLifecycle()
}

// Unpersisted means nothing has been written yet; column edits stay in memory.
type Unpersisted struct{}

// Persisted means the board exists in the store; every edit is written through.
type Persisted struct {
	Board model.Board
}

func (Unpersisted) isLifecycle() {}
func (Persisted) isLifecycle()   {}
