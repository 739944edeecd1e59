package board

import (
	"context"
	"slices"
	"strings"

	"openkanban/internal/model"
)

// AddColumn appends a column. An empty title becomes DefaultColumnTitle.
func (s *Store) AddColumn(ctx context.Context, title string) error {
	if strings.TrimSpace(title) == "" {
		title = DefaultColumnTitle
	}
	local := NewLocalID()

	return s.commit(ctx, "add column", func() (effect, error) {
		position := len(s.columns)
		s.columns = append(s.columns, Column{
			ID:        local,
			Title:     title,
			Position:  position,
			CreatedAt: s.now(),
			Tasks:     []model.Task{},
		})
		b, ok := s.persistedLocked()
		if !ok {
			return nil, nil
		}
		return func(ctx context.Context) error {
			created, err := s.gw.CreateColumn(ctx, model.CreateColumnInput{
				BoardID:  b.ID,
				Title:    title,
				Position: position,
			})
			if err != nil {
				return err
			}
			s.mu.Lock()
			s.remapLocked(local, *created)
			s.mu.Unlock()
			return nil
		}, nil
	})
}

func (s *Store) RenameColumn(ctx context.Context, id ColumnID, title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	return s.updateColumn(ctx, "rename column", id, func(c *Column) model.UpdateColumnInput {
		c.Title = title
		return model.UpdateColumnInput{Title: &title}
	})
}

func (s *Store) ToggleCollapse(ctx context.Context, id ColumnID, collapsed bool) error {
	return s.updateColumn(ctx, "update column", id, func(c *Column) model.UpdateColumnInput {
		c.IsCollapsed = collapsed
		return model.UpdateColumnInput{IsCollapsed: &collapsed}
	})
}

func (s *Store) updateColumn(ctx context.Context, action string, id ColumnID, apply func(*Column) model.UpdateColumnInput) error {
	return s.commit(ctx, action, func() (effect, error) {
		i := s.columnIndexLocked(id)
		if i < 0 {
			return nil, ErrColumnNotFound
		}
		in := apply(&s.columns[i])
		target := s.columns[i].ID
		if _, ok := s.persistedLocked(); !ok {
			return nil, nil
		}
		return func(ctx context.Context) error {
			rid, err := s.resolveColumn(ctx, target)
			if err != nil {
				return err
			}
			in.ID = rid
			_, err = s.gw.UpdateColumn(ctx, in)
			return err
		}, nil
	})
}

// RemoveColumn deletes a column and its tasks. The last remaining column
// cannot be removed.
func (s *Store) RemoveColumn(ctx context.Context, id ColumnID) error {
	return s.commit(ctx, "delete column", func() (effect, error) {
		i := s.columnIndexLocked(id)
		if i < 0 {
			return nil, ErrColumnNotFound
		}
		if len(s.columns) <= 1 {
			return nil, errNoop
		}
		removed := s.columns[i]
		s.columns = slices.Delete(s.columns, i, i+1)
		reindexColumns(s.columns)

		if _, ok := s.persistedLocked(); !ok {
			return nil, nil
		}
		rid, remote := removed.ID.Remote()
		batch := s.columnBatchLocked()
		return func(ctx context.Context) error {
			if remote {
				if err := s.gw.DeleteColumn(ctx, rid); err != nil {
					return err
				}
			}
			return s.gw.BatchUpdateColumns(ctx, batch)
		}, nil
	})
}

// MoveColumn moves the column at from to index to.
func (s *Store) MoveColumn(ctx context.Context, from, to int) error {
	return s.commit(ctx, "reorder columns", func() (effect, error) {
		n := len(s.columns)
		if from < 0 || from >= n || to < 0 || to >= n {
			return nil, ErrIndexOutOfRange
		}
		if from == to {
			return nil, errNoop
		}
		moved := s.columns[from]
		s.columns = slices.Insert(slices.Delete(s.columns, from, from+1), to, moved)
		reindexColumns(s.columns)

		if _, ok := s.persistedLocked(); !ok {
			return nil, nil
		}
		batch := s.columnBatchLocked()
		return func(ctx context.Context) error {
			return s.gw.BatchUpdateColumns(ctx, batch)
		}, nil
	})
}

// columnBatchLocked lists every persisted column with its current position.
func (s *Store) columnBatchLocked() []model.Column {
	batch := make([]model.Column, 0, len(s.columns))
	for _, c := range s.columns {
		if m, ok := c.toModel(); ok {
			batch = append(batch, m)
		}
	}
	return batch
}
