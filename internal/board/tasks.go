package board

import (
	"context"
	"log"
	"slices"
	"strings"

	"openkanban/internal/gateway"
	"openkanban/internal/model"

	"github.com/google/uuid"
)

// TaskPatch lists the task fields to change. Nil fields are left alone. A
// blank Description, like ClearDescription, resets the description to null.
type TaskPatch struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Priority         *model.Priority
}

func (p TaskPatch) empty() bool {
	return p.Title == nil && p.Description == nil && !p.ClearDescription && p.Priority == nil
}

// AddTask appends a task to a column. On an unpersisted board the first task
// creates the board and all held columns before the task itself.
func (s *Store) AddTask(ctx context.Context, columnID ColumnID, title string, priority model.Priority) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	priority = priority.OrDefault()
	if !priority.Valid() {
		return model.ErrInvalidPriority
	}

	placeholder := model.Task{
		ID:        uuid.New(),
		Title:     title,
		Priority:  priority,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}

	bootstrapping := false
	err := s.commit(ctx, "add task", func() (effect, error) {
		i := s.columnIndexLocked(columnID)
		if i < 0 {
			return nil, ErrColumnNotFound
		}
		col := &s.columns[i]
		placeholder.Position = len(col.Tasks)
		if rid, ok := col.ID.Remote(); ok {
			placeholder.ColumnID = rid
		}
		col.Tasks = append(col.Tasks, placeholder)
		target := col.ID

		if _, ok := s.persistedLocked(); !ok {
			template := cloneColumns(s.columns)
			bootstrapping = true
			return func(ctx context.Context) error {
				return s.bootstrap(ctx, template, target, placeholder)
			}, nil
		}
		return func(ctx context.Context) error {
			rid, err := s.resolveColumn(ctx, target)
			if err != nil {
				return err
			}
			created, err := s.gw.CreateTask(ctx, model.CreateTaskInput{
				ColumnID: rid,
				Title:    placeholder.Title,
				Priority: placeholder.Priority,
				Position: placeholder.Position,
			})
			if err != nil {
				return err
			}
			s.mu.Lock()
			s.replaceTaskLocked(placeholder.ID, *created)
			s.mu.Unlock()
			return nil
		}, nil
	})

	if bootstrapping && gateway.IsConflict(err) {
		// Another client created the board first; adopt it.
		if rerr := s.Refresh(ctx); rerr != nil {
			log.Printf("❌ Failed to adopt board %q after conflict: %v", s.slug, rerr)
		}
	}
	return err
}

// bootstrap persists the board, every held column in position order, and the
// first task, then swaps all local ids in one step. On failure it deletes any
// board it created; the caller restores the in-memory state.
func (s *Store) bootstrap(ctx context.Context, template []Column, target ColumnID, placeholder model.Task) error {
	created, err := s.gw.CreateBoard(ctx, s.slug)
	if err != nil {
		return err
	}

	remap := make(map[ColumnID]model.Column, len(template))
	for i, col := range template {
		c, err := s.gw.CreateColumn(ctx, model.CreateColumnInput{
			BoardID:  created.ID,
			Title:    col.Title,
			Position: i,
		})
		if err != nil {
			s.discardBoard(ctx, created.ID)
			return err
		}
		if col.IsCollapsed {
			collapsed := true
			if _, err := s.gw.UpdateColumn(ctx, model.UpdateColumnInput{ID: c.ID, IsCollapsed: &collapsed}); err != nil {
				s.discardBoard(ctx, created.ID)
				return err
			}
			c.IsCollapsed = true
		}
		remap[col.ID] = *c
	}

	dest, ok := remap[target]
	if !ok {
		s.discardBoard(ctx, created.ID)
		return ErrColumnNotFound
	}
	task, err := s.gw.CreateTask(ctx, model.CreateTaskInput{
		ColumnID: dest.ID,
		Title:    placeholder.Title,
		Priority: placeholder.Priority,
		Position: placeholder.Position,
	})
	if err != nil {
		s.discardBoard(ctx, created.ID)
		return err
	}

	s.mu.Lock()
	s.lifecycle = Persisted{Board: *created}
	for local, c := range remap {
		s.remapLocked(local, c)
	}
	s.replaceTaskLocked(placeholder.ID, *task)
	s.mu.Unlock()
	log.Printf("✅ Board %q persisted with %d columns", s.slug, len(remap))
	return nil
}

func (s *Store) discardBoard(ctx context.Context, id uuid.UUID) {
	if err := s.gw.DeleteBoard(context.WithoutCancel(ctx), id); err != nil {
		log.Printf("⚠️ Failed to discard partially created board %s: %v", id, err)
	}
}

// EditTask applies patch to a task.
func (s *Store) EditTask(ctx context.Context, id uuid.UUID, patch TaskPatch) error {
	if patch.Priority != nil && !patch.Priority.Valid() {
		return model.ErrInvalidPriority
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return ErrEmptyTitle
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		patch.Description = nil
		patch.ClearDescription = true
	}

	return s.commit(ctx, "update task", func() (effect, error) {
		ci, ti := s.taskIndexLocked(id)
		if ci < 0 {
			return nil, ErrTaskNotFound
		}
		if patch.empty() {
			return nil, errNoop
		}
		t := &s.columns[ci].Tasks[ti]
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.ClearDescription {
			t.Description = nil
		} else if patch.Description != nil {
			d := *patch.Description
			t.Description = &d
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		t.UpdatedAt = s.now()

		if _, ok := s.persistedLocked(); !ok {
			return nil, nil
		}
		in := model.UpdateTaskInput{
			ID:          id,
			Title:       patch.Title,
			Description: patch.Description,
			Priority:    patch.Priority,

			ClearDescription: patch.ClearDescription,
		}
		return func(ctx context.Context) error {
			_, err := s.gw.UpdateTask(ctx, in)
			return err
		}, nil
	})
}

// RemoveTask deletes a task and closes the gap in its column.
func (s *Store) RemoveTask(ctx context.Context, id uuid.UUID) error {
	return s.commit(ctx, "delete task", func() (effect, error) {
		ci, ti := s.taskIndexLocked(id)
		if ci < 0 {
			return nil, ErrTaskNotFound
		}
		col := &s.columns[ci]
		col.Tasks = slices.Delete(col.Tasks, ti, ti+1)
		reindexTasks(col.Tasks)

		if _, ok := s.persistedLocked(); !ok {
			return nil, nil
		}
		batch := make([]model.Task, 0, len(col.Tasks))
		for _, t := range col.Tasks {
			if t.ColumnID != uuid.Nil {
				batch = append(batch, t)
			}
		}
		return func(ctx context.Context) error {
			if err := s.gw.DeleteTask(ctx, id); err != nil {
				return err
			}
			return s.gw.BatchUpdateTasks(ctx, batch)
		}, nil
	})
}

// MoveTask moves the task at srcIndex of src to dstIndex of dst. Both
// columns are reindexed and written back in one batch.
func (s *Store) MoveTask(ctx context.Context, src, dst ColumnID, srcIndex, dstIndex int) error {
	return s.commit(ctx, "move task", func() (effect, error) {
		si := s.columnIndexLocked(src)
		di := s.columnIndexLocked(dst)
		if si < 0 || di < 0 {
			return nil, ErrColumnNotFound
		}
		from := &s.columns[si]
		if srcIndex < 0 || srcIndex >= len(from.Tasks) {
			return nil, ErrIndexOutOfRange
		}

		var affected []int
		if si == di {
			if dstIndex < 0 || dstIndex >= len(from.Tasks) {
				return nil, ErrIndexOutOfRange
			}
			if srcIndex == dstIndex {
				return nil, errNoop
			}
			moved := from.Tasks[srcIndex]
			from.Tasks = slices.Insert(slices.Delete(from.Tasks, srcIndex, srcIndex+1), dstIndex, moved)
			reindexTasks(from.Tasks)
			affected = []int{si}
		} else {
			to := &s.columns[di]
			if dstIndex < 0 || dstIndex > len(to.Tasks) {
				return nil, ErrIndexOutOfRange
			}
			moved := from.Tasks[srcIndex]
			from.Tasks = slices.Delete(from.Tasks, srcIndex, srcIndex+1)
			if rid, ok := to.ID.Remote(); ok {
				moved.ColumnID = rid
			}
			to.Tasks = slices.Insert(to.Tasks, dstIndex, moved)
			reindexTasks(from.Tasks)
			reindexTasks(to.Tasks)
			affected = []int{si, di}
		}

		if _, ok := s.persistedLocked(); !ok {
			return nil, nil
		}
		type pending struct {
			column ColumnID
			tasks  []model.Task
		}
		groups := make([]pending, 0, len(affected))
		for _, i := range affected {
			groups = append(groups, pending{column: s.columns[i].ID, tasks: cloneTasks(s.columns[i].Tasks)})
		}
		return func(ctx context.Context) error {
			var batch []model.Task
			for _, g := range groups {
				if len(g.tasks) == 0 {
					continue
				}
				rid, err := s.resolveColumn(ctx, g.column)
				if err != nil {
					return err
				}
				for _, t := range g.tasks {
					t.ColumnID = rid
					batch = append(batch, t)
				}
			}
			return s.gw.BatchUpdateTasks(ctx, batch)
		}, nil
	})
}
