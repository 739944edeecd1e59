package board_test

import (
	"context"
	"testing"

	"openkanban/internal/board"
	"openkanban/internal/gateway"
	"openkanban/internal/gateway/gatewaytest"
	"openkanban/internal/model"
	"openkanban/internal/notice"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSlug = "team-board"

func newStore(t *testing.T) (*board.Store, *gatewaytest.Memory, *notice.Recorder) {
	t.Helper()
	mem := gatewaytest.NewMemory()
	rec := notice.NewRecorder(16)
	return board.NewStore(testSlug, mem, board.WithNotifier(rec)), mem, rec
}

// persistedStore returns a store whose board exists remotely with one column
// holding one task. Recorded calls are cleared.
func persistedStore(t *testing.T) (*board.Store, *gatewaytest.Memory, *notice.Recorder) {
	t.Helper()
	s, mem, rec := newStore(t)
	require.NoError(t, s.AddTask(context.Background(), s.Columns()[0].ID, "first", ""))
	_, ok := s.Lifecycle().(board.Persisted)
	require.True(t, ok)
	mem.ResetCalls()
	return s, mem, rec
}

func countMutations(s *board.Store) *int {
	n := 0
	s.SetOnMutation(func() { n++ })
	return &n
}

func assertContiguous(t *testing.T, s *board.Store) {
	t.Helper()
	for ci, c := range s.Columns() {
		assert.Equal(t, ci, c.Position, "column %s", c.Title)
		for ti, task := range c.Tasks {
			assert.Equal(t, ti, task.Position, "task %s", task.Title)
		}
	}
}

func TestNewStore_InitialTemplate(t *testing.T) {
	s, mem, _ := newStore(t)

	cols := s.Columns()
	require.Len(t, cols, 1)
	assert.Equal(t, board.InitialColumnTitle, cols[0].Title)
	assert.True(t, cols[0].ID.IsLocal())
	assert.IsType(t, board.Unpersisted{}, s.Lifecycle())
	_, ok := s.Board()
	assert.False(t, ok)
	assert.Empty(t, mem.Calls())
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("absent board keeps template", func(t *testing.T) {
		s, _, _ := newStore(t)

		require.NoError(t, s.Load(ctx))

		assert.IsType(t, board.Unpersisted{}, s.Lifecycle())
		assert.Len(t, s.Columns(), 1)
	})

	t.Run("existing board", func(t *testing.T) {
		owner, mem, _ := persistedStore(t)
		require.NoError(t, owner.AddColumn(ctx, "Done"))

		s := board.NewStore(testSlug, mem)
		require.NoError(t, s.Load(ctx))

		b, ok := s.Board()
		require.True(t, ok)
		ownerBoard, _ := owner.Board()
		assert.Equal(t, ownerBoard.ID, b.ID)
		cols := s.Columns()
		require.Len(t, cols, 2)
		assert.Equal(t, "Done", cols[1].Title)
		require.Len(t, cols[0].Tasks, 1)
		assert.Equal(t, "first", cols[0].Tasks[0].Title)
	})

	t.Run("fetch failure", func(t *testing.T) {
		s, mem, _ := newStore(t)
		mem.FailOn(gatewaytest.OpGetFullBoard, nil)

		err := s.Load(ctx)

		require.Error(t, err)
		var se *gateway.StoreError
		assert.ErrorAs(t, err, &se)
	})
}

func TestAddColumn_UnpersistedStaysLocal(t *testing.T) {
	s, mem, _ := newStore(t)
	mutations := countMutations(s)

	require.NoError(t, s.AddColumn(context.Background(), ""))

	cols := s.Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, board.DefaultColumnTitle, cols[1].Title)
	assert.True(t, cols[1].ID.IsLocal())
	assert.Empty(t, mem.Calls())
	assert.Zero(t, *mutations)
	assertContiguous(t, s)
}

func TestAddTask_BootstrapsBoard(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := newStore(t)
	mutations := countMutations(s)
	require.NoError(t, s.AddColumn(ctx, "Doing"))
	doing := s.Columns()[1].ID
	require.NoError(t, s.ToggleCollapse(ctx, doing, true))

	err := s.AddTask(ctx, doing, "write docs", model.PriorityHigh)

	require.NoError(t, err)
	assert.Equal(t, []string{
		gatewaytest.OpCreateBoard,
		gatewaytest.OpCreateColumn,
		gatewaytest.OpCreateColumn,
		gatewaytest.OpUpdateColumn,
		gatewaytest.OpCreateTask,
	}, mem.Calls())
	assert.Equal(t, 1, *mutations)

	b, ok := s.Board()
	require.True(t, ok)
	assert.Equal(t, testSlug, b.Slug)

	cols := s.Columns()
	require.Len(t, cols, 2)
	for _, c := range cols {
		id, remote := c.ID.Remote()
		require.True(t, remote)
		stored, found := mem.Column(id)
		require.True(t, found)
		assert.Equal(t, c.Title, stored.Title)
		assert.Equal(t, c.Position, stored.Position)
		assert.Equal(t, c.IsCollapsed, stored.IsCollapsed)
		assert.Equal(t, b.ID, c.BoardID)
	}

	require.Len(t, cols[1].Tasks, 1)
	task := cols[1].Tasks[0]
	stored, found := mem.Task(task.ID)
	require.True(t, found)
	assert.Equal(t, "write docs", stored.Title)
	assert.Equal(t, model.PriorityHigh, stored.Priority)
	colID, _ := cols[1].ID.Remote()
	assert.Equal(t, colID, stored.ColumnID)
}

func TestAddTask_DefaultsToMediumPriority(t *testing.T) {
	s, mem, _ := persistedStore(t)
	col := s.Columns()[0]

	require.NoError(t, s.AddTask(context.Background(), col.ID, "second", ""))

	tasks := s.Columns()[0].Tasks
	require.Len(t, tasks, 2)
	assert.Equal(t, model.PriorityMedium, tasks[1].Priority)
	assert.Equal(t, 1, tasks[1].Position)
	stored, ok := mem.Task(tasks[1].ID)
	require.True(t, ok)
	assert.Equal(t, 1, stored.Position)
}

func TestAddTask_Validation(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := newStore(t)
	col := s.Columns()[0].ID

	assert.ErrorIs(t, s.AddTask(ctx, col, "x", "critical"), model.ErrInvalidPriority)
	assert.ErrorIs(t, s.AddTask(ctx, col, "   ", ""), board.ErrEmptyTitle)
	assert.ErrorIs(t, s.AddTask(ctx, board.NewLocalID(), "x", ""), board.ErrColumnNotFound)
	assert.Empty(t, mem.Calls())
	assert.Empty(t, s.Columns()[0].Tasks)
}

func TestAddTask_BootstrapFailureRollsBack(t *testing.T) {
	ctx := context.Background()

	for _, op := range []string{gatewaytest.OpCreateBoard, gatewaytest.OpCreateColumn, gatewaytest.OpCreateTask} {
		t.Run(op, func(t *testing.T) {
			s, mem, rec := newStore(t)
			mutations := countMutations(s)
			require.NoError(t, s.AddColumn(ctx, "Doing"))
			before := s.Snapshot()
			mem.FailOn(op, nil)

			err := s.AddTask(ctx, before.Columns[0].ID, "task", "")

			var actionErr *board.ActionError
			require.ErrorAs(t, err, &actionErr)
			assert.Equal(t, "add task", actionErr.Action)
			assert.ErrorIs(t, err, gatewaytest.ErrInjected)
			assert.Equal(t, before, s.Snapshot())
			assert.Zero(t, mem.BoardCount(), "partially created board must be discarded")
			assert.Zero(t, *mutations)

			notices := rec.Drain()
			require.Len(t, notices, 1)
			assert.Equal(t, notice.LevelError, notices[0].Level)
			assert.Equal(t, "Failed to add task", notices[0].Title)
		})
	}
}

func TestAddTask_BootstrapConflictAdoptsExistingBoard(t *testing.T) {
	ctx := context.Background()
	winner, mem, _ := persistedStore(t)
	winnerBoard, _ := winner.Board()

	loser := board.NewStore(testSlug, mem)
	err := loser.AddTask(ctx, loser.Columns()[0].ID, "late", "")

	require.Error(t, err)
	assert.True(t, gateway.IsConflict(err))
	b, ok := loser.Board()
	require.True(t, ok)
	assert.Equal(t, winnerBoard.ID, b.ID)
	require.Len(t, loser.Columns(), 1)
	assert.Equal(t, "first", loser.Columns()[0].Tasks[0].Title)
	assert.Equal(t, 1, mem.BoardCount())
}

func TestPersistedMutationsFireCallback(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := persistedStore(t)
	mutations := countMutations(s)

	require.NoError(t, s.AddColumn(ctx, "Review"))
	review := s.Columns()[1]
	id, ok := review.ID.Remote()
	require.True(t, ok, "new column carries the store id after creation")
	stored, found := mem.Column(id)
	require.True(t, found)
	assert.Equal(t, 1, stored.Position)

	require.NoError(t, s.RenameColumn(ctx, review.ID, "QA"))
	require.NoError(t, s.ToggleCollapse(ctx, review.ID, true))

	stored, _ = mem.Column(id)
	assert.Equal(t, "QA", stored.Title)
	assert.True(t, stored.IsCollapsed)
	assert.Equal(t, 3, *mutations)
}

func TestSetOnMutation_ReplacesCallback(t *testing.T) {
	ctx := context.Background()
	s, _, _ := persistedStore(t)
	first := countMutations(s)
	require.NoError(t, s.AddColumn(ctx, "A"))

	second := countMutations(s)
	require.NoError(t, s.AddColumn(ctx, "B"))

	assert.Equal(t, 1, *first)
	assert.Equal(t, 1, *second)
}

func TestRenameColumn_FailureRollsBack(t *testing.T) {
	ctx := context.Background()
	s, mem, rec := persistedStore(t)
	mutations := countMutations(s)
	before := s.Snapshot()
	mem.FailOn(gatewaytest.OpUpdateColumn, nil)

	err := s.RenameColumn(ctx, before.Columns[0].ID, "Renamed")

	var actionErr *board.ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, "rename column", actionErr.Action)
	assert.Equal(t, before, s.Snapshot())
	assert.Zero(t, *mutations)
	assert.Len(t, rec.Drain(), 1)
}

func TestRenameColumn_Errors(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newStore(t)

	assert.ErrorIs(t, s.RenameColumn(ctx, board.NewLocalID(), "x"), board.ErrColumnNotFound)
	assert.ErrorIs(t, s.RenameColumn(ctx, s.Columns()[0].ID, " "), board.ErrEmptyTitle)
}

func TestRemoveColumn(t *testing.T) {
	ctx := context.Background()

	t.Run("last column is kept", func(t *testing.T) {
		s, mem, _ := persistedStore(t)

		require.NoError(t, s.RemoveColumn(ctx, s.Columns()[0].ID))

		assert.Len(t, s.Columns(), 1)
		assert.Empty(t, mem.Calls())
	})

	t.Run("persisted", func(t *testing.T) {
		s, mem, _ := persistedStore(t)
		require.NoError(t, s.AddColumn(ctx, "B"))
		require.NoError(t, s.AddColumn(ctx, "C"))
		first := s.Columns()[0]
		firstID, _ := first.ID.Remote()
		taskID := first.Tasks[0].ID
		mem.ResetCalls()

		require.NoError(t, s.RemoveColumn(ctx, first.ID))

		cols := s.Columns()
		require.Len(t, cols, 2)
		assert.Equal(t, "B", cols[0].Title)
		assertContiguous(t, s)
		assert.Equal(t, []string{gatewaytest.OpDeleteColumn, gatewaytest.OpBatchUpdateColumns}, mem.Calls())
		_, found := mem.Column(firstID)
		assert.False(t, found)
		_, found = mem.Task(taskID)
		assert.False(t, found, "tasks are removed with their column")
		for _, c := range cols {
			id, _ := c.ID.Remote()
			stored, _ := mem.Column(id)
			assert.Equal(t, c.Position, stored.Position)
		}
	})

	t.Run("batch failure restores column", func(t *testing.T) {
		s, mem, _ := persistedStore(t)
		require.NoError(t, s.AddColumn(ctx, "B"))
		before := s.Snapshot()
		mem.FailOn(gatewaytest.OpBatchUpdateColumns, nil)

		err := s.RemoveColumn(ctx, before.Columns[0].ID)

		require.Error(t, err)
		assert.Equal(t, before, s.Snapshot())
	})

	t.Run("unpersisted", func(t *testing.T) {
		s, mem, _ := newStore(t)
		require.NoError(t, s.AddColumn(ctx, "B"))

		require.NoError(t, s.RemoveColumn(ctx, s.Columns()[0].ID))

		require.Len(t, s.Columns(), 1)
		assert.Equal(t, "B", s.Columns()[0].Title)
		assertContiguous(t, s)
		assert.Empty(t, mem.Calls())
	})
}

func TestMoveColumn(t *testing.T) {
	ctx := context.Background()

	t.Run("out of range", func(t *testing.T) {
		s, mem, _ := persistedStore(t)

		assert.ErrorIs(t, s.MoveColumn(ctx, 0, 3), board.ErrIndexOutOfRange)
		assert.ErrorIs(t, s.MoveColumn(ctx, -1, 0), board.ErrIndexOutOfRange)
		assert.Empty(t, mem.Calls())
	})

	t.Run("reorders and writes all positions", func(t *testing.T) {
		s, mem, _ := persistedStore(t)
		require.NoError(t, s.AddColumn(ctx, "B"))
		require.NoError(t, s.AddColumn(ctx, "C"))
		mem.ResetCalls()

		require.NoError(t, s.MoveColumn(ctx, 2, 0))

		var titles []string
		for _, c := range s.Columns() {
			titles = append(titles, c.Title)
		}
		assert.Equal(t, []string{"C", board.InitialColumnTitle, "B"}, titles)
		assertContiguous(t, s)
		batches := mem.Batches(gatewaytest.OpBatchUpdateColumns)
		require.Len(t, batches, 1)
		assert.Len(t, batches[0], 3)
		for _, c := range s.Columns() {
			id, _ := c.ID.Remote()
			stored, _ := mem.Column(id)
			assert.Equal(t, c.Position, stored.Position)
		}
	})

	t.Run("same index", func(t *testing.T) {
		s, mem, _ := persistedStore(t)
		require.NoError(t, s.AddColumn(ctx, "B"))
		mem.ResetCalls()

		require.NoError(t, s.MoveColumn(ctx, 1, 1))
		assert.Empty(t, mem.Calls())
	})
}

func TestEditTask(t *testing.T) {
	ctx := context.Background()

	t.Run("updates fields", func(t *testing.T) {
		s, mem, _ := persistedStore(t)
		task := s.Columns()[0].Tasks[0]
		title, desc, prio := "renamed", "details", model.PriorityUrgent

		require.NoError(t, s.EditTask(ctx, task.ID, board.TaskPatch{Title: &title, Description: &desc, Priority: &prio}))

		got := s.Columns()[0].Tasks[0]
		assert.Equal(t, title, got.Title)
		require.NotNil(t, got.Description)
		assert.Equal(t, desc, *got.Description)
		assert.Equal(t, prio, got.Priority)
		stored, _ := mem.Task(task.ID)
		assert.Equal(t, title, stored.Title)
		assert.Equal(t, prio, stored.Priority)
	})

	t.Run("blank description clears it", func(t *testing.T) {
		s, mem, _ := persistedStore(t)
		task := s.Columns()[0].Tasks[0]
		desc, blank := "details", "  "
		require.NoError(t, s.EditTask(ctx, task.ID, board.TaskPatch{Description: &desc}))

		require.NoError(t, s.EditTask(ctx, task.ID, board.TaskPatch{Description: &blank}))

		assert.Nil(t, s.Columns()[0].Tasks[0].Description)
		stored, _ := mem.Task(task.ID)
		assert.Nil(t, stored.Description)
		assert.Nil(t, s.Snapshot().WireColumns()[0].Tasks[0].Description)
	})

	t.Run("clear on a task without description is sent", func(t *testing.T) {
		s, mem, _ := persistedStore(t)

		require.NoError(t, s.EditTask(ctx, s.Columns()[0].Tasks[0].ID, board.TaskPatch{ClearDescription: true}))

		assert.Equal(t, 1, mem.CallCount(gatewaytest.OpUpdateTask))
	})

	t.Run("invalid priority", func(t *testing.T) {
		s, mem, _ := persistedStore(t)
		bad := model.Priority("critical")

		err := s.EditTask(ctx, s.Columns()[0].Tasks[0].ID, board.TaskPatch{Priority: &bad})

		assert.ErrorIs(t, err, model.ErrInvalidPriority)
		assert.Empty(t, mem.Calls())
	})

	t.Run("unknown task", func(t *testing.T) {
		s, _, _ := persistedStore(t)
		title := "x"

		err := s.EditTask(ctx, uuid.New(), board.TaskPatch{Title: &title})

		assert.ErrorIs(t, err, board.ErrTaskNotFound)
	})

	t.Run("failure rolls back", func(t *testing.T) {
		s, mem, _ := persistedStore(t)
		before := s.Snapshot()
		mem.FailOn(gatewaytest.OpUpdateTask, nil)
		title := "lost"

		err := s.EditTask(ctx, before.Columns[0].Tasks[0].ID, board.TaskPatch{Title: &title})

		require.Error(t, err)
		assert.Equal(t, before, s.Snapshot())
	})
}

func TestRemoveTask(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := persistedStore(t)
	col := s.Columns()[0].ID
	require.NoError(t, s.AddTask(ctx, col, "second", ""))
	require.NoError(t, s.AddTask(ctx, col, "third", ""))
	first := s.Columns()[0].Tasks[0].ID
	mem.ResetCalls()

	require.NoError(t, s.RemoveTask(ctx, first))

	tasks := s.Columns()[0].Tasks
	require.Len(t, tasks, 2)
	assert.Equal(t, "second", tasks[0].Title)
	assertContiguous(t, s)
	assert.Equal(t, []string{gatewaytest.OpDeleteTask, gatewaytest.OpBatchUpdateTasks}, mem.Calls())
	_, found := mem.Task(first)
	assert.False(t, found)
	for _, task := range tasks {
		stored, _ := mem.Task(task.ID)
		assert.Equal(t, task.Position, stored.Position)
	}

	assert.ErrorIs(t, s.RemoveTask(ctx, first), board.ErrTaskNotFound)
}

func TestMoveTask(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*board.Store, *gatewaytest.Memory, board.ColumnID, board.ColumnID) {
		s, mem, _ := persistedStore(t)
		todo := s.Columns()[0].ID
		require.NoError(t, s.AddColumn(ctx, "Done"))
		done := s.Columns()[1].ID
		require.NoError(t, s.AddTask(ctx, todo, "second", ""))
		require.NoError(t, s.AddTask(ctx, done, "shipped", ""))
		mem.ResetCalls()
		return s, mem, todo, done
	}

	t.Run("same column same index is a no-op", func(t *testing.T) {
		s, mem, todo, _ := setup(t)
		before := s.Snapshot()

		require.NoError(t, s.MoveTask(ctx, todo, todo, 1, 1))

		assert.Equal(t, before, s.Snapshot())
		assert.Empty(t, mem.Calls())
	})

	t.Run("within a column", func(t *testing.T) {
		s, mem, todo, _ := setup(t)

		require.NoError(t, s.MoveTask(ctx, todo, todo, 0, 1))

		tasks := s.Columns()[0].Tasks
		assert.Equal(t, "second", tasks[0].Title)
		assert.Equal(t, "first", tasks[1].Title)
		assertContiguous(t, s)
		batches := mem.Batches(gatewaytest.OpBatchUpdateTasks)
		require.Len(t, batches, 1)
		assert.Len(t, batches[0], 2)
	})

	t.Run("across columns", func(t *testing.T) {
		s, mem, todo, done := setup(t)
		moved := s.Columns()[0].Tasks[0]

		require.NoError(t, s.MoveTask(ctx, todo, done, 0, 0))

		cols := s.Columns()
		require.Len(t, cols[0].Tasks, 1)
		require.Len(t, cols[1].Tasks, 2)
		assert.Equal(t, moved.ID, cols[1].Tasks[0].ID)
		assertContiguous(t, s)

		doneID, _ := done.Remote()
		stored, _ := mem.Task(moved.ID)
		assert.Equal(t, doneID, stored.ColumnID)
		assert.Equal(t, 0, stored.Position)
		batches := mem.Batches(gatewaytest.OpBatchUpdateTasks)
		require.Len(t, batches, 1)
		assert.Len(t, batches[0], 3, "both affected columns are written")
	})

	t.Run("append at end of destination", func(t *testing.T) {
		s, _, todo, done := setup(t)

		require.NoError(t, s.MoveTask(ctx, todo, done, 1, 1))

		assert.Equal(t, "second", s.Columns()[1].Tasks[1].Title)
		assertContiguous(t, s)
	})

	t.Run("out of range", func(t *testing.T) {
		s, mem, todo, done := setup(t)

		assert.ErrorIs(t, s.MoveTask(ctx, todo, done, 5, 0), board.ErrIndexOutOfRange)
		assert.ErrorIs(t, s.MoveTask(ctx, todo, done, 0, 2), board.ErrIndexOutOfRange)
		assert.ErrorIs(t, s.MoveTask(ctx, todo, todo, 0, 2), board.ErrIndexOutOfRange)
		assert.Empty(t, mem.Calls())
	})

	t.Run("failure rolls back", func(t *testing.T) {
		s, mem, todo, done := setup(t)
		mutations := countMutations(s)
		before := s.Snapshot()
		mem.FailOn(gatewaytest.OpBatchUpdateTasks, nil)

		err := s.MoveTask(ctx, todo, done, 0, 1)

		var actionErr *board.ActionError
		require.ErrorAs(t, err, &actionErr)
		assert.Equal(t, "move task", actionErr.Action)
		assert.Equal(t, before, s.Snapshot())
		assert.Zero(t, *mutations)
	})
}

func TestDefensiveRecovery(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := persistedStore(t)
	b, _ := s.Board()
	// A persisted board without columns falls back to a local column.
	s.ReplaceState(&b, nil)
	local := s.Columns()[0].ID
	require.True(t, local.IsLocal())
	mem.FailOn(gatewaytest.OpCreateTask, nil)

	err := s.AddTask(ctx, local, "recovered", "")

	require.Error(t, err)
	col := s.Columns()[0]
	remote, ok := col.ID.Remote()
	require.True(t, ok, "rollback keeps the remote id of a recovered column")
	assert.Empty(t, col.Tasks)
	assert.Equal(t, 1, mem.CallCount(gatewaytest.OpCreateColumn))

	mem.Heal()
	require.NoError(t, s.AddTask(ctx, local, "recovered", ""))

	assert.Equal(t, 1, mem.CallCount(gatewaytest.OpCreateColumn), "column is created once")
	task := s.Columns()[0].Tasks[0]
	stored, found := mem.Task(task.ID)
	require.True(t, found)
	assert.Equal(t, remote, stored.ColumnID)
}

func TestRemoveBoard(t *testing.T) {
	ctx := context.Background()

	t.Run("persisted", func(t *testing.T) {
		s, mem, _ := persistedStore(t)
		mutations := countMutations(s)

		require.NoError(t, s.RemoveBoard(ctx))

		assert.Zero(t, mem.BoardCount())
		assert.IsType(t, board.Unpersisted{}, s.Lifecycle())
		require.Len(t, s.Columns(), 1)
		assert.True(t, s.Columns()[0].ID.IsLocal())
		assert.Equal(t, 1, *mutations)
	})

	t.Run("failure keeps state", func(t *testing.T) {
		s, mem, rec := persistedStore(t)
		before := s.Snapshot()
		mem.FailOn(gatewaytest.OpDeleteBoard, nil)

		err := s.RemoveBoard(ctx)

		require.Error(t, err)
		assert.Equal(t, before, s.Snapshot())
		notices := rec.Drain()
		require.Len(t, notices, 1)
		assert.Equal(t, "Failed to delete board", notices[0].Title)
	})

	t.Run("unpersisted only resets", func(t *testing.T) {
		s, mem, _ := newStore(t)
		mutations := countMutations(s)
		require.NoError(t, s.AddColumn(ctx, "B"))

		require.NoError(t, s.RemoveBoard(ctx))

		assert.Len(t, s.Columns(), 1)
		assert.Empty(t, mem.Calls())
		assert.Zero(t, *mutations)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("picks up peer changes", func(t *testing.T) {
		s, mem, _ := persistedStore(t)
		peer := board.NewStore(testSlug, mem)
		require.NoError(t, peer.Load(ctx))
		require.NoError(t, peer.AddColumn(ctx, "From peer"))

		require.NoError(t, s.Refresh(ctx))

		require.Len(t, s.Columns(), 2)
		assert.Equal(t, "From peer", s.Columns()[1].Title)
	})

	t.Run("board deleted elsewhere", func(t *testing.T) {
		s, mem, _ := persistedStore(t)
		peer := board.NewStore(testSlug, mem)
		require.NoError(t, peer.Load(ctx))
		require.NoError(t, peer.RemoveBoard(ctx))

		require.NoError(t, s.Refresh(ctx))

		assert.IsType(t, board.Unpersisted{}, s.Lifecycle())
		require.Len(t, s.Columns(), 1)
		assert.Empty(t, s.Columns()[0].Tasks)
	})

	t.Run("absent board keeps local template", func(t *testing.T) {
		s, _, _ := newStore(t)
		require.NoError(t, s.AddColumn(ctx, "Local"))

		require.NoError(t, s.Refresh(ctx))

		assert.Len(t, s.Columns(), 2)
	})

	t.Run("fetch failure keeps state", func(t *testing.T) {
		s, mem, rec := persistedStore(t)
		before := s.Snapshot()
		mem.FailOn(gatewaytest.OpGetFullBoard, nil)

		err := s.Refresh(ctx)

		require.Error(t, err)
		assert.Equal(t, before, s.Snapshot())
		notices := rec.Drain()
		require.Len(t, notices, 1)
		assert.Equal(t, "Failed to refresh board", notices[0].Title)
	})
}

func TestOnChange(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := persistedStore(t)
	var seen []int
	s.OnChange(func(snap board.Snapshot) { seen = append(seen, len(snap.Columns)) })
	mem.FailOn(gatewaytest.OpCreateColumn, nil)

	require.Error(t, s.AddColumn(ctx, "B"))

	// optimistic insert, then rollback
	assert.Equal(t, []int{2, 1}, seen)
}
