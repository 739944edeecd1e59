package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"openkanban/internal/board"
	"openkanban/internal/model"
	"openkanban/internal/printer"
	"openkanban/internal/transfer"

	"github.com/google/uuid"
)

var errQuit = errors.New("quit")

const replHelp = `Columns and tasks are addressed by the numbers shown on the board: 2 is the
second column, 2.1 its first task.

  show                        print the board
  col [title]                 add a column
  rename <col> <title>        rename a column
  collapse <col>              collapse a column
  expand <col>                expand a column
  rmcol <col>                 delete a column and its tasks
  mvcol <col> <to>            move a column
  add <col> [priority] <title>
                              add a task (low, medium, high, urgent)
  title <col.task> <text>     change a task title
  desc <col.task> [text]      change a task description
  prio <col.task> <priority>  change a task priority
  rm <col.task>               delete a task
  mv <col.task> <col> [pos]   move a task, to the end when pos is omitted
  refresh                     reload the board
  export [file]               save the board as JSON
  delete-board                delete the board for everyone
  quit`

// repl interprets one command line at a time against a board store.
type repl struct {
	store   *board.Store
	out     *printer.Printer
	now     func() time.Time
	viewers func() int
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(os.Stdout, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		err := r.exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		var actionErr *board.ActionError
		if err != nil && !errors.As(err, &actionErr) {
			r.out.Warning("%v", err)
		}
	}
}

func (r *repl) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]
	rest := func(from int) string { return strings.Join(args[min(from, len(args)):], " ") }

	switch cmd {
	case "help", "?":
		r.out.Info("%s", replHelp)
		return nil
	case "show", "ls":
		r.out.Board(r.store.Slug(), r.store.Snapshot(), r.viewers())
		return nil
	case "quit", "exit", "q":
		return errQuit
	case "refresh":
		return r.store.Refresh(ctx)
	case "delete-board":
		return r.store.RemoveBoard(ctx)
	case "export":
		return r.export(args)

	case "col":
		return r.store.AddColumn(ctx, rest(0))
	case "rename":
		id, err := r.column(args, 0)
		if err != nil {
			return err
		}
		return r.store.RenameColumn(ctx, id, rest(1))
	case "collapse", "expand":
		id, err := r.column(args, 0)
		if err != nil {
			return err
		}
		return r.store.ToggleCollapse(ctx, id, cmd == "collapse")
	case "rmcol":
		id, err := r.column(args, 0)
		if err != nil {
			return err
		}
		return r.store.RemoveColumn(ctx, id)
	case "mvcol":
		from, err := r.number(args, 0)
		if err != nil {
			return err
		}
		to, err := r.number(args, 1)
		if err != nil {
			return err
		}
		return r.store.MoveColumn(ctx, from-1, to-1)

	case "add":
		id, err := r.column(args, 0)
		if err != nil {
			return err
		}
		var priority model.Priority
		title := rest(1)
		if len(args) > 2 && model.Priority(args[1]).Valid() {
			priority = model.Priority(args[1])
			title = rest(2)
		}
		return r.store.AddTask(ctx, id, title, priority)
	case "title", "desc", "prio":
		ref, err := r.task(args, 0)
		if err != nil {
			return err
		}
		var patch board.TaskPatch
		text := rest(1)
		switch cmd {
		case "title":
			patch.Title = &text
		case "desc":
			patch.Description = &text
		case "prio":
			p := model.Priority(text)
			if !p.Valid() {
				return model.ErrInvalidPriority
			}
			patch.Priority = &p
		}
		return r.store.EditTask(ctx, ref.id, patch)
	case "rm":
		ref, err := r.task(args, 0)
		if err != nil {
			return err
		}
		return r.store.RemoveTask(ctx, ref.id)
	case "mv":
		ref, err := r.task(args, 0)
		if err != nil {
			return err
		}
		dst, err := r.number(args, 1)
		if err != nil {
			return err
		}
		cols := r.store.Columns()
		if dst < 1 || dst > len(cols) {
			return board.ErrColumnNotFound
		}
		target := cols[dst-1]
		pos := len(target.Tasks)
		if target.ID == ref.column {
			pos--
		}
		if len(args) > 2 {
			n, err := r.number(args, 2)
			if err != nil {
				return err
			}
			pos = n - 1
		}
		return r.store.MoveTask(ctx, ref.column, target.ID, ref.index, pos)
	}
	return fmt.Errorf("unknown command %q, try help", cmd)
}

func (r *repl) export(args []string) error {
	now := r.now()
	path := transfer.FileName(r.store.Slug(), now)
	if len(args) > 0 {
		path = args[0]
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := transfer.Encode(f, transfer.Export(r.store.Slug(), r.store.Snapshot().WireColumns(), now)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	r.out.Success("Exported to %s", path)
	return nil
}

func (r *repl) number(args []string, i int) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing argument %d", i+1)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", args[i])
	}
	return n, nil
}

func (r *repl) column(args []string, i int) (board.ColumnID, error) {
	n, err := r.number(args, i)
	if err != nil {
		return board.ColumnID{}, err
	}
	cols := r.store.Columns()
	if n < 1 || n > len(cols) {
		return board.ColumnID{}, board.ErrColumnNotFound
	}
	return cols[n-1].ID, nil
}

type taskRef struct {
	column board.ColumnID
	index  int
	id     uuid.UUID
}

// task resolves a "col.task" reference.
func (r *repl) task(args []string, i int) (taskRef, error) {
	if i >= len(args) {
		return taskRef{}, fmt.Errorf("missing task reference")
	}
	c, t, ok := strings.Cut(args[i], ".")
	if !ok {
		return taskRef{}, fmt.Errorf("%q is not a task reference like 2.1", args[i])
	}
	ci, err1 := strconv.Atoi(c)
	ti, err2 := strconv.Atoi(t)
	if err1 != nil || err2 != nil {
		return taskRef{}, fmt.Errorf("%q is not a task reference like 2.1", args[i])
	}
	cols := r.store.Columns()
	if ci < 1 || ci > len(cols) {
		return taskRef{}, board.ErrColumnNotFound
	}
	col := cols[ci-1]
	if ti < 1 || ti > len(col.Tasks) {
		return taskRef{}, board.ErrTaskNotFound
	}
	return taskRef{column: col.ID, index: ti - 1, id: col.Tasks[ti-1].ID}, nil
}
