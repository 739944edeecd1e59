// Package transfer converts boards to and from the portable JSON export
// document.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"openkanban/internal/gateway"
	"openkanban/internal/model"

	"github.com/hashicorp/go-multierror"
)

// Version is the only document version this package reads and writes.
const Version = 1

var (
	ErrInvalidJSON   = errors.New("invalid JSON file")
	ErrInvalidFormat = errors.New("invalid export format")
)

type Document struct {
	Version    int        `json:"version"`
	ExportedAt time.Time  `json:"exportedAt"`
	Board      *BoardData `json:"board"`
}

type BoardData struct {
	Slug    string       `json:"slug"`
	Columns []ColumnData `json:"columns"`
}

type ColumnData struct {
	Title    string     `json:"title"`
	Position int        `json:"position"`
	Tasks    []TaskData `json:"tasks"`
}

type TaskData struct {
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Priority    model.Priority `json:"priority"`
	Position    int            `json:"position"`
}

// FileName returns the download name of an export taken at now.
func FileName(slug string, now time.Time) string {
	return fmt.Sprintf("openkanban-%s-%d.json", slug, now.UnixMilli())
}

// Export captures columns in the given order.
func Export(slug string, columns []model.ColumnWithTasks, now time.Time) Document {
	doc := Document{
		Version:    Version,
		ExportedAt: now.UTC(),
		Board:      &BoardData{Slug: slug, Columns: make([]ColumnData, 0, len(columns))},
	}
	for _, c := range columns {
		col := ColumnData{Title: c.Title, Position: c.Position, Tasks: make([]TaskData, 0, len(c.Tasks))}
		for _, t := range c.Tasks {
			col.Tasks = append(col.Tasks, TaskData{
				Title:       t.Title,
				Description: t.Description,
				Priority:    t.Priority,
				Position:    t.Position,
			})
		}
		doc.Board.Columns = append(doc.Board.Columns, col)
	}
	return doc
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// Decode parses and validates an export document. Parse failures wrap
// ErrInvalidJSON; shape problems wrap ErrInvalidFormat and list every problem.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if err := validate(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return &doc, nil
}

func validate(doc *Document) error {
	var result *multierror.Error
	if doc.Version != Version {
		result = multierror.Append(result, fmt.Errorf("unsupported version %d", doc.Version))
	}
	if doc.Board == nil || doc.Board.Columns == nil {
		result = multierror.Append(result, errors.New("board.columns is missing"))
		return result.ErrorOrNil()
	}
	for ci, c := range doc.Board.Columns {
		if strings.TrimSpace(c.Title) == "" {
			result = multierror.Append(result, fmt.Errorf("column %d has no title", ci))
		}
		for ti, t := range c.Tasks {
			if strings.TrimSpace(t.Title) == "" {
				result = multierror.Append(result, fmt.Errorf("column %d task %d has no title", ci, ti))
			}
			if t.Priority != "" && !t.Priority.Valid() {
				result = multierror.Append(result, fmt.Errorf("column %d task %d: %w %q", ci, ti, model.ErrInvalidPriority, t.Priority))
			}
		}
	}
	return result.ErrorOrNil()
}

// Import replaces the content of the board at slug with doc, creating the
// board when needed. Steps are not transactional: a failure part way leaves
// whatever was written so far.
func Import(ctx context.Context, gw gateway.Gateway, slug string, doc *Document) (*model.FullBoard, error) {
	if doc == nil || doc.Board == nil {
		return nil, ErrInvalidFormat
	}

	b, err := gw.GetBoard(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to import board %q: %w", slug, err)
	}
	if b == nil {
		if b, err = gw.CreateBoard(ctx, slug); err != nil {
			return nil, fmt.Errorf("failed to import board %q: %w", slug, err)
		}
	} else {
		existing, err := gw.GetFullBoard(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("failed to import board %q: %w", slug, err)
		}
		if existing != nil {
			for _, c := range existing.Columns {
				if err := gw.DeleteColumn(ctx, c.ID); err != nil {
					return nil, fmt.Errorf("failed to clear board %q: %w", slug, err)
				}
			}
		}
	}

	full := &model.FullBoard{Board: *b, Columns: make([]model.ColumnWithTasks, 0, len(doc.Board.Columns))}
	for _, cd := range doc.Board.Columns {
		col, err := gw.CreateColumn(ctx, model.CreateColumnInput{BoardID: b.ID, Title: cd.Title, Position: cd.Position})
		if err != nil {
			return nil, fmt.Errorf("failed to import column %q: %w", cd.Title, err)
		}
		withTasks := model.ColumnWithTasks{Column: *col, Tasks: make([]model.Task, 0, len(cd.Tasks))}
		for _, td := range cd.Tasks {
			task, err := gw.CreateTask(ctx, model.CreateTaskInput{
				ColumnID:    col.ID,
				Title:       td.Title,
				Description: td.Description,
				Priority:    td.Priority.OrDefault(),
				Position:    td.Position,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to import task %q: %w", td.Title, err)
			}
			withTasks.Tasks = append(withTasks.Tasks, *task)
		}
		full.Columns = append(full.Columns, withTasks)
	}
	return full, nil
}
