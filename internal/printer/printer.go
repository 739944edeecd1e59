// Package printer renders boards and notices for the terminal client.
package printer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"openkanban/internal/board"
	"openkanban/internal/model"
	"openkanban/internal/notice"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan, color.Bold)
	faint  = color.New(color.Faint)
)

var priorityColors = map[model.Priority]*color.Color{
	model.PriorityLow:    color.New(color.FgBlue),
	model.PriorityMedium: color.New(color.FgWhite),
	model.PriorityHigh:   color.New(color.FgYellow),
	model.PriorityUrgent: color.New(color.FgRed, color.Bold),
}

type Printer struct {
	out io.Writer
	err io.Writer
}

func New(out, errOut io.Writer) *Printer {
	return &Printer{out: out, err: errOut}
}

// Default writes to stdout and stderr.
func Default() *Printer {
	return New(os.Stdout, os.Stderr)
}

// Success prints a message in green with a checkmark prefix.
func (p *Printer) Success(format string, a ...any) {
	green.Fprintf(p.out, "✓ %s\n", fmt.Sprintf(format, a...))
}

func (p *Printer) Info(format string, a ...any) {
	fmt.Fprintf(p.out, format+"\n", a...)
}

// Warning prints a message in yellow with a warning prefix.
func (p *Printer) Warning(format string, a ...any) {
	yellow.Fprintf(p.out, "⚠️  %s\n", fmt.Sprintf(format, a...))
}

// Error prints title, explanation and suggestions to stderr and returns a
// plain error for cobra.
func (p *Printer) Error(title, explanation string, suggestions []string) error {
	red.Fprintf(p.err, "%s\n\n", title)
	if explanation != "" {
		fmt.Fprintf(p.err, "%s\n", explanation)
	}
	if len(suggestions) > 0 {
		fmt.Fprintln(p.err)
		if len(suggestions) == 1 {
			fmt.Fprintf(p.err, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(p.err, "Either:\n")
			for i, suggestion := range suggestions {
				fmt.Fprintf(p.err, "  %d. %s\n", i+1, suggestion)
			}
		}
	}
	return fmt.Errorf("%s", title)
}

// Notify implements notice.Notifier.
func (p *Printer) Notify(n notice.Notice) {
	switch n.Level {
	case notice.LevelError:
		red.Fprintf(p.err, "✗ %s", n.Title)
	case notice.LevelWarning:
		yellow.Fprintf(p.err, "⚠️  %s", n.Title)
	default:
		cyan.Fprintf(p.err, "ℹ %s", n.Title)
	}
	if n.Description != "" {
		fmt.Fprintf(p.err, ": %s", n.Description)
	}
	fmt.Fprintln(p.err)
}

// Board renders the snapshot with 1-based column and task numbers, the same
// numbers the interactive commands accept.
func (p *Printer) Board(slug string, snap board.Snapshot, viewers int) {
	status := "not saved yet"
	if b, ok := snap.Board(); ok {
		status = "saved " + b.ID.String()[:8]
	}
	cyan.Fprintf(p.out, "%s", slug)
	faint.Fprintf(p.out, "  (%s, %d %s, %d online)\n", status, snap.TaskCount(), plural(snap.TaskCount(), "task"), viewers)

	for i, col := range snap.Columns {
		marker := "▾"
		if col.IsCollapsed {
			marker = "▸"
		}
		fmt.Fprintf(p.out, "%s %d. %s", marker, i+1, col.Title)
		faint.Fprintf(p.out, " [%d]\n", len(col.Tasks))
		if col.IsCollapsed {
			continue
		}
		for j, task := range col.Tasks {
			c, ok := priorityColors[task.Priority]
			if !ok {
				c = priorityColors[model.PriorityMedium]
			}
			fmt.Fprintf(p.out, "    %d.%d ", i+1, j+1)
			c.Fprintf(p.out, "%-6s", task.Priority)
			fmt.Fprintf(p.out, " %s", task.Title)
			if task.Description != nil && strings.TrimSpace(*task.Description) != "" {
				faint.Fprintf(p.out, "  %s", firstLine(*task.Description))
			}
			fmt.Fprintln(p.out)
		}
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
