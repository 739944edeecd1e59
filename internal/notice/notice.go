// Package notice carries transient, user-facing messages from the sync engine
// to whatever renders them.
package notice

import (
	"log"
)

type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

type Notice struct {
	Level       Level
	Title       string
	Description string
	Err         error
}

// Failure describes a mutation that was rolled back.
func Failure(action string, err error) Notice {
	n := Notice{Level: LevelError, Title: "Failed to " + action, Err: err}
	if err != nil {
		n.Description = err.Error()
	}
	return n
}

func Warning(title, description string) Notice {
	return Notice{Level: LevelWarning, Title: title, Description: description}
}

func Info(title, description string) Notice {
	return Notice{Level: LevelInfo, Title: title, Description: description}
}

type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = NotifierFunc(func(Notice) {})

// LogNotifier writes notices to the standard logger.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notice) {
	prefix := "ℹ️ "
	switch n.Level {
	case LevelWarning:
		prefix = "⚠️ "
	case LevelError:
		prefix = "❌"
	}
	if n.Description != "" {
		log.Printf("%s %s: %s", prefix, n.Title, n.Description)
		return
	}
	log.Printf("%s %s", prefix, n.Title)
}

// Recorder keeps every notice; used by tests and by callers that render later.
type Recorder struct {
	ch chan Notice
}

func NewRecorder(size int) *Recorder {
	return &Recorder{ch: make(chan Notice, size)}
}

// Notify records n, dropping it when the buffer is full.
func (r *Recorder) Notify(n Notice) {
	select {
	case r.ch <- n:
	default:
	}
}

// C exposes recorded notices in arrival order.
func (r *Recorder) C() <-chan Notice {
	return r.ch
}

// Drain returns every notice recorded so far.
func (r *Recorder) Drain() []Notice {
	var out []Notice
	for {
		select {
		case n := <-r.ch:
			out = append(out, n)
		default:
			return out
		}
	}
}
