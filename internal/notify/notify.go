// Package notify carries transient status signals from the sync layer to
// the UI: informational and success notices auto-dismiss there, error
// notices persist until replaced.
package notify

import (
	"fmt"
	"io"
)

// Level classifies a notice.
type Level int

const (
	// Info is an informational notice (auto-dismiss).
	Info Level = iota
	// Success confirms a completed operation (auto-dismiss).
	Success
	// Error persists until replaced by another notice.
	Error
)

// String returns a human-readable representation of the level.
func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Notifier receives transient status notices.
type Notifier interface {
	Notify(level Level, message string)
}

// Discard is a Notifier that drops all notices.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Level, string) {}

// Writer is a Notifier that prints notices to an io.Writer, one per line.
// Error notices are prefixed so they stand out in a terminal stream.
type Writer struct {
	Out io.Writer
	// Err receives error notices when set; Out is used otherwise.
	Err io.Writer
	// Quiet suppresses info and success notices.
	Quiet bool
}

// Notify implements Notifier.
func (w *Writer) Notify(level Level, message string) {
	if level == Error {
		dst := w.Err
		if dst == nil {
			dst = w.Out
		}
		if dst != nil {
			fmt.Fprintf(dst, "error: %s\n", message)
		}
		return
	}
	if w.Out == nil || w.Quiet {
		return
	}
	fmt.Fprintln(w.Out, message)
}

// Recorder is a Notifier that captures notices, for tests.
type Recorder struct {
	Notices []Notice
}

// Notice is one captured notification.
type Notice struct {
	Level   Level
	Message string
}

// Notify implements Notifier.
func (r *Recorder) Notify(level Level, message string) {
	r.Notices = append(r.Notices, Notice{Level: level, Message: message})
}

// Last returns the most recent notice, or a zero Notice when empty.
func (r *Recorder) Last() Notice {
	if len(r.Notices) == 0 {
		return Notice{}
	}
	return r.Notices[len(r.Notices)-1]
}
