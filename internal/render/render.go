// Package render turns session snapshots into terminal text. Rendering
// is pure: the same snapshot always yields the same output.
package render

import (
	"fmt"
	"io"
	"sync"

	"taskflow/internal/output"
	"taskflow/internal/session"
)

// Render writes the full view for a snapshot.
func Render(w io.Writer, snap session.Snapshot) {
	if snap.User == nil {
		fmt.Fprintln(w, "Not signed in. Run: taskflow login")
		return
	}

	output.FormatUser(w, *snap.User)
	output.FormatStats(w, snap.Tasks)

	if len(snap.Tasks) == 0 {
		fmt.Fprintln(w, "No tasks yet. Add one with: taskflow add")
		return
	}

	fmt.Fprintln(w, output.Separator)
	for i, t := range snap.Tasks {
		if snap.Editing.TaskID == t.ID {
			output.FormatEditingTask(w, i+1, t, snap.Editing.DraftTitle, snap.Editing.DraftDescription)
			continue
		}
		output.FormatTask(w, i+1, t)
	}
}

// Func returns a session render callback writing to w. Concurrent
// invocations are serialized so push-driven redraws don't interleave.
func Func(w io.Writer) session.RenderFunc {
	var mu sync.Mutex
	return func(snap session.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		Render(w, snap)
	}
}
