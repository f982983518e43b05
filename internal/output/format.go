// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskflow/internal/task"
)

const (
	// Separator is the separator line for list sections.
	Separator = "------------"
)

// FormatTask formats a task row.
// Format: "{N:>4}  [{X}] {TITLE}\n" (4-wide right-aligned number, two
// spaces, completion box, title). A non-empty description follows on its
// own indented line.
func FormatTask(w io.Writer, num int, t task.Task) {
	box := " "
	if t.Completed {
		box = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s\n", num, box, normalizeTitle(t.Title))
	if desc := normalizeText(t.Description); desc != "" {
		fmt.Fprintf(w, "          %s\n", desc)
	}
}

// FormatEditingTask formats the row of the task currently being edited,
// showing the draft values.
func FormatEditingTask(w io.Writer, num int, t task.Task, draftTitle, draftDescription string) {
	box := " "
	if t.Completed {
		box = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s (editing)\n", num, box, normalizeTitle(draftTitle))
	if desc := normalizeText(draftDescription); desc != "" {
		fmt.Fprintf(w, "          %s\n", desc)
	}
}

// FormatStats formats the pending/completed/total summary line.
func FormatStats(w io.Writer, tasks []task.Task) {
	completed := 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	pending := len(tasks) - completed
	fmt.Fprintf(w, "%d pending, %d completed, %d total\n", pending, completed, len(tasks))
}

// FormatUser formats the signed-in user line.
func FormatUser(w io.Writer, u task.User) {
	name := strings.TrimSpace(u.DisplayName)
	if name == "" {
		name = u.Email
	}
	fmt.Fprintf(w, "Signed in as %s <%s>\n", name, u.Email)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = normalizeText(title)
	if title == "" {
		return "(untitled)"
	}
	return title
}

// normalizeText flattens newlines and trims surrounding whitespace.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
