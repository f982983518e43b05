package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/render"
	"taskflow/internal/session"
	"taskflow/internal/task"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
type ListCmd struct{}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "Show the task list" }
func (c *ListCmd) Usage() string      { return "taskflow list" }
func (c *ListCmd) NeedsSession() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if code, ok := requireSignIn(sess, errOut); !ok {
		return code
	}
	render.Render(out, sess.Snapshot())
	return exitcode.Success
}

// requireSignIn reports whether the session is signed in, printing the
// standard notice otherwise.
func requireSignIn(sess *session.Session, errOut io.Writer) (int, bool) {
	if sess.User() == nil {
		fmt.Fprintln(errOut, "error: not logged in (run: taskflow login)")
		return exitcode.AuthError, false
	}
	return exitcode.Success, true
}

// resolveTask maps a positional argument to a task: a number selects the
// 1-based row from the current view, anything else is taken as a task id.
func resolveTask(sess *session.Session, arg string, errOut io.Writer) (task.Task, int, bool) {
	snap := sess.Snapshot()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(snap.Tasks) {
			fmt.Fprintf(errOut, "error: no task number %d\n", n)
			return task.Task{}, exitcode.UserError, false
		}
		return snap.Tasks[n-1], exitcode.Success, true
	}
	for _, t := range snap.Tasks {
		if t.ID == arg {
			return t, exitcode.Success, true
		}
	}
	fmt.Fprintf(errOut, "error: task not found: %s\n", arg)
	return task.Task{}, exitcode.UserError, false
}

// renderAfterMutation redraws the list once a mutation has settled. With
// a push backend the in-memory view lags the write, so reload first.
func renderAfterMutation(ctx context.Context, sess *session.Session, out io.Writer) int {
	if sess.Realtime() {
		if err := sess.Refresh(ctx); err != nil {
			return exitFor(err)
		}
	}
	render.Render(out, sess.Snapshot())
	return exitcode.Success
}
