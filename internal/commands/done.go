package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/session"
	"taskflow/internal/task"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string   { return "Mark a task completed" }
func (c *DoneCmd) Usage() string      { return "taskflow done <number|task-id>" }
func (c *DoneCmd) NeedsSession() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, sess, args, true, c.Usage(), out, errOut)
}

// UndoCmd implements the undo command.
type UndoCmd struct{}

func (c *UndoCmd) Name() string       { return "undo" }
func (c *UndoCmd) Aliases() []string  { return []string{"reopen"} }
func (c *UndoCmd) Synopsis() string   { return "Mark a task pending again" }
func (c *UndoCmd) Usage() string      { return "taskflow undo <number|task-id>" }
func (c *UndoCmd) NeedsSession() bool { return true }

func (c *UndoCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, sess, args, false, c.Usage(), out, errOut)
}

// runSetCompleted is the shared implementation for done and undo.
func runSetCompleted(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, completed bool, usage string, out, errOut io.Writer) int {
	if code, ok := requireSignIn(sess, errOut); !ok {
		return code
	}
	if len(args) != 1 {
		fmt.Fprintf(errOut, "error: usage: %s\n", usage)
		return exitcode.UserError
	}
	t, code, ok := resolveTask(sess, args[0], errOut)
	if !ok {
		return code
	}
	if err := sess.UpdateTask(ctx, t.ID, task.Patch{Completed: task.BoolPtr(completed)}); err != nil {
		return exitFor(err)
	}
	if cfg.Quiet {
		return exitFor(nil)
	}
	return renderAfterMutation(ctx, sess, out)
}
