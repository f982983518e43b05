package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/session"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "taskflow rm <number|task-id>" }
func (c *RmCmd) NeedsSession() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if code, ok := requireSignIn(sess, errOut); !ok {
		return code
	}
	if len(args) != 1 {
		fmt.Fprintf(errOut, "error: usage: %s\n", c.Usage())
		return exitcode.UserError
	}
	t, code, ok := resolveTask(sess, args[0], errOut)
	if !ok {
		return code
	}
	if err := sess.DeleteTask(ctx, t.ID); err != nil {
		return exitFor(err)
	}
	if cfg.Quiet {
		return exitFor(nil)
	}
	return renderAfterMutation(ctx, sess, out)
}
