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
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct {
	title       string
	description string
	titleSet    bool
	descSet     bool
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Edit a task's title or description" }
func (c *EditCmd) Usage() string {
	return "taskflow edit <number|task-id> [--title <title>] [--desc <description>]"
}
func (c *EditCmd) NeedsSession() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.titleSet = false
	c.descSet = false
	fs.Func("title", "", func(v string) error {
		c.title = v
		c.titleSet = true
		return nil
	})
	fs.Func("desc", "", func(v string) error {
		c.description = v
		c.descSet = true
		return nil
	})
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if code, ok := requireSignIn(sess, errOut); !ok {
		return code
	}
	if len(args) != 1 {
		fmt.Fprintf(errOut, "error: usage: %s\n", c.Usage())
		return exitcode.UserError
	}
	if !c.titleSet && !c.descSet {
		fmt.Fprintln(errOut, "error: nothing to change (pass --title or --desc)")
		return exitcode.UserError
	}

	t, code, ok := resolveTask(sess, args[0], errOut)
	if !ok {
		return code
	}

	if err := sess.BeginEdit(t.ID); err != nil {
		return exitFor(err)
	}
	draft := sess.Snapshot().Editing
	title := draft.DraftTitle
	desc := draft.DraftDescription
	if c.titleSet {
		title = c.title
	}
	if c.descSet {
		desc = c.description
	}
	if err := sess.SaveEdit(ctx, t.ID, title, desc); err != nil {
		sess.CancelEdit()
		return exitFor(err)
	}
	if cfg.Quiet {
		return exitFor(nil)
	}
	return renderAfterMutation(ctx, sess, out)
}
