package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"taskflow/internal/config"
	"taskflow/internal/session"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "taskflow add [--desc <description>] <title...>" }
func (c *AddCmd) NeedsSession() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "desc", "", "")
	fs.StringVar(&c.description, "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if code, ok := requireSignIn(sess, errOut); !ok {
		return code
	}
	title := strings.Join(args, " ")
	if err := sess.CreateTask(ctx, title, c.description); err != nil {
		return exitFor(err)
	}
	if cfg.Quiet {
		return exitFor(nil)
	}
	return renderAfterMutation(ctx, sess, out)
}
