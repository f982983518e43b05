package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/render"
	"taskflow/internal/session"
)

func init() {
	Register(&WatchCmd{})
}

// WatchCmd implements the watch command: it keeps the session open and
// redraws the list on every pushed snapshot until interrupted.
type WatchCmd struct{}

func (c *WatchCmd) Name() string       { return "watch" }
func (c *WatchCmd) Aliases() []string  { return nil }
func (c *WatchCmd) Synopsis() string   { return "Follow the task list in real time" }
func (c *WatchCmd) Usage() string      { return "taskflow watch" }
func (c *WatchCmd) NeedsSession() bool { return true }

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WatchCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if code, ok := requireSignIn(sess, errOut); !ok {
		return code
	}
	if !sess.Realtime() {
		fmt.Fprintln(errOut, "error: watch needs the remote backend (local mode has no push channel)")
		return exitcode.UserError
	}

	redraw := render.Func(out)
	sess.SetRender(redraw)
	redraw(sess.Snapshot())

	<-ctx.Done()
	return exitcode.Success
}
