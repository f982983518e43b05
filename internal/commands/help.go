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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "taskflow help" }
func (c *HelpCmd) NeedsSession() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskflow                                           Show the task list
  taskflow list [common flags]
  taskflow add [common flags] [--desc <description>] <title...>
  taskflow done [common flags] <number|task-id>
  taskflow undo [common flags] <number|task-id>
  taskflow edit [common flags] <number|task-id> [--title <title>] [--desc <description>]
  taskflow rm [common flags] <number|task-id>
  taskflow watch [common flags]
  taskflow login [common flags] --email <email> --password <password>
  taskflow signup [common flags] --name <name> --email <email> --password <password>
  taskflow logout [common flags]
  taskflow whoami [common flags]
  taskflow help
  taskflow version

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Write debug logs to the config directory

Backends:
  With a remote configuration present, taskflow syncs through the cloud
  and pushes live updates. Without one it keeps everything in a local
  database. A demo account (demo@example.com / password123) is seeded
  in local mode.
`
