// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/errors"
	"taskflow/internal/exitcode"
	"taskflow/internal/session"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsSession returns true if the command operates on a session.
	// Commands like help and version return false.
	NeedsSession() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths).
	// sess is nil if NeedsSession() returns false; otherwise it has
	// already been resumed against the active backend.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int
}

// exitFor maps an error to an exit code. Notices have already been
// printed by the session's notifier, so callers only translate.
func exitFor(err error) int {
	switch {
	case err == nil:
		return exitcode.Success
	case errors.IsErrorType(err, errors.ErrorTypeAuth):
		return exitcode.AuthError
	case errors.IsErrorType(err, errors.ErrorTypeValidation),
		errors.IsErrorType(err, errors.ErrorTypeNotFound):
		return exitcode.UserError
	default:
		return exitcode.BackendError
	}
}
