package backend

import (
	"context"
	"fmt"

	"taskflow/internal/backend/localstore"
	"taskflow/internal/backend/remote"
	"taskflow/internal/config"
	"taskflow/internal/logging"
	"taskflow/internal/notify"
)

// Select picks exactly one backend based on configuration availability.
// Remote is chosen only when the remote identifiers are present and
// non-placeholder; a remote backend that fails to initialize degrades to
// the local store rather than failing startup. The selection outcome is
// reported through the notifier.
func Select(ctx context.Context, cfg *config.Config, n notify.Notifier) (Backend, config.BackendMode, error) {
	if n == nil {
		n = notify.Discard
	}

	mode := config.Mode(cfg.Remote)
	if mode == config.ModeRemote {
		b, err := remote.New(ctx, cfg)
		if err == nil {
			n.Notify(notify.Success, "remote backend initialized, using cloud sync")
			return b, config.ModeRemote, nil
		}
		logging.Debugf("remote init failed, falling back to local: %v", err)
		n.Notify(notify.Error, fmt.Sprintf("failed to init remote backend, running in local mode: %v", err))
	} else {
		n.Notify(notify.Info, "remote config not provided, running in local mode (no cloud)")
	}

	if err := cfg.EnsureDir(); err != nil {
		return nil, config.ModeLocal, err
	}
	local, err := localstore.Open(ctx, cfg.StorePath())
	if err != nil {
		return nil, config.ModeLocal, err
	}
	return local, config.ModeLocal, nil
}
