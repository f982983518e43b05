// Package backend defines the uniform contract over the two persistence
// providers and selects which one is active at startup. Callers never
// branch on the mode themselves; the only capability they may query is
// SupportsRealtime.
package backend

import (
	"context"

	"taskflow/internal/task"
)

// Backend is the uniform async interface over the local store and the
// remote provider. Exactly one implementation is active per process.
type Backend interface {
	// SupportsRealtime reports whether Subscribe delivers push snapshots.
	// When false, callers apply their own optimistic mutations.
	SupportsRealtime() bool

	// SignIn authenticates an existing user.
	SignIn(ctx context.Context, email, password string) (task.User, error)

	// SignUp creates a new account and signs it in.
	SignUp(ctx context.Context, name, email, password string) (task.User, error)

	// SignOut clears the remembered session. The caller independently
	// clears its in-memory state.
	SignOut(ctx context.Context) error

	// CurrentUser returns the remembered session user, or nil when
	// signed out.
	CurrentUser(ctx context.Context) (*task.User, error)

	// LoadTasks returns the owner's tasks ordered by createdAt descending.
	LoadTasks(ctx context.Context, ownerID string) ([]task.Task, error)

	// CreateTask persists a new task. The backend assigns ID and
	// CreatedAt; the returned Task carries both.
	CreateTask(ctx context.Context, ownerID string, draft task.Draft) (task.Task, error)

	// UpdateTask merges only the supplied patch fields into the task.
	UpdateTask(ctx context.Context, id string, patch task.Patch) error

	// DeleteTask removes a task. Deleting an absent id is not an error.
	DeleteTask(ctx context.Context, id string) error

	// Subscribe opens a realtime push channel for the owner's tasks and
	// returns an unsubscribe function. Every server-visible change,
	// including this client's own writes, delivers a full ordered
	// snapshot to onSnapshot. Backends without a push channel return a
	// no-op unsubscribe and never invoke the callbacks.
	Subscribe(ctx context.Context, ownerID string, onSnapshot func([]task.Task), onError func(error)) (func(), error)

	// Close releases backend resources.
	Close() error
}
