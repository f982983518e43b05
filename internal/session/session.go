// Package session owns the in-memory session state: the current user,
// the task collection, and the transient editing state. It is the single
// authority for all three; the active backend owns durable storage.
//
// Mutations are optimistic when the backend has no push channel, and
// push-driven when it does: with a live subscription the subscription is
// the sole writer of the task collection, so the operation's own echo
// cannot double-apply.
package session

import (
	"context"
	"strings"
	"sync"

	"taskflow/internal/backend"
	"taskflow/internal/errors"
	"taskflow/internal/logging"
	"taskflow/internal/notify"
	"taskflow/internal/task"
)

// EditingState is the transient inline-edit state. Zero value means no
// task is being edited.
type EditingState struct {
	TaskID           string
	DraftTitle       string
	DraftDescription string
}

// Active reports whether an edit is in progress.
func (e EditingState) Active() bool { return e.TaskID != "" }

// Snapshot is the immutable state handed to the renderer after every
// state change.
type Snapshot struct {
	User    *task.User
	Tasks   []task.Task
	Editing EditingState
}

// RenderFunc consumes a snapshot. It is invoked synchronously after every
// state change and must not call back into mutating session methods.
type RenderFunc func(Snapshot)

// Session is the sync controller. All exported methods are safe for
// concurrent use; the subscription reader runs on its own goroutine.
type Session struct {
	mu       sync.Mutex
	backend  backend.Backend
	render   RenderFunc
	notifier notify.Notifier

	user    *task.User
	tasks   []task.Task
	editing EditingState

	// gen identifies the active sign-in session. Async results carrying
	// a stale generation are discarded instead of resurrecting state.
	gen   uint64
	unsub func()
}

// New creates a session bound to the active backend.
func New(b backend.Backend, render RenderFunc, notifier notify.Notifier) *Session {
	if render == nil {
		render = func(Snapshot) {}
	}
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Session{backend: b, render: render, notifier: notifier}
}

// SetRender replaces the render callback. Used by long-running views.
func (s *Session) SetRender(render RenderFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if render == nil {
		render = func(Snapshot) {}
	}
	s.render = render
}

// Realtime reports whether the active backend pushes changes.
func (s *Session) Realtime() bool { return s.backend.SupportsRealtime() }

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// User returns the signed-in user, or nil.
func (s *Session) User() *task.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Resume restores the remembered session, if any, and loads its tasks.
// Without a remembered user the session stays signed out; that is not an
// error.
func (s *Session) Resume(ctx context.Context) error {
	user, err := s.backend.CurrentUser(ctx)
	if err != nil {
		s.notifier.Notify(notify.Error, errors.GetUserMessage(err))
		return err
	}
	if user == nil {
		s.renderNow()
		return nil
	}
	return s.start(ctx, *user)
}

// SignIn authenticates and opens the session. Auth failures leave the
// session signed out.
func (s *Session) SignIn(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		err := errors.NewValidationError("email and password required")
		s.notifier.Notify(notify.Error, errors.GetUserMessage(err))
		return err
	}

	user, err := s.backend.SignIn(ctx, email, password)
	if err != nil {
		s.notifier.Notify(notify.Error, errors.GetUserMessage(err))
		return err
	}
	if err := s.start(ctx, user); err != nil {
		return err
	}
	s.notifier.Notify(notify.Success, "Signed in")
	return nil
}

// SignUp creates an account and opens the session.
func (s *Session) SignUp(ctx context.Context, name, email, password string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		err := errors.NewValidationError("name, email and password required")
		s.notifier.Notify(notify.Error, errors.GetUserMessage(err))
		return err
	}

	user, err := s.backend.SignUp(ctx, name, email, password)
	if err != nil {
		s.notifier.Notify(notify.Error, errors.GetUserMessage(err))
		return err
	}
	if err := s.start(ctx, user); err != nil {
		return err
	}
	s.notifier.Notify(notify.Success, "Account created")
	return nil
}

// start transitions to SignedIn: closes any prior subscription, bumps the
// session generation, loads the initial task collection, and opens the
// push channel when the backend has one.
func (s *Session) start(ctx context.Context, user task.User) error {
	s.mu.Lock()
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
	s.gen++
	gen := s.gen
	s.user = &user
	s.tasks = nil
	s.editing = EditingState{}
	s.mu.Unlock()

	tasks, err := s.backend.LoadTasks(ctx, user.ID)
	if err != nil {
		s.notifier.Notify(notify.Error, errors.GetUserMessage(err))
		return err
	}
	s.applyTasks(gen, tasks)

	if s.backend.SupportsRealtime() {
		unsub, err := s.backend.Subscribe(ctx, user.ID,
			func(snapshot []task.Task) { s.applyTasks(gen, snapshot) },
			func(err error) { s.notifier.Notify(notify.Error, errors.GetUserMessage(err)) },
		)
		if err != nil {
			s.notifier.Notify(notify.Error, errors.GetUserMessage(err))
			return err
		}
		s.mu.Lock()
		if s.gen == gen {
			s.unsub = unsub
		} else {
			// Signed out while subscribing; don't leak the listener.
			unsub()
		}
		s.mu.Unlock()
	}
	return nil
}

// SignOut closes the subscription, clears the remembered session, and
// resets in-memory state. In-flight operations from the old session are
// fenced off by the generation bump.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
	s.gen++
	s.user = nil
	s.tasks = nil
	s.editing = EditingState{}
	s.renderLocked()
	s.mu.Unlock()

	if err := s.backend.SignOut(ctx); err != nil {
		s.notifier.Notify(notify.Error, errors.GetUserMessage(err))
		return err
	}
	s.notifier.Notify(notify.Info, "Signed out")
	return nil
}

// CreateTask validates and persists a new task. Validation happens before
// any backend call.
func (s *Session) CreateTask(ctx context.Context, title, description string) error {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		err := errors.NewValidationError("Task title required")
		s.notifier.Notify(notify.Error, errors.GetUserMessage(err))
		return err
	}

	user, gen, err := s.requireUser()
	if err != nil {
		return err
	}

	created, err := s.backend.CreateTask(ctx, user.ID, task.Draft{Title: title, Description: description})
	if err != nil {
		s.notifier.Notify(notify.Error, errors.GetUserMessage(err))
		return err
	}

	if s.backend.SupportsRealtime() {
		// The write echoes back through the subscription; mutating here
		// would double-apply.
		s.notifier.Notify(notify.Success, "Task added")
		return nil
	}

	s.mu.Lock()
	if s.gen == gen {
		s.tasks = append(s.tasks, created)
		task.SortByCreatedAtDesc(s.tasks)
		s.renderLocked()
	} else {
		logging.Debugf("discarding create result from stale session")
	}
	s.mu.Unlock()
	return nil
}

// UpdateTask merges a partial patch into the task.
func (s *Session) UpdateTask(ctx context.Context, id string, patch task.Patch) error {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		err := errors.NewValidationError("Task title required")
		s.notifier.Notify(notify.Error, errors.GetUserMessage(err))
		return err
	}

	_, gen, err := s.requireUser()
	if err != nil {
		return err
	}

	if err := s.backend.UpdateTask(ctx, id, patch); err != nil {
		s.notifier.Notify(notify.Error, errors.GetUserMessage(err))
		return err
	}

	if s.backend.SupportsRealtime() {
		return nil
	}

	s.mu.Lock()
	if s.gen == gen {
		for i, t := range s.tasks {
			if t.ID == id {
				s.tasks[i] = patch.Apply(t)
				break
			}
		}
		s.renderLocked()
	}
	s.mu.Unlock()
	return nil
}

// ToggleComplete flips a task's completed flag.
func (s *Session) ToggleComplete(ctx context.Context, id string) error {
	s.mu.Lock()
	var completed *bool
	for _, t := range s.tasks {
		if t.ID == id {
			completed = task.BoolPtr(!t.Completed)
			break
		}
	}
	s.mu.Unlock()

	if completed == nil {
		err := errors.NewNotFoundError("task", id)
		s.notifier.Notify(notify.Error, errors.GetUserMessage(err))
		return err
	}
	return s.UpdateTask(ctx, id, task.Patch{Completed: completed})
}

// DeleteTask removes a task. Deleting an already-absent id does not
// surface to the caller.
func (s *Session) DeleteTask(ctx context.Context, id string) error {
	_, gen, err := s.requireUser()
	if err != nil {
		return err
	}

	if err := s.backend.DeleteTask(ctx, id); err != nil {
		s.notifier.Notify(notify.Error, errors.GetUserMessage(err))
		return err
	}

	if s.backend.SupportsRealtime() {
		return nil
	}

	s.mu.Lock()
	if s.gen == gen {
		kept := s.tasks[:0]
		for _, t := range s.tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		s.tasks = kept
		s.renderLocked()
	}
	s.mu.Unlock()
	return nil
}

// Refresh reloads the task collection in one shot.
func (s *Session) Refresh(ctx context.Context) error {
	user, gen, err := s.requireUser()
	if err != nil {
		return err
	}
	tasks, err := s.backend.LoadTasks(ctx, user.ID)
	if err != nil {
		s.notifier.Notify(notify.Error, errors.GetUserMessage(err))
		return err
	}
	s.applyTasks(gen, tasks)
	return nil
}

// BeginEdit enters inline-edit mode for a task, seeding the drafts with
// its current values.
func (s *Session) BeginEdit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if t.ID == id {
			s.editing = EditingState{TaskID: id, DraftTitle: t.Title, DraftDescription: t.Description}
			s.renderLocked()
			return nil
		}
	}
	return errors.NewNotFoundError("task", id)
}

// CancelEdit leaves edit mode without saving.
func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = EditingState{}
	s.renderLocked()
}

// SaveEdit persists the edited title and description, then leaves edit
// mode.
func (s *Session) SaveEdit(ctx context.Context, id, title, description string) error {
	err := s.UpdateTask(ctx, id, task.Patch{
		Title:       task.StringPtr(strings.TrimSpace(title)),
		Description: task.StringPtr(strings.TrimSpace(description)),
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.editing = EditingState{}
	s.renderLocked()
	s.mu.Unlock()
	return nil
}

// Close releases the subscription, leaving durable state alone.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
}

// applyTasks installs a task snapshot unless it belongs to a stale
// session generation.
func (s *Session) applyTasks(gen uint64, tasks []task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		logging.Debugf("discarding task snapshot from stale session generation %d (current %d)", gen, s.gen)
		return
	}
	task.SortByCreatedAtDesc(tasks)
	s.tasks = tasks
	s.renderLocked()
}

// requireUser returns the signed-in user and the current generation, or
// an auth error when signed out.
func (s *Session) requireUser() (task.User, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		err := errors.NewAuthError("not signed in", nil)
		s.notifier.Notify(notify.Error, errors.GetUserMessage(err))
		return task.User{}, 0, err
	}
	return *s.user, s.gen, nil
}

func (s *Session) snapshotLocked() Snapshot {
	tasks := make([]task.Task, len(s.tasks))
	copy(tasks, s.tasks)
	var user *task.User
	if s.user != nil {
		u := *s.user
		user = &u
	}
	return Snapshot{User: user, Tasks: tasks, Editing: s.editing}
}

// renderLocked invokes the render callback with a fresh snapshot. Caller
// holds the mutex.
func (s *Session) renderLocked() {
	s.render(s.snapshotLocked())
}

func (s *Session) renderNow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderLocked()
}
