// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"taskflow/internal/errors"
	"taskflow/internal/task"
)

// FakeBackend is an in-memory implementation of backend.Backend for
// testing. Realtime selects between push-driven and optimistic behavior;
// when true, writes do not echo automatically and tests drive the
// subscription with PushSnapshot.
type FakeBackend struct {
	mu       sync.RWMutex
	Realtime bool

	users   map[string]fakeAccount // email -> account
	current *task.User
	tasks   []task.Task
	nextID  int

	// Captured subscription callbacks, most recent Subscribe wins.
	onSnapshot func([]task.Task)
	onError    func(error)

	// Call counters, incremented on entry so injected errors still
	// count as backend calls.
	SignInCount      int
	SignUpCount      int
	SignOutCount     int
	LoadTasksCount   int
	CreateTaskCount  int
	UpdateTaskCount  int
	DeleteTaskCount  int
	SubscribeCount   int
	UnsubscribeCount int

	// Error injection for testing
	SignInErr      error
	SignUpErr      error
	SignOutErr     error
	CurrentUserErr error
	LoadTasksErr   error
	CreateTaskErr  error
	UpdateTaskErr  error
	DeleteTaskErr  error
	SubscribeErr   error
}

type fakeAccount struct {
	user     task.User
	password string
}

// NewFakeBackend creates an empty fake backend without realtime push.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{users: make(map[string]fakeAccount)}
}

// AddUser seeds an account.
func (f *FakeBackend) AddUser(id, name, email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = fakeAccount{
		user:     task.User{ID: id, DisplayName: name, Email: email},
		password: password,
	}
}

// AddTask seeds a task. CreatedAt is staggered so insertion order is
// oldest-first.
func (f *FakeBackend) AddTask(id, ownerID, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.tasks = append(f.tasks, task.Task{
		ID:        id,
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: time.Unix(int64(f.nextID), 0).UTC(),
	})
}

// Tasks returns a copy of the stored tasks.
func (f *FakeBackend) Tasks() []task.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]task.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// SetCurrentUser seeds a remembered session.
func (f *FakeBackend) SetCurrentUser(u task.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = &u
}

// PushSnapshot delivers a snapshot through the captured subscription
// callback, mimicking a server push.
func (f *FakeBackend) PushSnapshot(tasks []task.Task) {
	f.mu.RLock()
	cb := f.onSnapshot
	f.mu.RUnlock()
	if cb != nil {
		cb(tasks)
	}
}

// PushError delivers a subscription failure through the captured error
// callback.
func (f *FakeBackend) PushError(err error) {
	f.mu.RLock()
	cb := f.onError
	f.mu.RUnlock()
	if cb != nil {
		cb(err)
	}
}

// CapturedOnSnapshot returns the snapshot callback from the most recent
// Subscribe. It survives unsubscription, which lets tests exercise stale
// deliveries.
func (f *FakeBackend) CapturedOnSnapshot() func([]task.Task) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.onSnapshot
}

// SupportsRealtime implements backend.Backend.
func (f *FakeBackend) SupportsRealtime() bool { return f.Realtime }

// SignIn implements backend.Backend.
func (f *FakeBackend) SignIn(ctx context.Context, email, password string) (task.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.SignInCount++
	if f.SignInErr != nil {
		return task.User{}, f.SignInErr
	}
	acct, ok := f.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok || acct.password != password {
		return task.User{}, errors.NewAuthError("invalid credentials", nil)
	}
	u := acct.user
	f.current = &u
	return u, nil
}

// SignUp implements backend.Backend.
func (f *FakeBackend) SignUp(ctx context.Context, name, email, password string) (task.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.SignUpCount++
	if f.SignUpErr != nil {
		return task.User{}, f.SignUpErr
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := f.users[email]; ok {
		return task.User{}, errors.NewAuthError("email already in use", nil)
	}
	f.nextID++
	u := task.User{ID: fmt.Sprintf("u-%d", f.nextID), DisplayName: name, Email: email}
	f.users[email] = fakeAccount{user: u, password: password}
	f.current = &u
	return u, nil
}

// SignOut implements backend.Backend.
func (f *FakeBackend) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SignOutCount++
	if f.SignOutErr != nil {
		return f.SignOutErr
	}
	f.current = nil
	return nil
}

// CurrentUser implements backend.Backend.
func (f *FakeBackend) CurrentUser(ctx context.Context) (*task.User, error) {
	if f.CurrentUserErr != nil {
		return nil, f.CurrentUserErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current == nil {
		return nil, nil
	}
	u := *f.current
	return &u, nil
}

// LoadTasks implements backend.Backend.
func (f *FakeBackend) LoadTasks(ctx context.Context, ownerID string) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.LoadTasksCount++
	if f.LoadTasksErr != nil {
		return nil, f.LoadTasksErr
	}
	var out []task.Task
	for _, t := range f.tasks {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	task.SortByCreatedAtDesc(out)
	return out, nil
}

// CreateTask implements backend.Backend.
func (f *FakeBackend) CreateTask(ctx context.Context, ownerID string, draft task.Draft) (task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.CreateTaskCount++
	if f.CreateTaskErr != nil {
		return task.Task{}, f.CreateTaskErr
	}
	f.nextID++
	t := task.Task{
		ID:          fmt.Sprintf("t-%d", f.nextID),
		OwnerID:     ownerID,
		Title:       draft.Title,
		Description: draft.Description,
		CreatedAt:   time.Unix(int64(1000+f.nextID), 0).UTC(),
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements backend.Backend.
func (f *FakeBackend) UpdateTask(ctx context.Context, id string, patch task.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.UpdateTaskCount++
	if f.UpdateTaskErr != nil {
		return f.UpdateTaskErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i] = patch.Apply(t)
			return nil
		}
	}
	return errors.NewNotFoundError("task", id)
}

// DeleteTask implements backend.Backend.
func (f *FakeBackend) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.DeleteTaskCount++
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	kept := f.tasks[:0]
	for _, t := range f.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	f.tasks = kept
	return nil
}

// Subscribe implements backend.Backend.
func (f *FakeBackend) Subscribe(ctx context.Context, ownerID string, onSnapshot func([]task.Task), onError func(error)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.SubscribeCount++
	if f.SubscribeErr != nil {
		return nil, f.SubscribeErr
	}
	f.onSnapshot = onSnapshot
	f.onError = onError
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.UnsubscribeCount++
		f.onSnapshot = nil
		f.onError = nil
	}, nil
}

// Close implements backend.Backend.
func (f *FakeBackend) Close() error { return nil }
