package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/errors"
	"taskflow/internal/notify"
	"taskflow/internal/session"
	"taskflow/internal/task"
	"taskflow/internal/testutil"
)

// renderSpy counts render invocations and keeps the latest snapshot.
type renderSpy struct {
	count int
	last  session.Snapshot
}

func (r *renderSpy) render(snap session.Snapshot) {
	r.count++
	r.last = snap
}

func newSession(t *testing.T, fake *testutil.FakeBackend) (*session.Session, *renderSpy, *notify.Recorder) {
	t.Helper()
	spy := &renderSpy{}
	rec := &notify.Recorder{}
	return session.New(fake, spy.render, rec), spy, rec
}

func signIn(t *testing.T, s *session.Session) {
	t.Helper()
	require.NoError(t, s.SignIn(context.Background(), "alice@example.com", "secret"))
}

func seededFake(realtime bool) *testutil.FakeBackend {
	fake := testutil.NewFakeBackend()
	fake.Realtime = realtime
	fake.AddUser("u-1", "Alice", "alice@example.com", "secret")
	return fake
}

func TestSignInLoadsTasksAndRenders(t *testing.T) {
	fake := seededFake(false)
	fake.AddTask("t-old", "u-1", "older")
	fake.AddTask("t-new", "u-1", "newer")
	fake.AddTask("t-x", "u-2", "someone else's")

	s, spy, rec := newSession(t, fake)
	signIn(t, s)

	require.NotNil(t, spy.last.User)
	assert.Equal(t, "u-1", spy.last.User.ID)
	require.Len(t, spy.last.Tasks, 2)
	assert.Equal(t, "newer", spy.last.Tasks[0].Title)
	assert.Equal(t, "older", spy.last.Tasks[1].Title)
	assert.Equal(t, "Signed in", rec.Last().Message)
}

func TestSignInBadCredentials(t *testing.T) {
	fake := seededFake(false)
	s, spy, rec := newSession(t, fake)

	err := s.SignIn(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeAuth))
	assert.Nil(t, s.User())
	assert.Zero(t, spy.count)
	assert.Equal(t, notify.Error, rec.Last().Level)
}

func TestSignInEmptyFields(t *testing.T) {
	fake := seededFake(false)
	s, _, _ := newSession(t, fake)

	err := s.SignIn(context.Background(), "  ", "secret")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
	assert.Zero(t, fake.SignInCount)
}

func TestCreateTaskOptimistic(t *testing.T) {
	fake := seededFake(false)
	s, spy, _ := newSession(t, fake)
	signIn(t, s)

	require.NoError(t, s.CreateTask(context.Background(), "  buy milk  ", "2%"))

	require.Len(t, spy.last.Tasks, 1)
	assert.Equal(t, "buy milk", spy.last.Tasks[0].Title)
	assert.Equal(t, "2%", spy.last.Tasks[0].Description)
	assert.Len(t, fake.Tasks(), 1)
}

func TestCreateTaskPushDriven(t *testing.T) {
	fake := seededFake(true)
	s, spy, rec := newSession(t, fake)
	signIn(t, s)
	renders := spy.count

	require.NoError(t, s.CreateTask(context.Background(), "buy milk", ""))

	// No local mutation until the push arrives.
	assert.Empty(t, spy.last.Tasks)
	assert.Equal(t, renders, spy.count)
	assert.Equal(t, "Task added", rec.Last().Message)

	fake.PushSnapshot(fake.Tasks())
	require.Len(t, spy.last.Tasks, 1)
	assert.Equal(t, "buy milk", spy.last.Tasks[0].Title)
}

func TestCreateTaskEmptyTitle(t *testing.T) {
	fake := seededFake(false)
	s, _, rec := newSession(t, fake)
	signIn(t, s)

	err := s.CreateTask(context.Background(), "   ", "desc")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
	// Rejected before any backend call.
	assert.Zero(t, fake.CreateTaskCount)
	assert.Empty(t, fake.Tasks())
	assert.Equal(t, "Task title required", rec.Last().Message)
}

func TestCreateTaskSignedOut(t *testing.T) {
	fake := seededFake(false)
	s, _, _ := newSession(t, fake)

	err := s.CreateTask(context.Background(), "buy milk", "")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeAuth))
}

func TestToggleComplete(t *testing.T) {
	fake := seededFake(false)
	fake.AddTask("t-1", "u-1", "buy milk")
	s, spy, _ := newSession(t, fake)
	signIn(t, s)

	require.NoError(t, s.ToggleComplete(context.Background(), "t-1"))
	assert.True(t, spy.last.Tasks[0].Completed)

	require.NoError(t, s.ToggleComplete(context.Background(), "t-1"))
	assert.False(t, spy.last.Tasks[0].Completed)
}

func TestToggleCompleteUnknownTask(t *testing.T) {
	fake := seededFake(false)
	s, _, _ := newSession(t, fake)
	signIn(t, s)

	err := s.ToggleComplete(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestDeleteTaskOptimistic(t *testing.T) {
	fake := seededFake(false)
	fake.AddTask("t-1", "u-1", "buy milk")
	fake.AddTask("t-2", "u-1", "walk dog")
	s, spy, _ := newSession(t, fake)
	signIn(t, s)

	require.NoError(t, s.DeleteTask(context.Background(), "t-1"))
	require.Len(t, spy.last.Tasks, 1)
	assert.Equal(t, "t-2", spy.last.Tasks[0].ID)
}

func TestDeleteTaskPushDriven(t *testing.T) {
	fake := seededFake(true)
	fake.AddTask("t-1", "u-1", "buy milk")
	s, spy, _ := newSession(t, fake)
	signIn(t, s)

	require.NoError(t, s.DeleteTask(context.Background(), "t-1"))
	// Still present until the push confirms.
	require.Len(t, spy.last.Tasks, 1)

	fake.PushSnapshot(fake.Tasks())
	assert.Empty(t, spy.last.Tasks)
}

func TestUpdateTaskPartialPatch(t *testing.T) {
	fake := seededFake(false)
	fake.AddTask("t-1", "u-1", "buy milk")
	s, spy, _ := newSession(t, fake)
	signIn(t, s)

	require.NoError(t, s.UpdateTask(context.Background(), "t-1", task.Patch{
		Description: task.StringPtr("from the corner shop"),
	}))

	got := spy.last.Tasks[0]
	assert.Equal(t, "buy milk", got.Title)
	assert.Equal(t, "from the corner shop", got.Description)
}

func TestEditLifecycle(t *testing.T) {
	fake := seededFake(false)
	fake.AddTask("t-1", "u-1", "buy milk")
	s, spy, _ := newSession(t, fake)
	signIn(t, s)

	require.NoError(t, s.BeginEdit("t-1"))
	assert.True(t, spy.last.Editing.Active())
	assert.Equal(t, "buy milk", spy.last.Editing.DraftTitle)

	s.CancelEdit()
	assert.False(t, spy.last.Editing.Active())
	assert.Equal(t, "buy milk", spy.last.Tasks[0].Title)

	require.NoError(t, s.BeginEdit("t-1"))
	require.NoError(t, s.SaveEdit(context.Background(), "t-1", "buy oat milk", "barista"))
	assert.False(t, spy.last.Editing.Active())
	assert.Equal(t, "buy oat milk", spy.last.Tasks[0].Title)
	assert.Equal(t, "barista", spy.last.Tasks[0].Description)
}

func TestSaveEditEmptyTitleKeepsEditing(t *testing.T) {
	fake := seededFake(false)
	fake.AddTask("t-1", "u-1", "buy milk")
	s, spy, _ := newSession(t, fake)
	signIn(t, s)

	require.NoError(t, s.BeginEdit("t-1"))
	err := s.SaveEdit(context.Background(), "t-1", "  ", "desc")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
	assert.Zero(t, fake.UpdateTaskCount)
	assert.True(t, spy.last.Editing.Active())
	assert.Equal(t, "buy milk", fake.Tasks()[0].Title)
}

func TestSignOutClearsStateAndFencesStalePush(t *testing.T) {
	fake := seededFake(true)
	fake.AddTask("t-1", "u-1", "buy milk")
	s, spy, rec := newSession(t, fake)
	signIn(t, s)
	require.Equal(t, 1, fake.SubscribeCount)

	stale := fake.CapturedOnSnapshot()
	require.NotNil(t, stale)

	require.NoError(t, s.SignOut(context.Background()))
	assert.Nil(t, spy.last.User)
	assert.Empty(t, spy.last.Tasks)
	assert.Equal(t, 1, fake.UnsubscribeCount)
	assert.Equal(t, "Signed out", rec.Last().Message)

	// A late delivery from the closed subscription must not resurrect
	// the task collection.
	renders := spy.count
	stale([]task.Task{{ID: "t-1", OwnerID: "u-1", Title: "buy milk"}})
	assert.Empty(t, s.Snapshot().Tasks)
	assert.Equal(t, renders, spy.count)
}

func TestStaleCallbackNeverLeaksAcrossUsers(t *testing.T) {
	fake := seededFake(true)
	fake.AddUser("u-2", "Bob", "bob@example.com", "hunter2")
	fake.AddTask("t-1", "u-1", "alice's secret")
	s, spy, _ := newSession(t, fake)
	signIn(t, s)

	stale := fake.CapturedOnSnapshot()
	require.NoError(t, s.SignOut(context.Background()))
	require.NoError(t, s.SignIn(context.Background(), "bob@example.com", "hunter2"))

	stale([]task.Task{{ID: "t-1", OwnerID: "u-1", Title: "alice's secret"}})
	assert.Empty(t, s.Snapshot().Tasks)
	assert.Equal(t, "u-2", spy.last.User.ID)
}

func TestReSignInReplacesSubscription(t *testing.T) {
	fake := seededFake(true)
	fake.AddUser("u-2", "Bob", "bob@example.com", "hunter2")
	s, spy, _ := newSession(t, fake)
	signIn(t, s)

	require.NoError(t, s.SignIn(context.Background(), "bob@example.com", "hunter2"))
	assert.Equal(t, 2, fake.SubscribeCount)
	assert.Equal(t, 1, fake.UnsubscribeCount)
	assert.Equal(t, "u-2", spy.last.User.ID)
}

func TestSubscriptionErrorNotifies(t *testing.T) {
	fake := seededFake(true)
	s, _, rec := newSession(t, fake)
	signIn(t, s)

	fake.PushError(errors.NewSubscriptionError("push channel closed", nil))
	assert.Equal(t, notify.Error, rec.Last().Level)
	assert.Contains(t, rec.Last().Message, "push channel closed")
}

func TestResumeRemembersSession(t *testing.T) {
	fake := seededFake(false)
	fake.AddTask("t-1", "u-1", "buy milk")
	fake.SetCurrentUser(task.User{ID: "u-1", DisplayName: "Alice", Email: "alice@example.com"})

	s, spy, _ := newSession(t, fake)
	require.NoError(t, s.Resume(context.Background()))
	require.NotNil(t, spy.last.User)
	assert.Equal(t, "u-1", spy.last.User.ID)
	require.Len(t, spy.last.Tasks, 1)
}

func TestResumeSignedOut(t *testing.T) {
	fake := seededFake(false)
	s, spy, _ := newSession(t, fake)

	require.NoError(t, s.Resume(context.Background()))
	assert.Equal(t, 1, spy.count)
	assert.Nil(t, spy.last.User)
}

func TestSignUpOpensSession(t *testing.T) {
	fake := seededFake(false)
	s, spy, rec := newSession(t, fake)

	require.NoError(t, s.SignUp(context.Background(), "Carol", "carol@example.com", "pw"))
	require.NotNil(t, spy.last.User)
	assert.Equal(t, "Carol", spy.last.User.DisplayName)
	assert.Equal(t, "Account created", rec.Last().Message)
}

func TestRefreshReloads(t *testing.T) {
	fake := seededFake(false)
	s, spy, _ := newSession(t, fake)
	signIn(t, s)

	fake.AddTask("t-1", "u-1", "added behind our back")
	require.NoError(t, s.Refresh(context.Background()))
	require.Len(t, spy.last.Tasks, 1)
}

func TestBackendErrorSurfacesNotice(t *testing.T) {
	fake := seededFake(false)
	s, _, rec := newSession(t, fake)
	signIn(t, s)

	fake.CreateTaskErr = errors.NewBackendError("create task", nil)
	err := s.CreateTask(context.Background(), "buy milk", "")
	require.Error(t, err)
	assert.Equal(t, notify.Error, rec.Last().Level)
}
