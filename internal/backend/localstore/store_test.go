package localstore

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/errors"
	"taskflow/internal/task"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "taskflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSignIn_DemoCredential(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	user, err := s.SignIn(ctx, DemoEmail, DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, "demo-1", user.ID)
	assert.Equal(t, DemoEmail, user.Email)

	remembered, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, remembered)
	assert.Equal(t, user, *remembered)
}

func TestSignIn_WrongPassword(t *testing.T) {
	s := openStore(t)

	_, err := s.SignIn(context.Background(), DemoEmail, "nope")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeAuth))
}

func TestSignUp_ThenSignInAgain(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	user, err := s.SignUp(ctx, "Ann", "ann@x.com", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Ann", user.DisplayName)

	// Signed-up identities must be able to sign back in after sign-out.
	require.NoError(t, s.SignOut(ctx))
	remembered, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, remembered)

	again, err := s.SignIn(ctx, "ann@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, "Ann", "ann@x.com", "pw")
	require.NoError(t, err)

	_, err = s.SignUp(ctx, "Other", "Ann@X.com", "pw2")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeAuth))
}

func TestCreateLoadUpdateDelete_EndToEnd(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	user, err := s.SignUp(ctx, "Ann", "ann@x.com", "pw")
	require.NoError(t, err)

	created, err := s.CreateTask(ctx, user.ID, task.Draft{Title: "Buy milk"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.ID, "m-"))
	assert.False(t, created.Completed)

	tasks, err := s.LoadTasks(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.False(t, tasks[0].Completed)

	require.NoError(t, s.UpdateTask(ctx, created.ID, task.Patch{Completed: task.BoolPtr(true)}))
	tasks, err = s.LoadTasks(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)
	assert.Equal(t, "Buy milk", tasks[0].Title, "partial merge must not touch title")

	require.NoError(t, s.DeleteTask(ctx, created.ID))
	tasks, err = s.LoadTasks(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestDeleteTask_Idempotent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	created, err := s.CreateTask(ctx, "u1", task.Draft{Title: "once"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTask(ctx, created.ID))
	require.NoError(t, s.DeleteTask(ctx, created.ID), "second delete must not raise")
	require.NoError(t, s.DeleteTask(ctx, "never-existed"))
}

func TestUpdateTask_NotFound(t *testing.T) {
	s := openStore(t)

	err := s.UpdateTask(context.Background(), "missing", task.Patch{Completed: task.BoolPtr(true)})
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestLoadTasks_OrderedNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		created, err := s.CreateTask(ctx, "u1", task.Draft{Title: title})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	tasks, err := s.LoadTasks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, ids[2], tasks[0].ID)
	assert.Equal(t, ids[1], tasks[1].ID)
	assert.Equal(t, ids[0], tasks[2].ID)
}

func TestLoadTasks_ScopedByOwner(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.CreateTask(ctx, "u1", task.Draft{Title: "mine"})
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, "u2", task.Draft{Title: "theirs"})
	require.NoError(t, err)

	tasks, err := s.LoadTasks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "mine", tasks[0].Title)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taskflow.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	user, err := s.SignUp(ctx, "Ann", "ann@x.com", "pw")
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, user.ID, task.Draft{Title: "persisted"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(ctx, path)
	require.NoError(t, err)
	defer s2.Close()

	remembered, err := s2.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, remembered)
	assert.Equal(t, user.ID, remembered.ID)

	tasks, err := s2.LoadTasks(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "persisted", tasks[0].Title)
}

func TestSubscribe_NoOp(t *testing.T) {
	s := openStore(t)

	assert.False(t, s.SupportsRealtime())
	unsub, err := s.Subscribe(context.Background(), "u1", nil, nil)
	require.NoError(t, err)
	unsub()
}
