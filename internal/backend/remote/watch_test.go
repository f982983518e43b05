package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/task"
)

func TestSubscribe_DeliversOrderedSnapshots(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	frames := make(chan []task.Task, 2)
	frames <- []task.Task{
		{ID: "a", OwnerID: "u1", Title: "first", CreatedAt: now.Add(-time.Minute)},
	}
	frames <- []task.Task{
		{ID: "a", OwnerID: "u1", Title: "first", CreatedAt: now.Add(-time.Minute)},
		{ID: "b", OwnerID: "u1", Title: "second", CreatedAt: now},
	}
	close(frames)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/owners/u1/tasks/watch", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		conn, err := websocket.Accept(w, r, nil)
		require.NoError(t, err)
		defer conn.Close(websocket.StatusNormalClosure, "")

		ctx := r.Context()
		for frame := range frames {
			data, err := json.Marshal(listResponse{Tasks: frame})
			require.NoError(t, err)
			require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
		}
		// Hold the connection open until the client unsubscribes.
		_, _, _ = conn.Read(ctx)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	snapshots := make(chan []task.Task, 4)
	unsub, err := c.Subscribe(context.Background(), "u1",
		func(tasks []task.Task) { snapshots <- tasks },
		func(err error) { t.Errorf("unexpected subscription error: %v", err) })
	require.NoError(t, err)
	defer unsub()

	first := receiveSnapshot(t, snapshots)
	require.Len(t, first, 1)
	assert.Equal(t, "a", first[0].ID)

	second := receiveSnapshot(t, snapshots)
	require.Len(t, second, 2)
	// Newest first, whatever order the server enumerated.
	assert.Equal(t, "b", second[0].ID)
	assert.Equal(t, "a", second[1].ID)
}

func TestSubscribe_UnsubscribeStopsCallbacks(t *testing.T) {
	connected := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		close(connected)
		_, _, _ = conn.Read(r.Context())
		conn.Close(websocket.StatusNormalClosure, "")
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	var gotError atomic.Bool
	unsub, err := c.Subscribe(context.Background(), "u1",
		func([]task.Task) {},
		func(error) { gotError.Store(true) })
	require.NoError(t, err)

	<-connected
	unsub()
	unsub() // second call must be safe

	time.Sleep(50 * time.Millisecond)
	assert.False(t, gotError.Load(), "cancelled subscription must not surface an error")
}

func receiveSnapshot(t *testing.T, ch chan []task.Task) []task.Task {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}
