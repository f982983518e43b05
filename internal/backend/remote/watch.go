package remote

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/coder/websocket"

	"taskflow/internal/errors"
	"taskflow/internal/logging"
	"taskflow/internal/task"
)

// Subscribe opens the realtime watch channel for the owner's tasks. Every
// server-visible change delivers a full ordered snapshot, including
// changes caused by this client's own writes. The returned unsubscribe is
// safe to call more than once.
func (c *Client) Subscribe(ctx context.Context, ownerID string, onSnapshot func([]task.Task), onError func(error)) (func(), error) {
	httpc, err := c.authorizedClient()
	if err != nil {
		return nil, err
	}

	wctx, cancel := context.WithCancel(ctx)
	conn, _, err := websocket.Dial(wctx, c.ownerTasksURL(ownerID)+"/watch", &websocket.DialOptions{
		HTTPClient: httpc,
	})
	if err != nil {
		cancel()
		return nil, errors.NewSubscriptionError("open watch channel", err)
	}

	go c.readSnapshots(wctx, conn, onSnapshot, onError)

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			_ = conn.Close(websocket.StatusNormalClosure, "unsubscribe")
		})
	}
	return unsubscribe, nil
}

// readSnapshots decodes watch frames until the channel closes or the
// subscription is cancelled.
func (c *Client) readSnapshots(ctx context.Context, conn *websocket.Conn, onSnapshot func([]task.Task), onError func(error)) {
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return
			}
			if onError != nil {
				onError(errors.NewSubscriptionError("watch channel closed", err))
			}
			return
		}

		var frame listResponse
		if err := json.Unmarshal(data, &frame); err != nil {
			logging.Debugf("discarding malformed watch frame: %v", err)
			continue
		}
		task.SortByCreatedAtDesc(frame.Tasks)
		if onSnapshot != nil {
			onSnapshot(frame.Tasks)
		}
	}
}
