package notify_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"taskflow/internal/notify"
)

func TestWriterRoutesErrorsToErr(t *testing.T) {
	var out, errOut bytes.Buffer
	w := &notify.Writer{Out: &out, Err: &errOut}

	w.Notify(notify.Info, "local mode")
	w.Notify(notify.Success, "Task added")
	w.Notify(notify.Error, "invalid credentials")

	assert.Equal(t, "local mode\nTask added\n", out.String())
	assert.Equal(t, "error: invalid credentials\n", errOut.String())
}

func TestWriterQuietKeepsErrors(t *testing.T) {
	var out bytes.Buffer
	w := &notify.Writer{Out: &out, Quiet: true}

	w.Notify(notify.Info, "local mode")
	w.Notify(notify.Success, "Task added")
	w.Notify(notify.Error, "boom")

	assert.Equal(t, "error: boom\n", out.String())
}

func TestRecorderLast(t *testing.T) {
	rec := &notify.Recorder{}
	assert.Equal(t, notify.Notice{}, rec.Last())

	rec.Notify(notify.Info, "one")
	rec.Notify(notify.Error, "two")
	assert.Equal(t, notify.Notice{Level: notify.Error, Message: "two"}, rec.Last())
	assert.Len(t, rec.Notices, 2)
}
