package bus

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agileflowhq/agileflow/internal/storage"
)

func TestWatcherDeliversOnlyNewMessages(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Append(root, Message{From: "a", Type: "status", TaskID: "OLD"}))

	// High poll rate keeps the test fast; production uses ~2/s.
	watcher := NewWatcher(root, 100)

	require.NoError(t, Append(root, Message{From: "a", Type: "status", TaskID: "NEW-1"}))
	require.NoError(t, Append(root, Message{From: "a", Type: "status", TaskID: "NEW-2"}))

	ctx, cancel := context.WithCancel(context.Background())
	var got []string
	err := watcher.Follow(ctx, func(msg Message) {
		got = append(got, msg.TaskID)
		if len(got) == 2 {
			cancel()
		}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"NEW-1", "NEW-2"}, got,
		"messages before the watcher existed are not replayed")
}

func TestWatcherStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewWatcher(t.TempDir(), 100).Follow(ctx, func(Message) {
		t.Error("no messages were appended, fn must not fire")
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// The poll rate is low enough here that the limiter itself notices the
// deadline; Follow must still honor the ctx.Err() contract rather than
// leak the limiter's own error.
func TestWatcherSlowPollStillReturnsContextError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := NewWatcher(t.TempDir(), 0.1).Follow(ctx, func(Message) {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWatcherLeavesPartialLineForNextPoll(t *testing.T) {
	root := t.TempDir()
	watcher := NewWatcher(root, 100)

	require.NoError(t, Append(root, Message{From: "a", Type: "status", TaskID: "FULL-1"}))

	// An append in flight: bytes on disk but no terminating newline yet.
	appendRaw(t, root, `{"from":"a","type":"status","task_id":"FULL-2"`)

	var got []string
	collect := func(msg Message) { got = append(got, msg.TaskID) }

	require.NoError(t, watcher.drain(collect))
	assert.Equal(t, []string{"FULL-1"}, got, "a line without its newline is not consumed yet")

	// The writer finishes the line. The earlier partial read must not have
	// advanced past it or reset the offset, so it arrives exactly once.
	appendRaw(t, root, ",\"at\":\"2026-08-24T00:00:00Z\"}\n")

	require.NoError(t, watcher.drain(collect))
	assert.Equal(t, []string{"FULL-1", "FULL-2"}, got)

	require.NoError(t, watcher.drain(collect))
	assert.Equal(t, []string{"FULL-1", "FULL-2"}, got, "nothing replays once the log is drained")
}

func appendRaw(t *testing.T, root, s string) {
	t.Helper()
	f, err := os.OpenFile(storage.BusLogPath(root), os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(s)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}
