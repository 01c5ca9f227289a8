package bus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/time/rate"

	"github.com/agileflowhq/agileflow/internal/storage"
)

// Watcher follows a project's bus log and delivers new messages as they
// are appended. Polling is paced with a rate limiter rather than a tight
// loop so a quiet bus costs nothing.
type Watcher struct {
	root    string
	limiter *rate.Limiter
	offset  int64
}

// NewWatcher creates a Watcher polling at most pollsPerSecond times per
// second. It starts at the current end of the log; only messages appended
// after creation are delivered.
func NewWatcher(root string, pollsPerSecond float64) *Watcher {
	if pollsPerSecond <= 0 {
		pollsPerSecond = 2
	}
	w := &Watcher{
		root:    root,
		limiter: rate.NewLimiter(rate.Limit(pollsPerSecond), 1),
	}
	if info, err := os.Stat(storage.BusLogPath(root)); err == nil {
		w.offset = info.Size()
	}
	return w
}

// Follow blocks, invoking fn for each new message until ctx is cancelled.
// Malformed lines are skipped. Returns ctx.Err() on cancellation.
func (w *Watcher) Follow(ctx context.Context, fn func(Message)) error {
	for {
		if err := w.limiter.Wait(ctx); err != nil {
			// Wait fails only for context reasons, and it bails out early
			// when the next token would arrive after the deadline. Hold
			// until the context actually ends so the contract stays
			// ctx.Err().
			<-ctx.Done()
			return ctx.Err()
		}
		if err := w.drain(fn); err != nil {
			return err
		}
	}
}

// drain reads any lines appended since the last poll.
func (w *Watcher) drain(fn func(Message)) error {
	f, err := os.Open(storage.BusLogPath(w.root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil // log not created yet
		}
		return fmt.Errorf("opening bus log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat bus log: %w", err)
	}
	if info.Size() < w.offset {
		// Log was replaced; start over from the beginning.
		w.offset = 0
	}
	if info.Size() == w.offset {
		return nil
	}

	if _, err := f.Seek(w.offset, io.SeekStart); err != nil {
		return fmt.Errorf("seeking bus log: %w", err)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("reading bus log: %w", err)
	}

	// Only newline-terminated lines are consumed; a trailing partial line
	// is an append in flight and stays for the next poll.
	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return nil
	}
	w.offset += int64(end) + 1

	for _, line := range bytes.Split(data[:end], []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		msg, err := Parse(line)
		if err != nil {
			continue
		}
		fn(msg)
	}
	return nil
}
