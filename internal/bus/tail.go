package bus

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/agileflowhq/agileflow/internal/storage"
)

// DefaultScanDepth bounds how many trailing lines a verdict scan inspects.
// Approval decisions are recent by construction; anything further back is
// stale. The bound must stay comfortably above the busiest burst a single
// task exchange produces.
const DefaultScanDepth = 200

// tailChunkSize is the read granularity when walking a log backward.
const tailChunkSize = 32 * 1024

// TailLines returns up to depth trailing lines of the project's bus log,
// most recent first. The file is read backward in chunks rather than
// loaded whole, so the cost is bounded by depth, not log size. A missing
// log yields no lines and no error.
func TailLines(root string, depth int) ([]string, error) {
	if depth <= 0 {
		depth = DefaultScanDepth
	}

	f, err := os.Open(storage.BusLogPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening bus log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat bus log: %w", err)
	}

	var (
		lines   []string
		pending []byte // partial line carried across chunk boundaries
		offset  = info.Size()
	)
	buf := make([]byte, tailChunkSize)

	for offset > 0 && len(lines) < depth {
		n := int64(tailChunkSize)
		if offset < n {
			n = offset
		}
		offset -= n

		if _, err := f.ReadAt(buf[:n], offset); err != nil && err != io.EOF {
			return nil, fmt.Errorf("reading bus log: %w", err)
		}

		chunk := append(append([]byte{}, buf[:n]...), pending...)
		parts := bytes.Split(chunk, []byte{'\n'})

		// The first part may be a line continued in the previous (earlier)
		// chunk; hold it back unless we've reached the file start.
		pending = parts[0]
		for i := len(parts) - 1; i >= 1 && len(lines) < depth; i-- {
			if line := bytes.TrimSpace(parts[i]); len(line) > 0 {
				lines = append(lines, string(line))
			}
		}
	}

	if len(lines) < depth {
		if line := bytes.TrimSpace(pending); len(line) > 0 {
			lines = append(lines, string(line))
		}
	}
	return lines, nil
}

// TailMessages returns up to depth trailing messages, most recent first,
// skipping malformed lines.
func TailMessages(root string, depth int) ([]Message, error) {
	lines, err := TailLines(root, depth)
	if err != nil {
		return nil, err
	}
	msgs := make([]Message, 0, len(lines))
	for _, line := range lines {
		msg, err := Parse([]byte(line))
		if err != nil {
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
