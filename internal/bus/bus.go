// Package bus implements the append-only JSONL message bus the agents
// coordinate over. Messages are single JSON objects, one per line; the log
// is never mutated or compacted, and read back only through a bounded
// reverse scan of its tail.
package bus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/agileflowhq/agileflow/internal/storage"
	"github.com/agileflowhq/agileflow/internal/types"
)

// TypeValidation is the message type carrying a validator verdict.
const TypeValidation = "validation"

// Verdict values carried in a validation message's status field.
const (
	VerdictApproved = "approved"
	VerdictRejected = "rejected"
)

// Message is one record on the bus.
type Message struct {
	From    string `json:"from"`
	To      string `json:"to,omitempty"`
	Type    string `json:"type"`
	Status  string `json:"status,omitempty"`
	TaskID  string `json:"task_id,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
	At      string `json:"at"`
}

// Append writes a message as one line at the end of the project's bus log,
// creating the log and its directories on first use. A missing trace id is
// filled in, and At is stamped if the caller left it empty. Permission
// failures surface as errors, never panics.
//
// POSIX append semantics make concurrent appends safe without locking,
// unlike the full-document rewrites of the JSON ledgers.
func Append(root string, msg Message) error {
	if msg.From == "" {
		return fmt.Errorf("message requires a sender")
	}
	if msg.Type == "" {
		return fmt.Errorf("message requires a type")
	}
	if msg.TraceID == "" {
		msg.TraceID = uuid.New().String()
	}
	if msg.At == "" {
		msg.At = types.Timestamp(time.Now())
	}

	path := storage.BusLogPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating bus directory: %w", err)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening bus log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("appending to bus log: %w", err)
	}
	return nil
}

// Parse decodes one bus log line. Malformed lines are expected (partial
// writes, hand edits) and callers skip them.
func Parse(line []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(line, &msg); err != nil {
		return Message{}, fmt.Errorf("malformed bus line: %w", err)
	}
	return msg, nil
}
