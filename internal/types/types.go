package types

import (
	"fmt"
	"strings"
	"time"
)

// StoryStatus represents the lifecycle state of a story in the status ledger.
type StoryStatus string

const (
	StoryReady      StoryStatus = "ready"
	StoryInProgress StoryStatus = "in_progress"
	StoryInReview   StoryStatus = "in_review"
	StoryBlocked    StoryStatus = "blocked"
	StoryCompleted  StoryStatus = "completed"
)

// IsValid checks if the story status value is valid
func (s StoryStatus) IsValid() bool {
	switch s {
	case StoryReady, StoryInProgress, StoryInReview, StoryBlocked, StoryCompleted:
		return true
	}
	return false
}

// TaskStatus represents the state of a native task as seen by the
// assistant's own task list. It is a smaller vocabulary than StoryStatus;
// the mapping between the two is intentionally lossy (see tasksync).
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// IsValid checks if the task status value is valid
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// Story is the typed view of a story record from status.json.
// Records are persisted as free-form JSON objects so unknown keys survive
// round trips; this struct carries only the fields the core reads.
type Story struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Status      StoryStatus `json:"status"`
	Epic        string      `json:"epic,omitempty"`
	Owner       string      `json:"owner,omitempty"`
	AssignedTo  string      `json:"assigned_to,omitempty"`
	UpdatedAt   string      `json:"updated_at,omitempty"`
	CompletedAt string      `json:"completed_at,omitempty"`
}

// StoryFromRecord builds a typed Story view from a raw ledger record.
// A missing or unrecognized status defaults to ready.
func StoryFromRecord(id string, rec map[string]any) Story {
	s := Story{
		ID:          id,
		Title:       stringField(rec, "title"),
		Status:      StoryStatus(stringField(rec, "status")),
		Epic:        stringField(rec, "epic"),
		Owner:       stringField(rec, "owner"),
		AssignedTo:  stringField(rec, "assigned_to"),
		UpdatedAt:   stringField(rec, "updated_at"),
		CompletedAt: stringField(rec, "completed_at"),
	}
	if !s.Status.IsValid() {
		s.Status = StoryReady
	}
	return s
}

func stringField(rec map[string]any, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}

// TaskMetadata links a projected task back to its originating story.
type TaskMetadata struct {
	StoryID        string `json:"story_id"`
	Epic           string `json:"epic,omitempty"`
	OriginalStatus string `json:"original_status,omitempty"`
}

// NativeTask is the ephemeral task shape exchanged with the assistant's
// native task list. The core never persists these; they exist only as the
// output of a story projection or the input to a reconciliation pass.
type NativeTask struct {
	ID       string       `json:"id"`
	Subject  string       `json:"subject"`
	Status   TaskStatus   `json:"status"`
	Owner    string       `json:"owner,omitempty"`
	Metadata TaskMetadata `json:"metadata"`
}

// IdeaStatus represents the lifecycle state of an idea in the ideation index.
//
// Transitions are forward-only and externally driven:
// pending -> in-progress -> implemented, or pending -> rejected (terminal).
// Re-appearance of a rejected idea records an occurrence but does not
// resurrect the status.
type IdeaStatus string

const (
	IdeaPending     IdeaStatus = "pending"
	IdeaInProgress  IdeaStatus = "in-progress"
	IdeaImplemented IdeaStatus = "implemented"
	IdeaRejected    IdeaStatus = "rejected"
)

// IsValid checks if the idea status value is valid
func (s IdeaStatus) IsValid() bool {
	switch s {
	case IdeaPending, IdeaInProgress, IdeaImplemented, IdeaRejected:
		return true
	}
	return false
}

// Occurrence records one sighting of an idea in an ideation report.
type Occurrence struct {
	Report  string   `json:"report"`
	Date    string   `json:"date"`
	Experts []string `json:"experts,omitempty"`
}

// Idea is one entry in the ideation index ledger.
type Idea struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Category    string       `json:"category,omitempty"`
	Files       []string     `json:"files,omitempty"`
	Status      IdeaStatus   `json:"status"`
	FirstSeen   string       `json:"first_seen"`
	Occurrences []Occurrence `json:"occurrences"`
	LinkedStory string       `json:"linked_story,omitempty"`
	LinkedEpic  string       `json:"linked_epic,omitempty"`
}

// Validate checks if the idea has valid field values
func (i *Idea) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if !i.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", i.Status)
	}
	if len(i.Occurrences) == 0 {
		return fmt.Errorf("idea must have at least one occurrence")
	}
	return nil
}

// Timestamp formats a time the way the ledgers store it (RFC 3339 / ISO-8601).
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// DateStamp formats a time as a calendar date, used for first_seen and
// occurrence dates.
func DateStamp(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
