package types

import (
	"testing"
	"time"
)

func TestStatusValidity(t *testing.T) {
	for _, s := range []StoryStatus{StoryReady, StoryInProgress, StoryInReview, StoryBlocked, StoryCompleted} {
		if !s.IsValid() {
			t.Errorf("StoryStatus(%q).IsValid() = false", s)
		}
	}
	if StoryStatus("done").IsValid() || StoryStatus("").IsValid() {
		t.Error("unknown story statuses must be invalid")
	}

	for _, s := range []TaskStatus{TaskPending, TaskInProgress, TaskCompleted} {
		if !s.IsValid() {
			t.Errorf("TaskStatus(%q).IsValid() = false", s)
		}
	}
	if TaskStatus("blocked").IsValid() {
		t.Error("blocked is a story status, not a task status")
	}

	for _, s := range []IdeaStatus{IdeaPending, IdeaInProgress, IdeaImplemented, IdeaRejected} {
		if !s.IsValid() {
			t.Errorf("IdeaStatus(%q).IsValid() = false", s)
		}
	}
	if IdeaStatus("in_progress").IsValid() {
		t.Error("idea statuses are hyphenated, not underscored")
	}
}

func TestStoryFromRecord(t *testing.T) {
	rec := map[string]any{
		"title":      "Login flow",
		"status":     "in_review",
		"epic":       "EP-01",
		"owner":      "alice",
		"updated_at": "2026-08-01T00:00:00Z",
		"points":     float64(3), // unknown field, ignored
	}
	s := StoryFromRecord("US-0001", rec)
	if s.ID != "US-0001" || s.Title != "Login flow" || s.Status != StoryInReview {
		t.Errorf("StoryFromRecord = %+v", s)
	}
	if s.Epic != "EP-01" || s.Owner != "alice" {
		t.Errorf("StoryFromRecord fields = %+v", s)
	}
}

func TestStoryFromRecordDefaultsStatus(t *testing.T) {
	tests := []struct {
		name string
		rec  map[string]any
	}{
		{"missing status", map[string]any{"title": "x"}},
		{"unknown status", map[string]any{"status": "doing"}},
		{"non-string status", map[string]any{"status": 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if s := StoryFromRecord("US-0001", tt.rec); s.Status != StoryReady {
				t.Errorf("status = %q, want ready", s.Status)
			}
		})
	}
}

func TestIdeaValidate(t *testing.T) {
	valid := Idea{
		ID:          "IDEA-0001",
		Title:       "Add rate limiting",
		Status:      IdeaPending,
		Occurrences: []Occurrence{{Report: "r1", Date: "2026-08-01"}},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(*Idea)
	}{
		{"blank title", func(i *Idea) { i.Title = "  " }},
		{"bad status", func(i *Idea) { i.Status = "done" }},
		{"no occurrences", func(i *Idea) { i.Occurrences = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idea := valid
			tt.mutate(&idea)
			if err := idea.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestTimestampFormats(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)
	at := time.Date(2026, 8, 24, 23, 30, 0, 0, loc)

	if got := Timestamp(at); got != "2026-08-25T07:30:00Z" {
		t.Errorf("Timestamp() = %q", got)
	}
	if got := DateStamp(at); got != "2026-08-25" {
		t.Errorf("DateStamp() = %q, timestamps normalize to UTC first", got)
	}
}
