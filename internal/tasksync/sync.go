package tasksync

import (
	"errors"
	"fmt"
	"time"

	"github.com/agileflowhq/agileflow/internal/storage"
	"github.com/agileflowhq/agileflow/internal/types"
)

var (
	// ErrLedgerNotFound means the story ledger document itself is absent.
	ErrLedgerNotFound = errors.New("story file not found")

	// ErrStoryNotFound means the ledger exists but the story id does not.
	ErrStoryNotFound = errors.New("story not found")
)

// Syncer performs story<->task synchronization against the status ledger.
type Syncer struct {
	store storage.Store
	now   func() time.Time
}

// NewSyncer creates a Syncer over the given store.
func NewSyncer(store storage.Store) *Syncer {
	return &Syncer{store: store, now: time.Now}
}

// SetClock overrides the time source, for tests.
func (s *Syncer) SetClock(now func() time.Time) {
	s.now = now
}

// Filters narrows a SyncFromStatus projection. Zero-value fields mean "no
// filter". All filters match against the story's own original fields, not
// the projected task fields; in particular Status matches the story's
// status string verbatim (so "in_review" selects in_review stories even
// though their projected task status is "in_progress").
type Filters struct {
	Epic   string
	Status string
	Owner  string
}

// SyncToStatus merges the given fields onto an existing story record and
// stamps updated_at. Only the given keys change; everything else on the
// record, and every other key in the document, is preserved.
func (s *Syncer) SyncToStatus(root, storyID string, fields map[string]any) error {
	doc, err := storage.ReadStatusDocument(s.store, root)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrLedgerNotFound
		}
		return err
	}

	rec, ok := doc.Stories[storyID]
	if !ok {
		return fmt.Errorf("%s: %w", storyID, ErrStoryNotFound)
	}

	for key, val := range fields {
		rec[key] = val
	}
	rec["updated_at"] = types.Timestamp(s.now())
	doc.Stories[storyID] = rec

	return storage.WriteStatusDocument(s.store, root, doc)
}

// SyncFromStatus projects every story in the ledger into native task
// shape. An absent ledger is "no data yet": it yields an empty task list,
// not an error.
func (s *Syncer) SyncFromStatus(root string, filters Filters) ([]types.NativeTask, error) {
	doc, err := storage.ReadStatusDocument(s.store, root)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []types.NativeTask{}, nil
		}
		return nil, err
	}

	tasks := make([]types.NativeTask, 0, len(doc.Stories))
	for _, id := range doc.StoryIDs() {
		rec := doc.Stories[id]
		story := types.StoryFromRecord(id, rec)

		// Filters run against the record's own fields before projection.
		if filters.Epic != "" && story.Epic != filters.Epic {
			continue
		}
		if filters.Owner != "" && story.Owner != filters.Owner {
			continue
		}
		if filters.Status != "" && rawStatus(rec) != filters.Status {
			continue
		}

		tasks = append(tasks, types.NativeTask{
			ID:      id,
			Subject: story.Title,
			Status:  StoryToTask(story.Status),
			Owner:   story.Owner,
			Metadata: types.TaskMetadata{
				StoryID:        id,
				Epic:           story.Epic,
				OriginalStatus: rawStatus(rec),
			},
		})
	}
	return tasks, nil
}

// Reconcile applies native task statuses back into the story ledger.
//
// Tasks without a matching story are skipped silently; a story is written
// and counted only on a genuine status change, and a transition into
// completed additionally stamps completed_at. The document is written once
// after all tasks are applied, so an all-no-op call leaves the ledger file
// untouched. A missing ledger fails the whole call, distinct from the
// per-task skip.
func (s *Syncer) Reconcile(root string, tasks []types.NativeTask) (int, error) {
	doc, err := storage.ReadStatusDocument(s.store, root)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, ErrLedgerNotFound
		}
		return 0, err
	}

	updated := 0
	for _, task := range tasks {
		storyID := task.Metadata.StoryID
		if storyID == "" {
			continue
		}
		rec, ok := doc.Stories[storyID]
		if !ok {
			continue
		}

		newStatus := TaskToStory(task.Status)
		if rawStatus(rec) == string(newStatus) {
			continue
		}

		rec["status"] = string(newStatus)
		rec["updated_at"] = types.Timestamp(s.now())
		if newStatus == types.StoryCompleted {
			rec["completed_at"] = types.Timestamp(s.now())
		}
		doc.Stories[storyID] = rec
		updated++
	}

	if updated == 0 {
		return 0, nil
	}
	if err := storage.WriteStatusDocument(s.store, root, doc); err != nil {
		return 0, err
	}
	return updated, nil
}

// rawStatus returns the record's literal status string, unmapped and
// undefaulted, for verbatim comparisons.
func rawStatus(rec map[string]any) string {
	if v, ok := rec["status"].(string); ok {
		return v
	}
	return ""
}
