// Package tasksync keeps the story ledger and the assistant's native task
// list in agreement. The two vocabularies are different sizes, so the
// mapping is lossy: in_review and blocked have no task-side equivalent and
// do not survive a round trip.
package tasksync

import "github.com/agileflowhq/agileflow/internal/types"

// StoryToTask projects a story status into the native task vocabulary.
//
// in_review collapses to in_progress and blocked collapses to pending;
// neither round-trips back.
func StoryToTask(s types.StoryStatus) types.TaskStatus {
	switch s {
	case types.StoryReady:
		return types.TaskPending
	case types.StoryInProgress:
		return types.TaskInProgress
	case types.StoryInReview:
		return types.TaskInProgress
	case types.StoryBlocked:
		return types.TaskPending
	case types.StoryCompleted:
		return types.TaskCompleted
	default:
		return types.TaskPending
	}
}

// TaskToStory projects a native task status back into the story vocabulary.
// Note this is not the inverse of StoryToTask.
func TaskToStory(s types.TaskStatus) types.StoryStatus {
	switch s {
	case types.TaskPending:
		return types.StoryReady
	case types.TaskInProgress:
		return types.StoryInProgress
	case types.TaskCompleted:
		return types.StoryCompleted
	default:
		return types.StoryReady
	}
}
