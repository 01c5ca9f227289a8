package index

import (
	"sort"

	"github.com/agileflowhq/agileflow/internal/fingerprint"
	"github.com/agileflowhq/agileflow/internal/types"
)

// ClassificationStatus is the outcome of classifying an incoming idea
// against the ledger.
type ClassificationStatus string

const (
	// ClassNew means no existing idea cleared the duplicate threshold.
	ClassNew ClassificationStatus = "NEW"
	// ClassRecurring means the idea matches an existing, not-yet-implemented entry.
	ClassRecurring ClassificationStatus = "RECURRING"
	// ClassImplemented means the idea matches an entry whose linked story
	// already completed (or whose status is already implemented).
	ClassImplemented ClassificationStatus = "IMPLEMENTED"
)

// IdeaInput is the caller-supplied shape of an idea from an ideation report.
type IdeaInput struct {
	Title    string
	Category string
	Files    []string
	Experts  []string
}

// Classification is the result of matching an incoming idea against the ledger.
type Classification struct {
	Status ClassificationStatus

	// ID is the matched idea's id, or the newly assigned id after Record.
	ID string

	// Score is the similarity score of the best match (1.0 for new ideas'
	// self-match semantics is not used; zero when Status is NEW).
	Score float64

	// HighConfidence is true when the match cleared the 0.90 band rather
	// than the flagged [0.75, 0.90) candidate band.
	HighConfidence bool

	// PriorStatus carries the matched idea's current ledger status so
	// callers can surface e.g. a recurrence of a rejected idea. Empty for
	// new ideas.
	PriorStatus types.IdeaStatus

	// Occurrences is the matched idea's occurrence count after Record.
	Occurrences int
}

// StoryLookup resolves a story id to its current ledger record.
// The second return is false when the story does not exist.
type StoryLookup func(storyID string) (types.Story, bool)

// Classify matches an incoming idea against every existing ledger entry and
// returns the best classification without mutating the document.
//
// Matching runs the similarity engine over all entries; ties are broken by
// highest score, then lowest numeric id, so classification is deterministic
// regardless of map iteration order. An exact fingerprint match short-circuits
// to score 1.0.
func (ix *Index) Classify(doc *Document, input IdeaInput, stories StoryLookup) Classification {
	sig := fingerprint.NewSignature(input.Title, input.Files)
	fp := fingerprint.Fingerprint(input.Title, input.Files)

	best := Classification{Status: ClassNew}
	bestScore := 0.0

	for _, id := range doc.IDs() {
		idea := doc.Ideas[id]

		score := 0.0
		if fingerprint.Fingerprint(idea.Title, idea.Files) == fp {
			score = 1.0
		} else {
			score = ix.scorer.Similarity(sig, fingerprint.NewSignature(idea.Title, idea.Files))
		}

		if !ix.scorer.IsSame(score) {
			continue
		}
		// IDs iterates in ascending numeric order, so a strict > keeps the
		// lowest id on an exact score tie.
		if score > bestScore {
			bestScore = score
			best = Classification{
				Status:         ClassRecurring,
				ID:             id,
				Score:          score,
				HighConfidence: ix.scorer.IsHighConfidence(score),
				PriorStatus:    idea.Status,
				Occurrences:    len(idea.Occurrences),
			}
		}
	}

	if best.Status == ClassRecurring && ix.isImplemented(doc.Ideas[best.ID], stories) {
		best.Status = ClassImplemented
	}
	return best
}

// isImplemented reports whether a ledger entry counts as implemented:
// either its own status says so, or its linked story has completed.
func (ix *Index) isImplemented(idea *types.Idea, stories StoryLookup) bool {
	if idea.Status == types.IdeaImplemented {
		return true
	}
	if idea.LinkedStory == "" || stories == nil {
		return false
	}
	story, ok := stories(idea.LinkedStory)
	return ok && story.Status == types.StoryCompleted
}

// Record classifies an incoming idea and applies the outcome to the
// document: new ideas are assigned the next id, recurrences (including
// implemented ones) get an occurrence appended. A recurrence of a rejected
// idea keeps its rejected status; resurrection is an explicit product
// decision, not a side effect of showing up again.
func (ix *Index) Record(doc *Document, input IdeaInput, report string, stories StoryLookup) Classification {
	c := ix.Classify(doc, input, stories)
	switch c.Status {
	case ClassNew:
		c.ID = ix.AddIdea(doc, input, report)
		c.Occurrences = 1
	default:
		// Matched ideas always exist, so RecordOccurrence cannot miss.
		_ = ix.RecordOccurrence(doc, c.ID, report, input.Experts)
		c.Occurrences = len(doc.Ideas[c.ID].Occurrences)
	}
	return c
}

// sortIdeas returns ideas ordered by id, for deterministic report output.
func sortIdeas(doc *Document) []*types.Idea {
	out := make([]*types.Idea, 0, len(doc.Ideas))
	for _, idea := range doc.Ideas {
		out = append(out, idea)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
