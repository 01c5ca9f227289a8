package index

import (
	"sort"

	"github.com/agileflowhq/agileflow/internal/types"
)

// Comparison is the set algebra between the ideas of two reports.
type Comparison struct {
	// Resolved: in A, absent from B, and implemented since.
	Resolved []string `json:"resolved"`
	// New: in B but not in A.
	New []string `json:"new"`
	// Persisted: in both reports.
	Persisted []string `json:"persisted"`
	// Dropped: in A, absent from B, and still not implemented. These
	// silently fell off the radar rather than being finished.
	Dropped []string `json:"dropped"`
}

// Compare diffs the idea populations of two reports by their occurrence
// history. Membership is "has at least one occurrence in that report".
func Compare(doc *Document, reportA, reportB string) Comparison {
	inA := reportIdeas(doc, reportA)
	inB := reportIdeas(doc, reportB)

	var cmp Comparison
	for _, id := range sortedKeys(inA) {
		switch {
		case inB[id]:
			cmp.Persisted = append(cmp.Persisted, id)
		case doc.Ideas[id].Status == types.IdeaImplemented:
			cmp.Resolved = append(cmp.Resolved, id)
		default:
			cmp.Dropped = append(cmp.Dropped, id)
		}
	}
	for _, id := range sortedKeys(inB) {
		if !inA[id] {
			cmp.New = append(cmp.New, id)
		}
	}
	return cmp
}

func reportIdeas(doc *Document, report string) map[string]bool {
	ids := make(map[string]bool)
	for id, idea := range doc.Ideas {
		for _, occ := range idea.Occurrences {
			if occ.Report == report {
				ids[id] = true
				break
			}
		}
	}
	return ids
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
