package index

import (
	"sort"

	"github.com/agileflowhq/agileflow/internal/types"
)

// staleOccurrenceFloor is the occurrence count at which a still-pending
// idea counts as stale: it keeps coming up but nobody acts on it.
const staleOccurrenceFloor = 4

// CategoryStats aggregates idea counts for one category.
type CategoryStats struct {
	Total              int     `json:"total"`
	Implemented        int     `json:"implemented"`
	InProgress         int     `json:"in_progress"`
	Pending            int     `json:"pending"`
	Rejected           int     `json:"rejected"`
	ImplementationRate float64 `json:"implementation_rate"`
}

// TrendsReport is the aggregate view over the whole ledger.
type TrendsReport struct {
	// ImplementationRate is implemented/total over all ideas.
	ImplementationRate float64 `json:"implementation_rate"`

	// Categories maps category name to its stats. Ideas without a
	// category aggregate under "uncategorized".
	Categories map[string]CategoryStats `json:"categories"`

	// StaleIdeas lists ideas seen at least four times that are still
	// pending, ordered by id.
	StaleIdeas []*types.Idea `json:"stale_ideas"`

	// VelocityByMonth counts occurrences per calendar month ("2026-08").
	VelocityByMonth map[string]int `json:"velocity_by_month"`
}

// Trends computes the aggregate trend report for an index document.
func Trends(doc *Document) TrendsReport {
	report := TrendsReport{
		Categories:      make(map[string]CategoryStats),
		VelocityByMonth: make(map[string]int),
	}

	implemented := 0
	for _, idea := range sortIdeas(doc) {
		category := idea.Category
		if category == "" {
			category = "uncategorized"
		}
		stats := report.Categories[category]
		stats.Total++
		switch idea.Status {
		case types.IdeaImplemented:
			stats.Implemented++
			implemented++
		case types.IdeaInProgress:
			stats.InProgress++
		case types.IdeaRejected:
			stats.Rejected++
		default:
			stats.Pending++
		}
		report.Categories[category] = stats

		if idea.Status == types.IdeaPending && len(idea.Occurrences) >= staleOccurrenceFloor {
			report.StaleIdeas = append(report.StaleIdeas, idea)
		}

		for _, occ := range idea.Occurrences {
			if month := occurrenceMonth(occ.Date); month != "" {
				report.VelocityByMonth[month]++
			}
		}
	}

	for category, stats := range report.Categories {
		if stats.Total > 0 {
			stats.ImplementationRate = float64(stats.Implemented) / float64(stats.Total)
		}
		report.Categories[category] = stats
	}
	if total := len(doc.Ideas); total > 0 {
		report.ImplementationRate = float64(implemented) / float64(total)
	}

	sort.Slice(report.StaleIdeas, func(i, j int) bool {
		return report.StaleIdeas[i].ID < report.StaleIdeas[j].ID
	})
	return report
}

// occurrenceMonth truncates a YYYY-MM-DD occurrence date to its month.
// Dates that don't carry at least a year and month are skipped.
func occurrenceMonth(date string) string {
	if len(date) < 7 {
		return ""
	}
	return date[:7]
}
