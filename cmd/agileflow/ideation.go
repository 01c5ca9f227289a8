package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agileflowhq/agileflow/internal/fingerprint"
	"github.com/agileflowhq/agileflow/internal/index"
	"github.com/agileflowhq/agileflow/internal/snapshot"
	"github.com/agileflowhq/agileflow/internal/storage"
	"github.com/agileflowhq/agileflow/internal/types"
)

var ideationCmd = &cobra.Command{
	Use:   "ideation",
	Short: "Ideation index operations",
}

// newIndex builds the ideation index engine, honoring AGILEFLOW_DEDUP_*
// environment overrides for the similarity configuration.
func newIndex() (*index.Index, error) {
	cfg, err := fingerprint.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return index.New(newStore(), cfg), nil
}

// storyLookup resolves linked stories against the status ledger so
// classification can detect already-implemented ideas. A missing ledger
// simply resolves nothing.
func storyLookup() index.StoryLookup {
	doc, err := storage.ReadStatusDocument(newStore(), rootDir)
	if err != nil {
		return func(string) (types.Story, bool) { return types.Story{}, false }
	}
	return func(id string) (types.Story, bool) {
		rec, ok := doc.Stories[id]
		if !ok {
			return types.Story{}, false
		}
		return types.StoryFromRecord(id, rec), true
	}
}

var (
	recordReport   string
	recordCategory string
	recordFiles    []string
	recordExperts  []string
)

var ideationRecordCmd = &cobra.Command{
	Use:   "record <title>",
	Short: "Record an idea from an ideation report",
	Long: `Classifies the idea against the history index. New ideas get the next
IDEA-XXXX id; recurrences append an occurrence to the existing entry.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ix, err := newIndex()
		if err != nil {
			return err
		}
		doc, err := ix.Load(rootDir)
		if err != nil {
			return err
		}

		c := ix.Record(doc, index.IdeaInput{
			Title:    args[0],
			Category: recordCategory,
			Files:    recordFiles,
			Experts:  recordExperts,
		}, recordReport, storyLookup())

		if err := ix.Save(rootDir, doc); err != nil {
			return err
		}

		switch c.Status {
		case index.ClassNew:
			fmt.Printf("%s NEW %s\n", color.GreenString("✓"), c.ID)
		case index.ClassImplemented:
			fmt.Printf("%s IMPLEMENTED %s (score %.2f, already shipped)\n",
				color.CyanString("●"), c.ID, c.Score)
		default:
			fmt.Printf("%s RECURRING %s (score %.2f, %d occurrences)\n",
				color.YellowString("●"), c.ID, c.Score, c.Occurrences)
			if c.PriorStatus == types.IdeaRejected {
				fmt.Printf("  note: %s was previously rejected\n", c.ID)
			}
		}
		return nil
	},
}

var ideationFocusCmd = &cobra.Command{
	Use:   "focus <idea-id>",
	Short: "Show one idea for focused re-ideation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ix, err := newIndex()
		if err != nil {
			return err
		}
		doc, err := ix.Load(rootDir)
		if err != nil {
			return err
		}

		idea, err := index.Focus(doc, args[0])
		if err != nil {
			if errors.Is(err, index.ErrIdeaNotFound) {
				return fmt.Errorf("%s not found; available ideas: %s",
					args[0], strings.Join(doc.IDs(), ", "))
			}
			return err
		}

		fmt.Printf("%s  %s\n", color.CyanString(idea.ID), idea.Title)
		fmt.Printf("  status:     %s\n", idea.Status)
		fmt.Printf("  category:   %s\n", idea.Category)
		fmt.Printf("  first seen: %s\n", idea.FirstSeen)
		if len(idea.Files) > 0 {
			fmt.Printf("  files:      %s\n", strings.Join(idea.Files, ", "))
		}
		if idea.LinkedStory != "" {
			fmt.Printf("  linked:     %s\n", idea.LinkedStory)
		}
		fmt.Printf("  occurrences (%d):\n", len(idea.Occurrences))
		for _, occ := range idea.Occurrences {
			fmt.Printf("    %s  %s\n", occ.Date, occ.Report)
		}
		return nil
	},
}

var ideationTrendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Aggregate trend report over the ideation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		ix, err := newIndex()
		if err != nil {
			return err
		}
		doc, err := ix.Load(rootDir)
		if err != nil {
			return err
		}

		report := index.Trends(doc)
		fmt.Printf("Implementation rate: %.0f%%\n\n", report.ImplementationRate*100)

		categories := make([]string, 0, len(report.Categories))
		for name := range report.Categories {
			categories = append(categories, name)
		}
		sort.Strings(categories)
		for _, name := range categories {
			stats := report.Categories[name]
			fmt.Printf("%-16s total %3d  implemented %3d (%.0f%%)  pending %3d\n",
				name, stats.Total, stats.Implemented, stats.ImplementationRate*100, stats.Pending)
		}

		if len(report.StaleIdeas) > 0 {
			fmt.Printf("\n%s stale ideas (4+ occurrences, still pending):\n", color.YellowString("⚠"))
			for _, idea := range report.StaleIdeas {
				fmt.Printf("  %s  %s (%d occurrences)\n", idea.ID, idea.Title, len(idea.Occurrences))
			}
		}

		if len(report.VelocityByMonth) > 0 {
			months := make([]string, 0, len(report.VelocityByMonth))
			for m := range report.VelocityByMonth {
				months = append(months, m)
			}
			sort.Strings(months)
			fmt.Println("\nVelocity by month:")
			for _, m := range months {
				fmt.Printf("  %s  %d\n", m, report.VelocityByMonth[m])
			}
		}
		return nil
	},
}

var ideationCompareCmd = &cobra.Command{
	Use:   "compare <report-a> <report-b>",
	Short: "Diff the idea populations of two reports",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ix, err := newIndex()
		if err != nil {
			return err
		}
		doc, err := ix.Load(rootDir)
		if err != nil {
			return err
		}
		printComparison(index.Compare(doc, args[0], args[1]))
		return nil
	},
}

var ideationSnapshotCmd = &cobra.Command{
	Use:   "snapshot <label>",
	Short: "Archive a point-in-time copy of the ideation index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ix, err := newIndex()
		if err != nil {
			return err
		}
		doc, err := ix.Load(rootDir)
		if err != nil {
			return err
		}

		archive, err := snapshot.Open(rootDir)
		if err != nil {
			return err
		}
		defer archive.Close()

		if err := archive.Save(doc, args[0]); err != nil {
			return err
		}
		fmt.Printf("%s snapshot %q saved (%d ideas)\n", color.GreenString("✓"), args[0], len(doc.Ideas))
		return nil
	},
}

var ideationDiffCmd = &cobra.Command{
	Use:   "diff <label-a> <label-b>",
	Short: "Diff two archived snapshots",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := snapshot.Open(rootDir)
		if err != nil {
			return err
		}
		defer archive.Close()

		cmp, err := archive.Diff(args[0], args[1])
		if err != nil {
			return err
		}
		printComparison(cmp)
		return nil
	},
}

func printComparison(cmp index.Comparison) {
	section := func(name string, ids []string) {
		fmt.Printf("%-10s %d", name, len(ids))
		if len(ids) > 0 {
			fmt.Printf("  %s", strings.Join(ids, ", "))
		}
		fmt.Println()
	}
	section("resolved", cmp.Resolved)
	section("new", cmp.New)
	section("persisted", cmp.Persisted)
	section("dropped", cmp.Dropped)
}

func init() {
	ideationRecordCmd.Flags().StringVar(&recordReport, "report", "", "report name the idea came from")
	ideationRecordCmd.Flags().StringVar(&recordCategory, "category", "", "idea category")
	ideationRecordCmd.Flags().StringSliceVar(&recordFiles, "files", nil, "affected file paths")
	ideationRecordCmd.Flags().StringSliceVar(&recordExperts, "experts", nil, "experts who raised the idea")
	_ = ideationRecordCmd.MarkFlagRequired("report")

	ideationCmd.AddCommand(ideationRecordCmd)
	ideationCmd.AddCommand(ideationFocusCmd)
	ideationCmd.AddCommand(ideationTrendsCmd)
	ideationCmd.AddCommand(ideationCompareCmd)
	ideationCmd.AddCommand(ideationSnapshotCmd)
	ideationCmd.AddCommand(ideationDiffCmd)
}
