package main

import (
	"github.com/spf13/cobra"

	"github.com/agileflowhq/agileflow/internal/storage"
)

var rootDir string

var rootCmd = &cobra.Command{
	Use:   "agileflow",
	Short: "Multi-agent workflow orchestration toolkit",
	Long: `AgileFlow coordinates a simulated multi-agent team: story/task status
synchronization, ideation deduplication and history, quality gates, and
the agent message bus.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "project root directory")

	rootCmd.AddCommand(storyCmd)
	rootCmd.AddCommand(ideationCmd)
	rootCmd.AddCommand(gatesCmd)
	rootCmd.AddCommand(busCmd)
	rootCmd.AddCommand(doctorCmd)
}

// newStore returns the production document store.
func newStore() storage.Store {
	return storage.NewFileStore()
}
