package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agileflowhq/agileflow/internal/tasksync"
	"github.com/agileflowhq/agileflow/internal/types"
)

var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "Story ledger operations",
}

var (
	storySyncStatus string
	storySyncOwner  string
	storySyncFields map[string]string
)

var storySyncCmd = &cobra.Command{
	Use:   "sync <story-id>",
	Short: "Merge field updates onto a story record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := make(map[string]any)
		if storySyncStatus != "" {
			fields["status"] = storySyncStatus
		}
		if storySyncOwner != "" {
			fields["owner"] = storySyncOwner
		}
		for key, val := range storySyncFields {
			fields[key] = val
		}
		if len(fields) == 0 {
			return fmt.Errorf("nothing to update: pass --status, --owner, or --set")
		}

		syncer := tasksync.NewSyncer(newStore())
		if err := syncer.SyncToStatus(rootDir, args[0], fields); err != nil {
			return err
		}
		fmt.Printf("%s %s updated\n", color.GreenString("✓"), args[0])
		return nil
	},
}

var taskFilters tasksync.Filters

var storyTasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Project stories into native task shape",
	RunE: func(cmd *cobra.Command, args []string) error {
		syncer := tasksync.NewSyncer(newStore())
		tasks, err := syncer.SyncFromStatus(rootDir, taskFilters)
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(tasks)
	},
}

var reconcileFile string

var storyReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Apply native task statuses back into the story ledger",
	Long: `Reads a JSON array of native tasks (from --file or stdin) and applies
each task's status to its linked story. Stories change only on a genuine
status difference; a transition into completed also stamps completed_at.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var reader io.Reader = os.Stdin
		if reconcileFile != "" {
			f, err := os.Open(reconcileFile)
			if err != nil {
				return fmt.Errorf("opening task file: %w", err)
			}
			defer f.Close()
			reader = f
		}

		var tasks []types.NativeTask
		if err := json.NewDecoder(reader).Decode(&tasks); err != nil {
			return fmt.Errorf("decoding tasks: %w", err)
		}

		syncer := tasksync.NewSyncer(newStore())
		updated, err := syncer.Reconcile(rootDir, tasks)
		if err != nil {
			return err
		}
		fmt.Printf("%s %d of %d stories updated\n", color.GreenString("✓"), updated, len(tasks))
		return nil
	},
}

func init() {
	storySyncCmd.Flags().StringVar(&storySyncStatus, "status", "", "new story status")
	storySyncCmd.Flags().StringVar(&storySyncOwner, "owner", "", "new story owner")
	storySyncCmd.Flags().StringToStringVar(&storySyncFields, "set", nil, "additional key=value fields to merge")

	storyTasksCmd.Flags().StringVar(&taskFilters.Epic, "epic", "", "filter by epic")
	storyTasksCmd.Flags().StringVar(&taskFilters.Status, "status", "", "filter by the story's original status string")
	storyTasksCmd.Flags().StringVar(&taskFilters.Owner, "owner", "", "filter by owner")

	storyReconcileCmd.Flags().StringVar(&reconcileFile, "file", "", "JSON file of native tasks (default: stdin)")

	storyCmd.AddCommand(storySyncCmd)
	storyCmd.AddCommand(storyTasksCmd)
	storyCmd.AddCommand(storyReconcileCmd)
}
