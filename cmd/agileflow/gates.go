package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agileflowhq/agileflow/internal/config"
	"github.com/agileflowhq/agileflow/internal/gates"
)

var gatesCmd = &cobra.Command{
	Use:   "gates",
	Short: "Quality gate operations",
}

var (
	gatesHook string
	gatesDir  string
)

var gatesRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the quality gates configured for a hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := gatesDir
		if dir == "" {
			dir = rootDir
		}

		hook := gates.LoadGateConfig(newStore(), rootDir, gatesHook)
		batch := gates.NewRunner().EvaluateGates(context.Background(), hook, dir)

		for _, result := range batch.Results {
			mark := color.GreenString("✓ PASS")
			if !result.Passed {
				mark = color.RedString("✗ FAIL")
			}
			fmt.Printf("%s  %-8s  %s  (%s)\n", mark, result.Gate, result.Message, result.Duration.Round(time.Millisecond))
		}
		fmt.Printf("\n%d gates, total %s\n", len(batch.Results), batch.TotalDuration)

		if !batch.AllPassed {
			os.Exit(1)
		}
		return nil
	},
}

var (
	approvalTask     string
	approvalBuilder  string
	approvalTemplate string
)

var gatesApprovalCmd = &cobra.Command{
	Use:   "check-approval",
	Short: "Check whether a task has its validator's approval",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := gates.Options{RootDir: rootDir, Store: newStore()}
		if approvalTemplate != "" {
			tmpl, err := config.LoadTeamTemplate(approvalTemplate)
			if err != nil {
				return err
			}
			opts.TeamTemplate = tmpl
		}

		validator := gates.GetValidator(approvalBuilder, opts)
		if validator == "" {
			fmt.Printf("no validator paired with %s\n", approvalBuilder)
			return nil
		}

		if !gates.RequiresValidation(approvalBuilder, opts) {
			fmt.Printf("%s does not require validator approval\n", approvalBuilder)
			return nil
		}

		if gates.IsValidatorApproved(approvalTask, validator, rootDir) {
			fmt.Printf("%s approved by %s\n", color.GreenString(approvalTask), validator)
			return nil
		}
		fmt.Printf("%s not approved by %s\n", color.RedString(approvalTask), validator)
		os.Exit(1)
		return nil
	},
}

func init() {
	gatesRunCmd.Flags().StringVar(&gatesHook, "hook", "task_completed", "quality_gates hook name")
	gatesRunCmd.Flags().StringVar(&gatesDir, "dir", "", "directory to run gate commands in (default: project root)")

	gatesApprovalCmd.Flags().StringVar(&approvalTask, "task", "", "task id to check")
	gatesApprovalCmd.Flags().StringVar(&approvalBuilder, "builder", "", "builder agent name")
	gatesApprovalCmd.Flags().StringVar(&approvalTemplate, "template", "", "team template YAML file")
	_ = gatesApprovalCmd.MarkFlagRequired("task")
	_ = gatesApprovalCmd.MarkFlagRequired("builder")

	gatesCmd.AddCommand(gatesRunCmd)
	gatesCmd.AddCommand(gatesApprovalCmd)
}
