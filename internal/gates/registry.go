// Package gates implements the validation registry (which validator is
// paired with which builder, and whether approval is required) and the
// quality gate runner (detecting and executing test/lint/type/coverage
// commands with bounded timeouts).
package gates

import (
	"github.com/agileflowhq/agileflow/internal/bus"
	"github.com/agileflowhq/agileflow/internal/config"
	"github.com/agileflowhq/agileflow/internal/storage"
)

// builtInPairs is the default builder -> validator pairing, used when
// neither the team template nor project metadata overrides it.
var builtInPairs = map[string]string{
	"agileflow-api":     "agileflow-api-validator",
	"agileflow-ui":      "agileflow-ui-validator",
	"agileflow-data":    "agileflow-data-validator",
	"agileflow-devops":  "agileflow-devops-validator",
	"agileflow-testing": "agileflow-testing-validator",
}

// Options carries the inputs for validator resolution. TeamTemplate is an
// optional caller-supplied template; RootDir locates project metadata and
// the bus log. Store defaults to the filesystem.
type Options struct {
	TeamTemplate *config.TeamTemplate
	RootDir      string
	Store        storage.Store
}

func (o Options) store() storage.Store {
	if o.Store != nil {
		return o.Store
	}
	return storage.NewFileStore()
}

// GetValidator resolves the validator paired with a builder agent.
// Precedence, highest first: team template pairing, metadata
// validation_pairs, built-in table. Returns "" when nothing matches.
// Malformed metadata falls through to the built-ins.
func GetValidator(builder string, opts Options) string {
	if v := opts.TeamTemplate.PairedValidator(builder); v != "" {
		return v
	}
	if opts.RootDir != "" {
		meta, err := config.LoadMetadata(opts.store(), opts.RootDir)
		if err == nil {
			if v := meta.ValidationPairs[builder]; v != "" {
				return v
			}
		}
	}
	return builtInPairs[builder]
}

// RequiresValidation reports whether a builder's task completion is gated
// on validator approval. The require_validator_approval bit comes from
// metadata when its task_completed hook is present (metadata wins), from
// the team template otherwise. A requirement with no resolvable validator
// is no requirement at all: nobody could grant the approval.
func RequiresValidation(builder string, opts Options) bool {
	required := false
	decided := false

	if opts.RootDir != "" {
		meta, err := config.LoadMetadata(opts.store(), opts.RootDir)
		if err == nil {
			if hook, ok := meta.QualityGates["task_completed"]; ok {
				required = hook.RequireValidatorApproval
				decided = true
			}
		}
	}
	if !decided && opts.TeamTemplate != nil {
		required = opts.TeamTemplate.QualityGates.TaskCompleted.RequireValidatorApproval
	}

	if !required {
		return false
	}
	return GetValidator(builder, opts) != ""
}

// IsValidatorApproved scans the bus log for the validator's verdict on a
// task. The scan runs most-recent-first and is bounded (DefaultScanDepth
// lines), so the newest verdict wins and an unbounded log stays cheap to
// check. Returns false when the verdict is a rejection, when no verdict is
// found within the bound, or when the bus log is absent.
func IsValidatorApproved(taskID, validator, rootDir string) bool {
	if taskID == "" || validator == "" || rootDir == "" {
		return false
	}
	msgs, err := bus.TailMessages(rootDir, bus.DefaultScanDepth)
	if err != nil {
		return false
	}
	for _, msg := range msgs {
		if msg.Type != bus.TypeValidation || msg.From != validator || msg.TaskID != taskID {
			continue
		}
		return msg.Status == bus.VerdictApproved
	}
	return false
}
