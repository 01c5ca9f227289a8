package gates

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"github.com/agileflowhq/agileflow/internal/config"
	"github.com/agileflowhq/agileflow/internal/storage"
)

// Gate names recognized by the runner.
const (
	GateTests    = "tests"
	GateLint     = "lint"
	GateTypes    = "types"
	GateCoverage = "coverage"
)

// DefaultCoverageThreshold is the minimum coverage percentage when the
// gate config does not set one.
const DefaultCoverageThreshold = 80.0

// Per-gate timeout defaults when the config leaves timeout unset.
const (
	defaultTestTimeout  = 2 * time.Minute
	defaultCheckTimeout = time.Minute
)

// Result is the outcome of one gate evaluation. Failures are values, not
// errors: a failing or even unknown gate never aborts the batch.
type Result struct {
	Gate     string        `json:"gate"`
	Passed   bool          `json:"passed"`
	Message  string        `json:"message"`
	Output   string        `json:"output,omitempty"`
	Duration time.Duration `json:"duration"`
}

// BatchResult aggregates a full gate run.
type BatchResult struct {
	Results       []Result      `json:"results"`
	AllPassed     bool          `json:"all_passed"`
	TotalDuration time.Duration `json:"total_duration"`
}

// ExecResult is what running a gate command produced.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
	Err      error // spawn failure, not a nonzero exit
}

// CommandRunner executes a shell command in a directory with a bounded
// timeout. Pluggable so tests can assert on what would be executed
// without spawning processes.
type CommandRunner interface {
	Run(ctx context.Context, command, dir string, timeout time.Duration) ExecResult
}

// ShellRunner is the production CommandRunner using sh -c.
type ShellRunner struct{}

// Run executes the command, killing it when the timeout expires.
func (ShellRunner) Run(ctx context.Context, command, dir string, timeout time.Duration) ExecResult {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if ctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
			res.Err = err
		}
	}
	return res
}

// Runner evaluates quality gates for a project directory.
type Runner struct {
	exec CommandRunner
}

// NewRunner creates a Runner using the shell executor.
func NewRunner() *Runner {
	return &Runner{exec: ShellRunner{}}
}

// NewRunnerWith creates a Runner with a custom command executor.
func NewRunnerWith(exec CommandRunner) *Runner {
	return &Runner{exec: exec}
}

// EvaluateGate runs a single named gate and returns its result. Unknown
// gate names yield a failed result without spawning anything. Lint and
// type gates with no detectable command are skipped and treated as passed.
func (r *Runner) EvaluateGate(ctx context.Context, gate, dir string, setting config.GateSetting) Result {
	start := time.Now()
	result := r.evaluate(ctx, gate, dir, setting)
	result.Gate = gate
	result.Duration = time.Since(start)
	return result
}

func (r *Runner) evaluate(ctx context.Context, gate, dir string, setting config.GateSetting) Result {
	switch gate {
	case GateTests:
		return r.runCommandGate(ctx, gate, DetectTestCommand(dir), dir, timeoutFor(setting, defaultTestTimeout))

	case GateLint:
		command := DetectLintCommand(dir)
		if command == "" {
			return Result{Passed: true, Message: "lint skipped: no linter configured"}
		}
		return r.runCommandGate(ctx, gate, command, dir, timeoutFor(setting, defaultCheckTimeout))

	case GateTypes:
		command := DetectTypeCheckCommand(dir)
		if command == "" {
			return Result{Passed: true, Message: "types skipped: no type checker configured"}
		}
		return r.runCommandGate(ctx, gate, command, dir, timeoutFor(setting, defaultCheckTimeout))

	case GateCoverage:
		return r.runCoverageGate(ctx, dir, setting)

	default:
		return Result{Passed: false, Message: fmt.Sprintf("Unknown gate: %s", gate)}
	}
}

func (r *Runner) runCommandGate(ctx context.Context, gate, command, dir string, timeout time.Duration) Result {
	res := r.exec.Run(ctx, command, dir, timeout)
	output := res.Stdout + res.Stderr

	switch {
	case res.TimedOut:
		return Result{Passed: false, Output: output,
			Message: fmt.Sprintf("%s failing: %q timed out after %s", gate, command, timeout)}
	case res.Err != nil:
		return Result{Passed: false, Output: output,
			Message: fmt.Sprintf("%s failing: could not run %q: %v", gate, command, res.Err)}
	case res.ExitCode != 0:
		return Result{Passed: false, Output: output,
			Message: fmt.Sprintf("%s failing: %q exited with code %d", gate, command, res.ExitCode)}
	}
	return Result{Passed: true, Output: output, Message: fmt.Sprintf("%s passing", gate)}
}

func (r *Runner) runCoverageGate(ctx context.Context, dir string, setting config.GateSetting) Result {
	command := DetectTestCommand(dir) + " --coverage"
	threshold := setting.Threshold
	if threshold <= 0 {
		threshold = DefaultCoverageThreshold
	}

	res := r.exec.Run(ctx, command, dir, timeoutFor(setting, defaultTestTimeout))
	output := res.Stdout + res.Stderr

	switch {
	case res.TimedOut:
		return Result{Passed: false, Output: output,
			Message: fmt.Sprintf("coverage failing: %q timed out", command)}
	case res.Err != nil:
		return Result{Passed: false, Output: output,
			Message: fmt.Sprintf("coverage failing: could not run %q: %v", command, res.Err)}
	case res.ExitCode != 0:
		return Result{Passed: false, Output: output,
			Message: fmt.Sprintf("coverage failing: %q exited with code %d", command, res.ExitCode)}
	}

	percent, found := parseCoveragePercent(output)
	if !found {
		return Result{Passed: false, Output: output,
			Message: "coverage failing: could not determine coverage percentage from output"}
	}
	if percent < threshold {
		return Result{Passed: false, Output: output,
			Message: fmt.Sprintf("coverage failing: %.1f%% is below threshold %.1f%%", percent, threshold)}
	}
	return Result{Passed: true, Output: output,
		Message: fmt.Sprintf("coverage passing: %.1f%% meets threshold %.1f%%", percent, threshold)}
}

func timeoutFor(setting config.GateSetting, fallback time.Duration) time.Duration {
	if setting.TimeoutMS > 0 {
		return time.Duration(setting.TimeoutMS) * time.Millisecond
	}
	return fallback
}

// gateOrder is the fixed, deterministic evaluation order for a hook.
var gateOrder = []string{GateTests, GateLint, GateTypes, GateCoverage}

// EvaluateGates runs every enabled gate from the hook config sequentially
// and aggregates. A failing gate never stops the batch: later gates still
// run so the caller sees every problem at once. TotalDuration is the exact
// sum of the per-gate durations.
func (r *Runner) EvaluateGates(ctx context.Context, hook config.GateHookConfig, dir string) BatchResult {
	batch := BatchResult{AllPassed: true}

	for _, gate := range gateOrder {
		setting := hookSetting(hook, gate)
		if setting == nil || !setting.Enabled {
			continue
		}
		result := r.EvaluateGate(ctx, gate, dir, *setting)
		batch.Results = append(batch.Results, result)
		batch.TotalDuration += result.Duration
		if !result.Passed {
			batch.AllPassed = false
		}
	}
	return batch
}

func hookSetting(hook config.GateHookConfig, gate string) *config.GateSetting {
	switch gate {
	case GateTests:
		return hook.Tests
	case GateLint:
		return hook.Lint
	case GateTypes:
		return hook.Types
	case GateCoverage:
		return hook.Coverage
	}
	return nil
}

// DefaultGateConfig is the built-in hook configuration used when project
// metadata has no entry for a hook. The fallback is all-or-nothing: a
// present hook entry is used as-is, never merged with these defaults.
func DefaultGateConfig() config.GateHookConfig {
	return config.GateHookConfig{
		Tests:    &config.GateSetting{Enabled: true, TimeoutMS: 120000},
		Lint:     &config.GateSetting{Enabled: true, TimeoutMS: 60000},
		Types:    &config.GateSetting{Enabled: true, TimeoutMS: 60000},
		Coverage: &config.GateSetting{Enabled: false, TimeoutMS: 120000, Threshold: DefaultCoverageThreshold},
	}
}

// LoadGateConfig resolves the gate configuration for a hook from project
// metadata, falling back wholesale to DefaultGateConfig when the metadata
// file or the hook key is absent or corrupt.
func LoadGateConfig(store storage.Store, root, hookName string) config.GateHookConfig {
	meta, err := config.LoadMetadata(store, root)
	if err == nil {
		if hook, ok := meta.QualityGates[hookName]; ok {
			return hook
		}
	}
	return DefaultGateConfig()
}

// Coverage summary shapes across common tooling: an istanbul/jest
// "All files" table row, a "Statements: NN%" line, or a pytest-cov
// "TOTAL ... NN%" row.
var coveragePatterns = []*regexp.Regexp{
	regexp.MustCompile(`All files[^|\n]*\|\s*([0-9.]+)`),
	regexp.MustCompile(`(?i)statements\s*[:\s]\s*([0-9.]+)\s*%`),
	regexp.MustCompile(`(?m)^TOTAL\s.*?([0-9.]+)%`),
	regexp.MustCompile(`(?i)coverage[:\s]\s*([0-9.]+)\s*%`),
}

// parseCoveragePercent extracts an overall coverage percentage from gate
// command output.
func parseCoveragePercent(output string) (float64, bool) {
	for _, pattern := range coveragePatterns {
		if m := pattern.FindStringSubmatch(output); len(m) > 1 {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}
