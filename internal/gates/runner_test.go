package gates

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agileflowhq/agileflow/internal/config"
	"github.com/agileflowhq/agileflow/internal/storage"
)

// fakeExec records every command it is asked to run and replays canned
// results, so gate logic can be tested without spawning processes.
type fakeExec struct {
	commands []string
	results  map[string]ExecResult
}

func (f *fakeExec) Run(ctx context.Context, command, dir string, timeout time.Duration) ExecResult {
	f.commands = append(f.commands, command)
	if res, ok := f.results[command]; ok {
		return res
	}
	return ExecResult{}
}

func enabled(timeoutMS int) config.GateSetting {
	return config.GateSetting{Enabled: true, TimeoutMS: timeoutMS}
}

func TestEvaluateGateUnknownName(t *testing.T) {
	exec := &fakeExec{}
	result := NewRunnerWith(exec).EvaluateGate(context.Background(), "fuzzing", t.TempDir(), enabled(0))

	assert.False(t, result.Passed)
	assert.Equal(t, "Unknown gate: fuzzing", result.Message)
	assert.Empty(t, exec.commands, "an unknown gate must not spawn anything")
}

func TestEvaluateGateTests(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/demo\n")

	t.Run("passing", func(t *testing.T) {
		exec := &fakeExec{results: map[string]ExecResult{
			"go test ./...": {Stdout: "ok\n"},
		}}
		result := NewRunnerWith(exec).EvaluateGate(context.Background(), GateTests, dir, enabled(0))
		assert.True(t, result.Passed)
		assert.Equal(t, "tests passing", result.Message)
		assert.Equal(t, []string{"go test ./..."}, exec.commands)
	})

	t.Run("nonzero exit", func(t *testing.T) {
		exec := &fakeExec{results: map[string]ExecResult{
			"go test ./...": {ExitCode: 1, Stderr: "FAIL\n"},
		}}
		result := NewRunnerWith(exec).EvaluateGate(context.Background(), GateTests, dir, enabled(0))
		assert.False(t, result.Passed)
		assert.Contains(t, result.Message, "tests failing")
		assert.Contains(t, result.Message, "exited with code 1")
		assert.Contains(t, result.Output, "FAIL")
	})

	t.Run("timeout", func(t *testing.T) {
		exec := &fakeExec{results: map[string]ExecResult{
			"go test ./...": {TimedOut: true},
		}}
		result := NewRunnerWith(exec).EvaluateGate(context.Background(), GateTests, dir, enabled(5000))
		assert.False(t, result.Passed)
		assert.Contains(t, result.Message, "timed out after 5s")
	})
}

func TestEvaluateGateSkipsUnconfiguredCheckers(t *testing.T) {
	dir := t.TempDir() // no lint or tsc config anywhere
	exec := &fakeExec{}
	runner := NewRunnerWith(exec)

	lint := runner.EvaluateGate(context.Background(), GateLint, dir, enabled(0))
	assert.True(t, lint.Passed)
	assert.Contains(t, lint.Message, "skipped")

	types := runner.EvaluateGate(context.Background(), GateTypes, dir, enabled(0))
	assert.True(t, types.Passed)
	assert.Contains(t, types.Message, "skipped")

	assert.Empty(t, exec.commands, "a skipped gate must not spawn anything")
}

func TestEvaluateGateCoverage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "jest.config.js", "module.exports = {}\n")
	command := "npx jest --coverage"

	t.Run("meets threshold", func(t *testing.T) {
		exec := &fakeExec{results: map[string]ExecResult{
			command: {Stdout: "All files      |   87.5 |   80.1 |\n"},
		}}
		setting := config.GateSetting{Enabled: true, Threshold: 85}
		result := NewRunnerWith(exec).EvaluateGate(context.Background(), GateCoverage, dir, setting)
		assert.True(t, result.Passed)
		assert.Contains(t, result.Message, "87.5%")
	})

	t.Run("below threshold", func(t *testing.T) {
		exec := &fakeExec{results: map[string]ExecResult{
			command: {Stdout: "Statements: 42.0%\n"},
		}}
		result := NewRunnerWith(exec).EvaluateGate(context.Background(), GateCoverage, dir, enabled(0))
		assert.False(t, result.Passed)
		assert.Contains(t, result.Message, "below threshold 80.0%")
	})

	t.Run("unparseable output fails", func(t *testing.T) {
		exec := &fakeExec{results: map[string]ExecResult{
			command: {Stdout: "tests passed, no summary table\n"},
		}}
		result := NewRunnerWith(exec).EvaluateGate(context.Background(), GateCoverage, dir, enabled(0))
		assert.False(t, result.Passed)
		assert.Contains(t, result.Message, "could not determine coverage percentage")
	})
}

func TestEvaluateGatesBatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/demo\n")
	writeFile(t, dir, "tsconfig.json", "{}\n")

	exec := &fakeExec{results: map[string]ExecResult{
		"go test ./...":    {ExitCode: 1, Stderr: "FAIL\n"},
		"npx tsc --noEmit": {},
	}}
	hook := config.GateHookConfig{
		Tests: &config.GateSetting{Enabled: true},
		Lint:  &config.GateSetting{Enabled: false},
		Types: &config.GateSetting{Enabled: true},
	}

	batch := NewRunnerWith(exec).EvaluateGates(context.Background(), hook, dir)

	require.Len(t, batch.Results, 2, "disabled and absent gates are not evaluated")
	assert.Equal(t, GateTests, batch.Results[0].Gate)
	assert.Equal(t, GateTypes, batch.Results[1].Gate)
	assert.False(t, batch.AllPassed)
	assert.True(t, batch.Results[1].Passed, "a failing gate must not stop later gates")

	var sum time.Duration
	for _, r := range batch.Results {
		sum += r.Duration
	}
	assert.Equal(t, sum, batch.TotalDuration, "total is the exact sum of per-gate durations")
}

func TestDefaultGateConfig(t *testing.T) {
	cfg := DefaultGateConfig()
	assert.True(t, cfg.Tests.Enabled)
	assert.Equal(t, 120000, cfg.Tests.TimeoutMS)
	assert.True(t, cfg.Lint.Enabled)
	assert.True(t, cfg.Types.Enabled)
	assert.False(t, cfg.Coverage.Enabled)
	assert.Equal(t, DefaultCoverageThreshold, cfg.Coverage.Threshold)
}

func TestLoadGateConfig(t *testing.T) {
	t.Run("present hook is used as-is, not merged", func(t *testing.T) {
		store := storage.NewMemStore()
		require.NoError(t, store.Save(storage.MetadataPath("/project"), config.Metadata{
			QualityGates: map[string]config.GateHookConfig{
				"task_completed": {Tests: &config.GateSetting{Enabled: true, TimeoutMS: 30000}},
			},
		}))

		hook := LoadGateConfig(store, "/project", "task_completed")
		require.NotNil(t, hook.Tests)
		assert.Equal(t, 30000, hook.Tests.TimeoutMS)
		assert.Nil(t, hook.Lint, "partial hook entries stay partial")
		assert.Nil(t, hook.Coverage)
	})

	t.Run("absent hook falls back wholesale", func(t *testing.T) {
		store := storage.NewMemStore()
		require.NoError(t, store.Save(storage.MetadataPath("/project"), config.Metadata{}))
		hook := LoadGateConfig(store, "/project", "task_completed")
		assert.Equal(t, DefaultGateConfig(), hook)
	})

	t.Run("corrupt metadata falls back wholesale", func(t *testing.T) {
		store := storage.NewMemStore()
		store.Put(storage.MetadataPath("/project"), []byte("{broken"))
		hook := LoadGateConfig(store, "/project", "task_completed")
		assert.Equal(t, DefaultGateConfig(), hook)
	})
}

func TestParseCoveragePercent(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   float64
		found  bool
	}{
		{"istanbul table", "File | % Stmts\nAll files      |   91.3 |   88 |\n", 91.3, true},
		{"statements line", "Statements   : 76.5% ( 153/200 )\n", 76.5, true},
		{"pytest-cov total", "src/app.py  120  10  92%\nTOTAL  450  36  92%\n", 92, true},
		{"generic coverage line", "coverage: 84.2% of statements\n", 84.2, true},
		{"no summary", "all 42 tests passed\n", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := parseCoveragePercent(tt.output)
			if found != tt.found || got != tt.want {
				t.Errorf("parseCoveragePercent(%q) = (%v, %v), want (%v, %v)",
					tt.output, got, found, tt.want, tt.found)
			}
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}
