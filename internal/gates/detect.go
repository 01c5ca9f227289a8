package gates

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// npmPlaceholderTest is the script npm init writes; it is not a real test
// command.
const npmPlaceholderTest = "no test specified"

// DetectTestCommand inspects a project directory and returns the command
// that runs its test suite. Detection order: a real package.json test
// script, then known test-runner config files. Falls back to "npm test"
// when nothing is recognized.
func DetectTestCommand(dir string) string {
	if script, ok := packageScript(dir, "test"); ok && !strings.Contains(script, npmPlaceholderTest) {
		return "npm test"
	}
	switch {
	case anyFileExists(dir, "jest.config.js", "jest.config.ts", "jest.config.mjs", "jest.config.cjs"):
		return "npx jest"
	case anyFileExists(dir, "vitest.config.ts", "vitest.config.js", "vitest.config.mts"):
		return "npx vitest run"
	case anyFileExists(dir, "pytest.ini", "conftest.py"):
		return "pytest"
	case anyFileExists(dir, "go.mod"):
		return "go test ./..."
	}
	return "npm test"
}

// DetectLintCommand returns the project's lint command, or "" when no
// linter is configured (the lint gate then reports skipped-as-passed).
func DetectLintCommand(dir string) string {
	if _, ok := packageScript(dir, "lint"); ok {
		return "npm run lint"
	}
	if anyFileExists(dir, ".eslintrc", ".eslintrc.js", ".eslintrc.json", ".eslintrc.yml", "eslint.config.js", "eslint.config.mjs") {
		return "npx eslint ."
	}
	return ""
}

// DetectTypeCheckCommand returns the project's type check command, or ""
// when the project has no type checking configured.
func DetectTypeCheckCommand(dir string) string {
	if _, ok := packageScript(dir, "typecheck"); ok {
		return "npm run typecheck"
	}
	if _, ok := packageScript(dir, "type-check"); ok {
		return "npm run type-check"
	}
	if anyFileExists(dir, "tsconfig.json") {
		return "npx tsc --noEmit"
	}
	return ""
}

// packageScript reads a script entry from dir's package.json. Missing or
// malformed package.json means no script.
func packageScript(dir, name string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return "", false
	}
	var pkg struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", false
	}
	script, ok := pkg.Scripts[name]
	return script, ok && strings.TrimSpace(script) != ""
}

func anyFileExists(dir string, names ...string) bool {
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
