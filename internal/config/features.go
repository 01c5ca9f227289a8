package config

import "os"

// AgentTeamsEnv is the environment flag that enables experimental agent
// team features regardless of project metadata.
const AgentTeamsEnv = "CLAUDE_CODE_EXPERIMENTAL_AGENT_TEAMS"

// AgentTeamsEnabled reports whether agent team features are on, either via
// the environment flag or the project metadata toggle.
func AgentTeamsEnabled(meta Metadata) bool {
	switch os.Getenv(AgentTeamsEnv) {
	case "1", "true":
		return true
	}
	return meta.Features.AgentTeams.Enabled
}
