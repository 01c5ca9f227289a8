package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agileflowhq/agileflow/internal/storage"
)

func TestLoadMetadata(t *testing.T) {
	t.Run("full document", func(t *testing.T) {
		store := storage.NewMemStore()
		store.Put(storage.MetadataPath("/project"), []byte(`{
			"features": {"agentTeams": {"enabled": true}},
			"validation_pairs": {"agileflow-api": "custom-validator"},
			"quality_gates": {
				"task_completed": {
					"tests": {"enabled": true, "timeout": 30000},
					"coverage": {"enabled": true, "threshold": 85},
					"require_validator_approval": true
				}
			}
		}`))

		meta, err := LoadMetadata(store, "/project")
		require.NoError(t, err)
		assert.True(t, meta.Features.AgentTeams.Enabled)
		assert.Equal(t, "custom-validator", meta.ValidationPairs["agileflow-api"])

		hook := meta.QualityGates["task_completed"]
		require.NotNil(t, hook.Tests)
		assert.Equal(t, 30000, hook.Tests.TimeoutMS)
		require.NotNil(t, hook.Coverage)
		assert.Equal(t, 85.0, hook.Coverage.Threshold)
		assert.Nil(t, hook.Lint)
		assert.True(t, hook.RequireValidatorApproval)
	})

	t.Run("missing file degrades to zero metadata", func(t *testing.T) {
		meta, err := LoadMetadata(storage.NewMemStore(), "/project")
		require.NoError(t, err)
		assert.Empty(t, meta.ValidationPairs)
		assert.Empty(t, meta.QualityGates)
	})

	t.Run("malformed file degrades to zero metadata", func(t *testing.T) {
		store := storage.NewMemStore()
		store.Put(storage.MetadataPath("/project"), []byte("not json at all"))
		meta, err := LoadMetadata(store, "/project")
		require.NoError(t, err)
		assert.Empty(t, meta.ValidationPairs)
	})
}

func TestLoadTeamTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "team.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
teammates:
  - agent: agileflow-api
    paired_validator: template-api-validator
  - agent: agileflow-ui
quality_gates:
  task_completed:
    require_validator_approval: true
`), 0644))

	tmpl, err := LoadTeamTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "template-api-validator", tmpl.PairedValidator("agileflow-api"))
	assert.Equal(t, "", tmpl.PairedValidator("agileflow-ui"), "a teammate with no validator has no pairing")
	assert.Equal(t, "", tmpl.PairedValidator("agileflow-data"))
	assert.True(t, tmpl.QualityGates.TaskCompleted.RequireValidatorApproval)
}

func TestLoadTeamTemplateErrors(t *testing.T) {
	_, err := LoadTeamTemplate(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("teammates: [unclosed"), 0644))
	_, err = LoadTeamTemplate(path)
	assert.Error(t, err)
}

func TestPairedValidatorNilTemplate(t *testing.T) {
	var tmpl *TeamTemplate
	assert.Equal(t, "", tmpl.PairedValidator("agileflow-api"))
}

func TestAgentTeamsEnabled(t *testing.T) {
	t.Run("metadata toggle", func(t *testing.T) {
		t.Setenv(AgentTeamsEnv, "")
		assert.False(t, AgentTeamsEnabled(Metadata{}))
		assert.True(t, AgentTeamsEnabled(Metadata{
			Features: Features{AgentTeams: AgentTeams{Enabled: true}},
		}))
	})

	t.Run("environment flag wins", func(t *testing.T) {
		t.Setenv(AgentTeamsEnv, "1")
		assert.True(t, AgentTeamsEnabled(Metadata{}))

		t.Setenv(AgentTeamsEnv, "true")
		assert.True(t, AgentTeamsEnabled(Metadata{}))

		t.Setenv(AgentTeamsEnv, "0")
		assert.False(t, AgentTeamsEnabled(Metadata{}))
	})
}
