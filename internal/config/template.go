package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TeamTemplate describes a team composition: which builder agents exist
// and which validator is paired with each. Templates are read-only input;
// this core never writes them.
type TeamTemplate struct {
	Teammates    []Teammate           `yaml:"teammates" json:"teammates"`
	QualityGates TemplateQualityGates `yaml:"quality_gates" json:"quality_gates"`
}

// Teammate pairs a builder agent with its validator.
type Teammate struct {
	Agent           string `yaml:"agent" json:"agent"`
	PairedValidator string `yaml:"paired_validator" json:"paired_validator"`
}

// TemplateQualityGates holds the template's gate policy.
type TemplateQualityGates struct {
	TaskCompleted TemplateTaskCompleted `yaml:"task_completed" json:"task_completed"`
}

// TemplateTaskCompleted is the task-completion hook policy.
type TemplateTaskCompleted struct {
	RequireValidatorApproval bool `yaml:"require_validator_approval" json:"require_validator_approval"`
}

// PairedValidator returns the template's validator for a builder agent,
// or "" when the template names no pairing.
func (t *TeamTemplate) PairedValidator(builder string) string {
	if t == nil {
		return ""
	}
	for _, mate := range t.Teammates {
		if mate.Agent == builder && mate.PairedValidator != "" {
			return mate.PairedValidator
		}
	}
	return ""
}

// LoadTeamTemplate loads a team template from a YAML file.
func LoadTeamTemplate(path string) (*TeamTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading team template: %w", err)
	}

	var tmpl TeamTemplate
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing team template YAML: %w", err)
	}
	return &tmpl, nil
}
