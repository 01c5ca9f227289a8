// Package config loads the project metadata document and team templates
// that parameterize validation pairing and quality gates.
package config

import (
	"errors"

	"github.com/agileflowhq/agileflow/internal/storage"
)

// Metadata is the project metadata document (agileflow-metadata.json).
type Metadata struct {
	Features        Features                  `json:"features,omitempty"`
	ValidationPairs map[string]string         `json:"validation_pairs,omitempty"`
	QualityGates    map[string]GateHookConfig `json:"quality_gates,omitempty"`
}

// Features holds project feature toggles.
type Features struct {
	AgentTeams AgentTeams `json:"agentTeams,omitempty"`
}

// AgentTeams toggles the multi-agent team features.
type AgentTeams struct {
	Enabled bool `json:"enabled"`
}

// GateSetting configures a single quality gate.
type GateSetting struct {
	Enabled bool `json:"enabled"`

	// TimeoutMS bounds the gate's subprocess, in milliseconds.
	TimeoutMS int `json:"timeout,omitempty"`

	// Threshold is the minimum coverage percentage; only the coverage
	// gate reads it.
	Threshold float64 `json:"threshold,omitempty"`
}

// GateHookConfig is the per-hook gate configuration under quality_gates.
type GateHookConfig struct {
	Tests    *GateSetting `json:"tests,omitempty"`
	Lint     *GateSetting `json:"lint,omitempty"`
	Types    *GateSetting `json:"types,omitempty"`
	Coverage *GateSetting `json:"coverage,omitempty"`

	// RequireValidatorApproval gates task completion on a validator
	// verdict from the bus.
	RequireValidatorApproval bool `json:"require_validator_approval,omitempty"`
}

// LoadMetadata reads the project metadata for a root. A missing or
// malformed file degrades to zero-value metadata so one corrupt document
// cannot block every gate evaluation; only real I/O failures propagate.
func LoadMetadata(store storage.Store, root string) (Metadata, error) {
	var meta Metadata
	if err := store.Load(storage.MetadataPath(root), &meta); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Metadata{}, nil
		}
		return Metadata{}, err
	}
	return meta, nil
}
