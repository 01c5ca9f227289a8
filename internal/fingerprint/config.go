package fingerprint

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds configuration for the similarity engine
type Config struct {
	// SameThreshold is the score at or above which two ideas are treated
	// as the same idea with high confidence.
	// Default: 0.90
	SameThreshold float64

	// DuplicateThreshold is the score at or above which two ideas are
	// merged as a recurrence. Scores in [DuplicateThreshold, SameThreshold)
	// are flagged candidates but still merge.
	// Default: 0.75
	DuplicateThreshold float64

	// TitleWeight is the weight of the title token-overlap signal when
	// both ideas carry file lists.
	// Default: 0.6
	TitleWeight float64

	// FileWeight is the weight of the file-set overlap signal when both
	// ideas carry file lists.
	// Default: 0.4
	FileWeight float64
}

// DefaultConfig returns the default similarity configuration
//
// The thresholds implement the 75%/90% duplicate contract; the weights are
// a documented choice (the similarity formula is otherwise unspecified)
// biased toward the title signal so shared files alone cannot merge
// unrelated ideas.
func DefaultConfig() Config {
	return Config{
		SameThreshold:      0.90,
		DuplicateThreshold: 0.75,
		TitleWeight:        0.6,
		FileWeight:         0.4,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.SameThreshold < 0.0 || c.SameThreshold > 1.0 {
		return fmt.Errorf("same_threshold must be between 0.0 and 1.0 (got %.2f)", c.SameThreshold)
	}
	if c.DuplicateThreshold < 0.0 || c.DuplicateThreshold > 1.0 {
		return fmt.Errorf("duplicate_threshold must be between 0.0 and 1.0 (got %.2f)", c.DuplicateThreshold)
	}
	if c.DuplicateThreshold > c.SameThreshold {
		return fmt.Errorf("duplicate_threshold (%.2f) cannot exceed same_threshold (%.2f)",
			c.DuplicateThreshold, c.SameThreshold)
	}
	if c.TitleWeight <= 0 {
		return fmt.Errorf("title_weight must be positive (got %.2f)", c.TitleWeight)
	}
	if c.FileWeight < 0 {
		return fmt.Errorf("file_weight cannot be negative (got %.2f)", c.FileWeight)
	}
	return nil
}

// ConfigFromEnv creates a Config from environment variables, falling back
// to defaults.
//
// Environment variables:
//   - AGILEFLOW_DEDUP_SAME_THRESHOLD: high-confidence threshold (default: 0.90)
//   - AGILEFLOW_DEDUP_DUP_THRESHOLD: merge threshold (default: 0.75)
//   - AGILEFLOW_DEDUP_TITLE_WEIGHT: title signal weight (default: 0.6)
//   - AGILEFLOW_DEDUP_FILE_WEIGHT: file signal weight (default: 0.4)
//
// Returns an error if any variable has an invalid value.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if err := parseEnvFloat("AGILEFLOW_DEDUP_SAME_THRESHOLD", &cfg.SameThreshold); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("AGILEFLOW_DEDUP_DUP_THRESHOLD", &cfg.DuplicateThreshold); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("AGILEFLOW_DEDUP_TITLE_WEIGHT", &cfg.TitleWeight); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("AGILEFLOW_DEDUP_FILE_WEIGHT", &cfg.FileWeight); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration from environment: %w", err)
	}
	return cfg, nil
}

// parseEnvFloat parses a float64 from an environment variable
func parseEnvFloat(key string, dest *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}
