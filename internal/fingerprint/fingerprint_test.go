package fingerprint

import (
	"testing"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
	}{
		{"lowercases", "Add Rate Limiting", "add rate limiting"},
		{"strips punctuation", "Add rate-limiting, please!", "add rate limiting please"},
		{"collapses whitespace", "  add   rate \t limiting ", "add rate limiting"},
		{"path separators split tokens", "Refactor auth/login.ts", "refactor auth login ts"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.in); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeFiles(t *testing.T) {
	got := NormalizeFiles([]string{"b.ts", "a.ts", "b.ts", " ", "c.ts"})
	want := []string{"a.ts", "b.ts", "c.ts"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeFiles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeFiles[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFingerprintDeterminism(t *testing.T) {
	a := Fingerprint("Add Rate Limiting!", []string{"api/auth.ts", "api/mw.ts"})
	b := Fingerprint("add   rate limiting", []string{"api/mw.ts", "api/auth.ts", "api/mw.ts"})
	if a != b {
		t.Errorf("equal normalized ideas must fingerprint equal: %s != %s", a, b)
	}

	c := Fingerprint("add rate limiting", []string{"api/auth.ts"})
	if a == c {
		t.Error("different file sets must fingerprint differently")
	}
}

func TestSimilarity(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	sig := func(title string, files ...string) Signature {
		return NewSignature(title, files)
	}

	tests := []struct {
		name string
		a, b Signature
		same bool
		high bool
	}{
		{
			name: "identical idea",
			a:    sig("Add rate limiting", "api/auth.ts"),
			b:    sig("Add rate limiting", "api/auth.ts"),
			same: true, high: true,
		},
		{
			name: "near-identical title, same files",
			a:    sig("Add rate limiting to auth endpoints", "api/auth.ts"),
			b:    sig("Add rate limiting to the auth endpoints", "api/auth.ts"),
			same: true, high: true,
		},
		{
			name: "unrelated titles",
			a:    sig("Add rate limiting", "api/auth.ts"),
			b:    sig("Migrate database to postgres", "db/schema.sql"),
			same: false,
		},
		{
			name: "same files but completely different title must not merge",
			a:    sig("Add rate limiting", "api/auth.ts", "api/mw.ts"),
			b:    sig("Rewrite session cookies entirely", "api/auth.ts", "api/mw.ts"),
			same: false,
		},
		{
			name: "no files relies on title alone",
			a:    sig("Improve onboarding docs"),
			b:    sig("Improve onboarding docs"),
			same: true, high: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := scorer.Similarity(tt.a, tt.b)
			if scorer.IsSame(score) != tt.same {
				t.Errorf("IsSame(%.3f) = %v, want %v", score, !tt.same, tt.same)
			}
			if tt.same && scorer.IsHighConfidence(score) != tt.high {
				t.Errorf("IsHighConfidence(%.3f) = %v, want %v", score, !tt.high, tt.high)
			}
		})
	}
}

func TestSimilarityIsSymmetric(t *testing.T) {
	scorer := NewScorer(DefaultConfig())
	a := NewSignature("Add rate limiting to auth", []string{"api/auth.ts"})
	b := NewSignature("Rate limiting for auth endpoints", []string{"api/auth.ts", "api/mw.ts"})
	if scorer.Similarity(a, b) != scorer.Similarity(b, a) {
		t.Error("similarity must be symmetric")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"threshold above 1", func(c *Config) { c.SameThreshold = 1.5 }, true},
		{"duplicate above same", func(c *Config) { c.DuplicateThreshold = 0.95 }, true},
		{"zero title weight", func(c *Config) { c.TitleWeight = 0 }, true},
		{"negative file weight", func(c *Config) { c.FileWeight = -0.1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Run("defaults without env", func(t *testing.T) {
		cfg, err := ConfigFromEnv()
		if err != nil {
			t.Fatalf("ConfigFromEnv() error = %v", err)
		}
		if cfg != DefaultConfig() {
			t.Errorf("ConfigFromEnv() = %+v, want defaults", cfg)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("AGILEFLOW_DEDUP_SAME_THRESHOLD", "0.95")
		t.Setenv("AGILEFLOW_DEDUP_TITLE_WEIGHT", "0.7")
		cfg, err := ConfigFromEnv()
		if err != nil {
			t.Fatalf("ConfigFromEnv() error = %v", err)
		}
		if cfg.SameThreshold != 0.95 || cfg.TitleWeight != 0.7 {
			t.Errorf("ConfigFromEnv() = %+v, overrides not applied", cfg)
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("AGILEFLOW_DEDUP_DUP_THRESHOLD", "not-a-number")
		if _, err := ConfigFromEnv(); err == nil {
			t.Error("ConfigFromEnv() should fail on a non-numeric value")
		}
	})

	t.Run("out of range", func(t *testing.T) {
		t.Setenv("AGILEFLOW_DEDUP_SAME_THRESHOLD", "1.5")
		if _, err := ConfigFromEnv(); err == nil {
			t.Error("ConfigFromEnv() should fail on an out-of-range threshold")
		}
	})
}
