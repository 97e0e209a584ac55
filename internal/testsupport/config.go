package testsupport

import (
	"path/filepath"
	"testing"

	"recite/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.CatalogFile = filepath.Join(base, "catalog.csv")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Settings.AdminHandle = "admin"
	cfg.Settings.MaxRecordingsPerVerse = 2
	cfg.Backups.KeepRaw = 3
	cfg.Backups.KeepCompressed = 5

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WithAdmin overrides the administrator handle on the test config.
func WithAdmin(handle string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Settings.AdminHandle = handle
	}
}

// WithCap overrides max_recordings_per_verse on the test config.
func WithCap(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Settings.MaxRecordingsPerVerse = n
	}
}

// WithApprovalRequired makes new submissions start pending.
func WithApprovalRequired() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Settings.RequireAdminApproval = true
	}
}
