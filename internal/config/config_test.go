package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recite/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err == nil {
		t.Fatalf("expected validation error for missing admin handle, got config %#v", cfg)
	}
	_ = resolved
	_ = exists
	if !strings.Contains(err.Error(), "admin_handle") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
catalog_file = "` + filepath.Join(dir, "catalog.csv") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[settings]
admin_handle = " admin "
max_recordings_per_verse = 3

[identity]
base_url = "https://example.test/"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected resolved existing path %s, got %s (exists=%v)", path, resolved, exists)
	}
	if cfg.Settings.AdminHandle != "admin" {
		t.Fatalf("admin handle not trimmed: %q", cfg.Settings.AdminHandle)
	}
	if cfg.Settings.MaxRecordingsPerVerse != 3 {
		t.Fatalf("unexpected cap: %d", cfg.Settings.MaxRecordingsPerVerse)
	}
	if cfg.Identity.BaseURL != "https://example.test" {
		t.Fatalf("base URL not normalized: %q", cfg.Identity.BaseURL)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("logging defaults not applied: %+v", cfg.Logging)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero cap", func(c *config.Config) { c.Settings.MaxRecordingsPerVerse = 0 }, "max_recordings_per_verse"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "yaml" }, "logging.format"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"endpoint without repo", func(c *config.Config) { c.Publication.Endpoint = "https://x.test" }, "publication.repository"},
		{"zero keep_raw", func(c *config.Config) { c.Backups.KeepRaw = 0 }, "keep_raw"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Settings.AdminHandle = "admin"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestSaveRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := config.Default()
	cfg.Settings.AdminHandle = "admin"
	cfg.Settings.MaxRecordingsPerVerse = 7
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.CatalogFile = filepath.Join(dir, "catalog.csv")

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load after Save failed: %v", err)
	}
	if !exists {
		t.Fatal("expected saved config to exist")
	}
	if loaded.Settings.MaxRecordingsPerVerse != 7 {
		t.Fatalf("cap lost in round trip: %d", loaded.Settings.MaxRecordingsPerVerse)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error overwriting existing config")
	}
}

func TestIsAdmin(t *testing.T) {
	cfg := config.Default()
	cfg.Settings.AdminHandle = "admin"
	if !cfg.IsAdmin("admin") {
		t.Fatal("expected admin match")
	}
	if cfg.IsAdmin("other") || cfg.IsAdmin("") {
		t.Fatal("expected non-admin handles to be rejected")
	}
}
