package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and data source configuration.
type Paths struct {
	DataDir     string `toml:"data_dir"`
	CatalogFile string `toml:"catalog_file"`
	LogDir      string `toml:"log_dir"`
}

// Settings contains the admin-mutable policy values. They are persisted in
// the same document as the rest of the configuration; SetMaxRecordingsPerVerse
// rewrites the file through Save.
type Settings struct {
	AdminHandle           string `toml:"admin_handle"`
	MaxRecordingsPerVerse int    `toml:"max_recordings_per_verse"`
	RequireAdminApproval  bool   `toml:"require_admin_approval"`
	AutoSyncOnApproval    bool   `toml:"auto_sync_on_approval"`
}

// Identity contains configuration for the contributor handle verification host.
type Identity struct {
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Publication contains configuration for the hosted dataset collaborator.
// When Endpoint is empty the publication gateway degrades to a no-op.
type Publication struct {
	Repository     string `toml:"repository"`
	Endpoint       string `toml:"endpoint"`
	Token          string `toml:"token"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Backups contains retention settings for metadata document backups.
type Backups struct {
	KeepRaw        int `toml:"keep_raw"`
	KeepCompressed int `toml:"keep_compressed"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for recite.
type Config struct {
	Paths       Paths       `toml:"paths"`
	Settings    Settings    `toml:"settings"`
	Identity    Identity    `toml:"identity"`
	Publication Publication `toml:"publication"`
	Backups     Backups     `toml:"backups"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/recite/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Save writes the configuration document atomically, replacing any previous
// content. Used when an administrator updates a policy setting.
func (c *Config) Save(path string) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// WriteSample writes the annotated sample configuration to path. It refuses
// to overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// MetadataFile returns the path of the metadata store document.
func (c *Config) MetadataFile() string {
	return filepath.Join(c.Paths.DataDir, "metadata.json")
}

// BackupDir returns the directory holding metadata document backups.
func (c *Config) BackupDir() string {
	return filepath.Join(c.Paths.DataDir, "backups")
}

// AudioDir returns the directory holding submitted audio recordings.
func (c *Config) AudioDir() string {
	return filepath.Join(c.Paths.DataDir, "audio_recordings")
}

// SyncLedgerPath returns the path of the publication sync ledger database.
func (c *Config) SyncLedgerPath() string {
	return filepath.Join(c.Paths.DataDir, "sync.db")
}

// EnsureDirectories materializes the directories recite writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.BackupDir(), c.AudioDir()}
	if c.Paths.LogDir != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// IsAdmin reports whether handle matches the configured administrator.
func (c *Config) IsAdmin(handle string) bool {
	return handle != "" && handle == c.Settings.AdminHandle
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("recite.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.CatalogFile, err = expandPath(c.Paths.CatalogFile); err != nil {
		return fmt.Errorf("paths.catalog_file: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Settings.AdminHandle = strings.TrimSpace(c.Settings.AdminHandle)
	c.Identity.BaseURL = strings.TrimRight(strings.TrimSpace(c.Identity.BaseURL), "/")
	c.Publication.Endpoint = strings.TrimRight(strings.TrimSpace(c.Publication.Endpoint), "/")
	c.Publication.Repository = strings.TrimSpace(c.Publication.Repository)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

// ExpandPath resolves ~ and relative segments in a user-supplied path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}
