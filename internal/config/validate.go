package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSettings(); err != nil {
		return err
	}
	if err := c.validateIdentity(); err != nil {
		return err
	}
	if err := c.validatePublication(); err != nil {
		return err
	}
	if err := c.validateBackups(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.CatalogFile == "" {
		return errors.New("paths.catalog_file must be set")
	}
	return nil
}

func (c *Config) validateSettings() error {
	if c.Settings.AdminHandle == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/recite/config.toml"
		}
		return fmt.Errorf("settings.admin_handle is required. Edit %s (create with 'recite config init')", defaultPath)
	}
	if c.Settings.MaxRecordingsPerVerse < 1 {
		return errors.New("settings.max_recordings_per_verse must be at least 1")
	}
	return nil
}

func (c *Config) validateIdentity() error {
	if c.Identity.BaseURL == "" {
		return errors.New("identity.base_url must be set")
	}
	if c.Identity.RequestTimeout < 1 {
		return errors.New("identity.request_timeout must be at least 1 second")
	}
	return nil
}

func (c *Config) validatePublication() error {
	if c.Publication.Endpoint != "" && c.Publication.Repository == "" {
		return errors.New("publication.repository must be set when publication.endpoint is configured")
	}
	if c.Publication.RequestTimeout < 1 {
		return errors.New("publication.request_timeout must be at least 1 second")
	}
	return nil
}

func (c *Config) validateBackups() error {
	if c.Backups.KeepRaw < 1 {
		return errors.New("backups.keep_raw must be at least 1")
	}
	if c.Backups.KeepCompressed < 0 {
		return errors.New("backups.keep_compressed must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
