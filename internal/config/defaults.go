package config

const (
	defaultDataDir                = "~/.local/share/recite"
	defaultLogDir                 = "~/.local/share/recite/logs"
	defaultCatalogFile            = "~/.local/share/recite/catalog.csv"
	defaultMaxRecordingsPerVerse  = 5
	defaultIdentityBaseURL        = "https://huggingface.co"
	defaultIdentityTimeout        = 10
	defaultPublicationTimeout     = 60
	defaultBackupKeepRaw          = 20
	defaultBackupKeepCompressed   = 100
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			CatalogFile: defaultCatalogFile,
			LogDir:      defaultLogDir,
		},
		Settings: Settings{
			MaxRecordingsPerVerse: defaultMaxRecordingsPerVerse,
			RequireAdminApproval:  false,
			AutoSyncOnApproval:    true,
		},
		Identity: Identity{
			BaseURL:        defaultIdentityBaseURL,
			RequestTimeout: defaultIdentityTimeout,
		},
		Publication: Publication{
			RequestTimeout: defaultPublicationTimeout,
		},
		Backups: Backups{
			KeepRaw:        defaultBackupKeepRaw,
			KeepCompressed: defaultBackupKeepCompressed,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
