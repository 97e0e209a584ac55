// Package logging constructs the slog loggers used across recite.
//
// Loggers are built from the configuration's logging section: console (text)
// or JSON format, a minimum level, and an optional log file under the
// configured log directory in addition to stderr.
package logging
