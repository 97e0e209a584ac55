// Package config loads and persists recite configuration.
//
// Configuration lives in a single TOML document that carries both bootstrap
// settings (paths, catalog source, identity and publication endpoints) and
// the admin-mutable policy settings (recording cap, approval policy, sync
// policy). Load applies defaults, expands paths, and validates; Save rewrites
// the document atomically when an administrator changes a policy value.
package config
