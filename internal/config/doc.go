// Package config loads, normalizes, and validates the TOML configuration
// used by the cama CLI and background sync runner.
//
// Load applies repository defaults, decodes the config file when one exists
// (explicit path, ~/.config/cama/config.toml, or ./cama.toml), expands and
// normalizes paths, then validates the result. Callers receive a fully
// resolved Config; no other package reads the config file.
package config
