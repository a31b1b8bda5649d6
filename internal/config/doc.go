// Package config loads, validates, and normalizes the TOML configuration that
// drives the clipforge pipeline, upload worker, and CLI.
package config
