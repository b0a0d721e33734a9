// Package config loads clusterboard's client configuration.
//
// # Resolution Order
//
//  1. Hardcoded defaults
//  2. ~/.config/clusterboard/config.toml, or the path passed to Load
//  3. The CLUSTERBOARD_API_BASE environment variable
//  4. Command-line flags, applied by the caller
//
// A missing file is not an error. Empty or blank fields keep their defaults.
//
// # TOML Format
//
//	api_base = "http://localhost:5000"
//	user_id = "alice"
//	poll_seconds = 5
//	log_file = "~/.local/state/clusterboard/clusterboard.log"
//	export_dir = "~/.local/share/clusterboard/exports"
//
// Tilde expansion is applied to log_file and export_dir. api_base is passed to
// api.NewClient unchanged, which adds a scheme when one is missing.
package config
