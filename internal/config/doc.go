// Package config loads folio's TOML configuration.
//
// # Resolution
//
// Load follows this order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/folio/config.toml
//  3. If the file doesn't exist, use the defaults from Default
//  4. Blank fields in an existing file keep their defaults
//
// # TOML Format
//
//	openlibrary_url   = "https://openlibrary.org"
//	wikipedia_url     = "https://en.wikipedia.org"
//	user_agent        = "folio/0.1 (+https://github.com/five82/folio)"
//	request_timeout   = "10s"
//	wikipedia_timeout = "5s"
//	recent_interval   = "5m"
//	recent_limit      = 5
//	log_dir           = "~/.local/state/folio"
//	log_level         = "info"
//
// Every field is optional. Durations use time.ParseDuration syntax and must
// be positive, as must recent_limit. log_dir is tilde-expanded and made
// absolute. The TUI writes its log to <log_dir>/folio.log.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML syntax errors and invalid values, all prefixed "parse config"
//
// A missing file is not an error so folio works without any setup.
package config
