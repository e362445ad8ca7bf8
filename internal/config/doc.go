// Package config handles loading and validation of cmdcache configuration.
//
// Configuration is read from a TOML file with environment variable
// overrides. Command-line flags override both.
//
// # Configuration Sources (highest priority first)
//
//   - Command-line flags (--cache-seconds, --cache-duration, ...)
//   - CMDCACHE_DIR, CMDCACHE_DURATION, CMDCACHE_CACHE_FAILURES env vars
//   - Config file settings
//   - Default values
//
// The config file lives at $CMDCACHE_CONFIG, else
// $XDG_CONFIG_HOME/cmdcache/config.toml, else ~/.config/cmdcache/config.toml:
//
//	cache_dir = "~/.cache/cmdcache"
//	cache_duration = "5min"
//	cache_failures = false
//	lock_timeout = "30s"
//
// # Durations
//
// Durations accept Go syntax ("1m30s") and human syntax with optional
// spaces ("1min", "2h 30m", "1day"). See [ParseDuration].
//
// # Path Validation
//
// cache_dir must be absolute or start with ~ so the cache location does
// not depend on the working directory.
package config
