package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment variable overrides
const (
	EnvDir           = "CMDCACHE_DIR"
	EnvDuration      = "CMDCACHE_DURATION"
	EnvCacheFailures = "CMDCACHE_CACHE_FAILURES"
	EnvConfig        = "CMDCACHE_CONFIG"
)

// maxSeconds is the largest TTL in seconds a time.Duration can hold
const maxSeconds = uint64(math.MaxInt64 / int64(time.Second))

// DefaultCacheDuration is the TTL used when nothing else is configured
const DefaultCacheDuration = "1min"

// Config holds the cmdcache configuration
type Config struct {
	CacheDir      string `toml:"cache_dir"`      // root for cache entries (empty = platform cache dir)
	CacheDuration string `toml:"cache_duration"` // default TTL, e.g. "1min", "2h 30m"
	CacheFailures bool   `toml:"cache_failures"` // cache non-zero exit codes
	LockTimeout   string `toml:"lock_timeout"`   // max wait for an entry lock (empty = forever)
}

// Default returns the default configuration
func Default() Config {
	return Config{
		CacheDuration: DefaultCacheDuration,
	}
}

// TTL parses the configured cache duration.
func (c *Config) TTL() (time.Duration, error) {
	d, err := ParseDuration(c.CacheDuration)
	if err != nil {
		return 0, fmt.Errorf("invalid cache_duration %q: %w", c.CacheDuration, err)
	}
	return d, nil
}

// LockWait parses the configured lock timeout. Zero means wait forever.
func (c *Config) LockWait() (time.Duration, error) {
	if c.LockTimeout == "" {
		return 0, nil
	}
	d, err := ParseDuration(c.LockTimeout)
	if err != nil {
		return 0, fmt.Errorf("lock_timeout: %w", err)
	}
	return d, nil
}

// ValidatePath checks that the path is absolute or starts with ~
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil
	}
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) (string, error) {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// Path returns the config file location.
// CMDCACHE_CONFIG > $XDG_CONFIG_HOME/cmdcache/config.toml > ~/.config/cmdcache/config.toml
func Path() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cmdcache", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cmdcache", "config.toml"), nil
}

// Load reads the config file and applies environment overrides.
// Returns Default() (with env overrides) if the file doesn't exist.
// Returns an error only if the file exists but is invalid; the returned
// config is then still usable.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		cfg := Default()
		return cfg, applyEnv(&cfg)
	}
	return LoadFile(path)
}

// LoadFile reads config from path and applies environment overrides.
func LoadFile(path string) (Config, error) {
	cfg, fileErr := loadFile(path)
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, fileErr
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ValidatePath(cfg.CacheDir, "cache_dir"); err != nil {
		return Default(), err
	}
	if cfg.CacheDir != "" {
		expanded, err := expandPath(cfg.CacheDir)
		if err != nil {
			return Default(), fmt.Errorf("expand cache_dir: %w", err)
		}
		cfg.CacheDir = expanded
	}

	if cfg.CacheDuration == "" {
		cfg.CacheDuration = DefaultCacheDuration
	}
	if _, err := cfg.TTL(); err != nil {
		return Default(), err
	}
	if _, err := cfg.LockWait(); err != nil {
		return Default(), err
	}

	return cfg, nil
}

// applyEnv overrides config values from the environment.
func applyEnv(cfg *Config) error {
	if dir := os.Getenv(EnvDir); dir != "" {
		cfg.CacheDir = dir
	}
	if d := os.Getenv(EnvDuration); d != "" {
		if _, err := ParseDuration(d); err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvDuration, d, err)
		}
		cfg.CacheDuration = d
	}
	if v := os.Getenv(EnvCacheFailures); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvCacheFailures, v, err)
		}
		cfg.CacheFailures = b
	}
	return nil
}

// ResolveTTL picks the effective TTL. An explicit seconds value wins over
// the duration string.
func ResolveTTL(seconds *uint64, duration string) (time.Duration, error) {
	if seconds != nil {
		if *seconds > maxSeconds {
			return time.Duration(math.MaxInt64), nil
		}
		return time.Duration(*seconds) * time.Second, nil
	}
	d, err := ParseDuration(duration)
	if err != nil {
		return 0, fmt.Errorf("invalid cache duration %q: %w", duration, err)
	}
	return d, nil
}

type ctxKey struct{}

// WithConfig attaches the config to the context.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext returns the config stored in ctx, or the defaults.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}
	cfg := Default()
	return &cfg
}
