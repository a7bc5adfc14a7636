// Package config resolves the settings of the nexus command line client.
//
// Settings are layered, later sources overriding earlier ones:
//
//  1. built-in defaults
//  2. $XDG_CONFIG_HOME/nexus/config.env
//  3. a .env file in the working directory
//  4. the process environment
//
// When no credentials are configured, ~/.netrc is consulted for the host of
// the server URL.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/input-output-hk/nexus-client/errors"
)

// Environment keys.
const (
	EnvURL         = "NEXUS_URL"
	EnvAuth        = "NEXUS_AUTH"
	EnvConcurrency = "NEXUS_CONCURRENCY"
	EnvTimeout     = "NEXUS_TIMEOUT"
	EnvLogLevel    = "NEXUS_LOG_LEVEL"
	EnvUserAgent   = "NEXUS_USER_AGENT"
)

// Defaults.
const (
	DefaultURL         = "https://oss.sonatype.org"
	DefaultConcurrency = 8
	DefaultLogLevel    = "info"

	// MaxConcurrency bounds NEXUS_CONCURRENCY.
	MaxConcurrency = 64
)

// Config holds the resolved client settings.
type Config struct {
	URL         string
	User        string
	Password    string
	Concurrency int

	// Timeout bounds every HTTP request; zero means no limit
	Timeout time.Duration

	LogLevel  string
	UserAgent string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		URL:         DefaultURL,
		Concurrency: DefaultConcurrency,
		LogLevel:    DefaultLogLevel,
	}
}

// HasCredentials reports whether a user name is configured.
func (c *Config) HasCredentials() bool {
	return c.User != ""
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return invalid("%s: %v", EnvURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid("%s: unsupported scheme %q", EnvURL, u.Scheme)
	}
	if u.Host == "" {
		return invalid("%s: missing host", EnvURL)
	}
	if c.Password != "" && c.User == "" {
		return invalid("%s: password without user", EnvAuth)
	}
	if c.Concurrency < 1 || c.Concurrency > MaxConcurrency {
		return invalid("%s: %d is outside 1..%d", EnvConcurrency, c.Concurrency, MaxConcurrency)
	}
	if c.Timeout < 0 {
		return invalid("%s: negative duration %s", EnvTimeout, c.Timeout)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level, falling back to info.
func (c *Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel maps debug, info, warn and error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, invalid("%s: unknown level %q", EnvLogLevel, s)
	}
}

func invalid(format string, args ...any) error {
	return errors.NewError("config", fmt.Errorf("%w: %s", errors.ErrInvalidConfig, fmt.Sprintf(format, args...)))
}
