package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/nexus-client/errors"
)

// isolated returns options that keep Load away from the real user files.
func isolated(t *testing.T, env map[string]string) []LoadOption {
	t.Helper()
	dir := t.TempDir()
	return []LoadOption{
		WithConfigFile(filepath.Join(dir, "config.env")),
		WithDotEnvFile(filepath.Join(dir, ".env")),
		WithNetrcFile(filepath.Join(dir, ".netrc")),
		WithEnviron(env),
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(isolated(t, map[string]string{})...)
	require.NoError(t, err)

	assert.Equal(t, DefaultURL, cfg.URL)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	assert.Zero(t, cfg.Timeout)
	assert.False(t, cfg.HasCredentials())
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoad_Layering(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.env")
	dotEnv := filepath.Join(dir, ".env")
	writeFile(t, configFile, "NEXUS_URL=https://config.example.com\nNEXUS_CONCURRENCY=4\nNEXUS_TIMEOUT=30s\n")
	writeFile(t, dotEnv, "NEXUS_URL=https://dotenv.example.com/\n")

	cfg, err := Load(
		WithConfigFile(configFile),
		WithDotEnvFile(dotEnv),
		WithNetrcFile(filepath.Join(dir, "missing")),
		WithEnviron(map[string]string{EnvConcurrency: "16", EnvLogLevel: "debug"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "https://dotenv.example.com", cfg.URL)
	assert.Equal(t, 16, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoad_Credentials(t *testing.T) {
	tests := []struct {
		name         string
		env          map[string]string
		netrc        string
		wantUser     string
		wantPassword string
	}{
		{
			name:         "from NEXUS_AUTH",
			env:          map[string]string{EnvAuth: "bob:pa:ss"},
			wantUser:     "bob",
			wantPassword: "pa:ss",
		},
		{
			name:         "from netrc",
			env:          map[string]string{EnvURL: "https://repo.example.com"},
			netrc:        "machine repo.example.com login alice password s3cret\n",
			wantUser:     "alice",
			wantPassword: "s3cret",
		},
		{
			name:         "NEXUS_AUTH wins over netrc",
			env:          map[string]string{EnvURL: "https://repo.example.com", EnvAuth: "bob:x"},
			netrc:        "machine repo.example.com login alice password s3cret\n",
			wantUser:     "bob",
			wantPassword: "x",
		},
		{
			name:  "netrc for another host",
			env:   map[string]string{EnvURL: "https://repo.example.com"},
			netrc: "machine other.example.com login alice password s3cret\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			netrcFile := filepath.Join(dir, ".netrc")
			if tt.netrc != "" {
				writeFile(t, netrcFile, tt.netrc)
			}

			cfg, err := Load(
				WithConfigFile(filepath.Join(dir, "config.env")),
				WithDotEnvFile(filepath.Join(dir, ".env")),
				WithNetrcFile(netrcFile),
				WithEnviron(tt.env),
			)
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, cfg.User)
			assert.Equal(t, tt.wantPassword, cfg.Password)
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		errContains string
	}{
		{name: "malformed auth", env: map[string]string{EnvAuth: "nopassword"}, errContains: "user:password"},
		{name: "empty user", env: map[string]string{EnvAuth: ":secret"}, errContains: "user:password"},
		{name: "bad scheme", env: map[string]string{EnvURL: "ftp://repo.example.com"}, errContains: "unsupported scheme"},
		{name: "no host", env: map[string]string{EnvURL: "https://"}, errContains: "missing host"},
		{name: "concurrency not a number", env: map[string]string{EnvConcurrency: "many"}, errContains: EnvConcurrency},
		{name: "concurrency zero", env: map[string]string{EnvConcurrency: "0"}, errContains: "outside 1..64"},
		{name: "concurrency too high", env: map[string]string{EnvConcurrency: "65"}, errContains: "outside 1..64"},
		{name: "bad timeout", env: map[string]string{EnvTimeout: "soon"}, errContains: EnvTimeout},
		{name: "negative timeout", env: map[string]string{EnvTimeout: "-1s"}, errContains: "negative"},
		{name: "bad log level", env: map[string]string{EnvLogLevel: "loud"}, errContains: "unknown level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(isolated(t, tt.env)...)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidConfig(err))
			assert.Equal(t, errors.CodeInvalidConfig, errors.CodeOf(err))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoad_MalformedNetrc(t *testing.T) {
	dir := t.TempDir()
	netrcFile := filepath.Join(dir, ".netrc")
	writeFile(t, netrcFile, "machine repo.example.com login a login b\n")

	_, err := Load(
		WithConfigFile(filepath.Join(dir, "config.env")),
		WithDotEnvFile(filepath.Join(dir, ".env")),
		WithNetrcFile(netrcFile),
		WithEnviron(map[string]string{EnvURL: "https://repo.example.com"}),
	)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidConfig(err))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: " error ", want: slog.LevelError},
		{in: "trace", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
