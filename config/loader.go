package config

import (
	stderrors "errors"
	"io/fs"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/bgentry/go-netrc/netrc"
	"github.com/joho/godotenv"
)

// ConfigFileName is the file looked up below the XDG config home.
const ConfigFileName = "nexus/config.env"

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// ConfigFile overrides the XDG config file path
	ConfigFile string

	// DotEnvFile overrides the .env path; defaults to ".env"
	DotEnvFile string

	// NetrcFile overrides the netrc path; defaults to ~/.netrc
	NetrcFile string

	// Environ replaces the process environment when set
	Environ map[string]string
}

// LoadOption configures Load.
type LoadOption func(*LoadOptions)

// WithConfigFile reads the given file instead of the XDG config file.
func WithConfigFile(path string) LoadOption {
	return func(o *LoadOptions) {
		o.ConfigFile = path
	}
}

// WithDotEnvFile reads the given file instead of ./.env.
func WithDotEnvFile(path string) LoadOption {
	return func(o *LoadOptions) {
		o.DotEnvFile = path
	}
}

// WithNetrcFile reads credentials from the given netrc file.
func WithNetrcFile(path string) LoadOption {
	return func(o *LoadOptions) {
		o.NetrcFile = path
	}
}

// WithEnviron uses env instead of the process environment.
func WithEnviron(env map[string]string) LoadOption {
	return func(o *LoadOptions) {
		o.Environ = env
	}
}

// Load resolves and validates the configuration.
func Load(opts ...LoadOption) (*Config, error) {
	o := LoadOptions{DotEnvFile: ".env"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ConfigFile == "" {
		o.ConfigFile = filepath.Join(xdg.ConfigHome, ConfigFileName)
	}
	if o.NetrcFile == "" {
		o.NetrcFile = filepath.Join(xdg.Home, ".netrc")
	}

	values := make(map[string]string)
	for _, file := range []string{o.ConfigFile, o.DotEnvFile} {
		env, err := readEnvFile(file)
		if err != nil {
			return nil, err
		}
		maps.Copy(values, env)
	}
	if o.Environ != nil {
		maps.Copy(values, o.Environ)
	} else {
		maps.Copy(values, processEnv())
	}

	cfg, err := fromValues(values)
	if err != nil {
		return nil, err
	}
	if !cfg.HasCredentials() {
		if err := cfg.applyNetrc(o.NetrcFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readEnvFile parses a dotenv file; a missing file yields no values.
func readEnvFile(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, invalid("read %s: %v", path, err)
	}
	return env, nil
}

func processEnv() map[string]string {
	env := make(map[string]string)
	for _, key := range []string{EnvURL, EnvAuth, EnvConcurrency, EnvTimeout, EnvLogLevel, EnvUserAgent} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env
}

func fromValues(values map[string]string) (*Config, error) {
	cfg := Default()

	if v := values[EnvURL]; v != "" {
		cfg.URL = strings.TrimSuffix(v, "/")
	}
	if v, ok := values[EnvAuth]; ok && v != "" {
		user, password, found := strings.Cut(v, ":")
		if !found || user == "" {
			return nil, invalid("%s: expected user:password", EnvAuth)
		}
		cfg.User, cfg.Password = user, password
	}
	if v := values[EnvConcurrency]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, invalid("%s: %v", EnvConcurrency, err)
		}
		cfg.Concurrency = n
	}
	if v := values[EnvTimeout]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, invalid("%s: %v", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	if v := values[EnvLogLevel]; v != "" {
		cfg.LogLevel = v
	}
	cfg.UserAgent = values[EnvUserAgent]
	return cfg, nil
}

// applyNetrc fills credentials from the netrc entry of the server host.
func (c *Config) applyNetrc(path string) error {
	u, err := url.Parse(c.URL)
	if err != nil || u.Hostname() == "" {
		// Validate reports the URL problem.
		return nil
	}

	machine, err := netrc.FindMachine(path, u.Hostname())
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return invalid("netrc %s: %v", path, err)
	}
	if machine == nil || machine.Login == "" {
		return nil
	}
	c.User, c.Password = machine.Login, machine.Password
	return nil
}
