package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/coalesce/pkg/api"
	"github.com/matzehuels/coalesce/pkg/forward"
)

// Config holds persistent defaults read from config.toml. Command-line flags
// override these values.
type Config struct {
	Simplify SimplifyConfig     `toml:"simplify"`
	Simulate forward.Parameters `toml:"simulate"`
	Cache    CacheConfig        `toml:"cache"`
	Server   ServerConfig       `toml:"server"`
}

// SimplifyConfig holds defaults for the simplify command.
type SimplifyConfig struct {
	Reorder    bool `toml:"reorder"`
	CheckOrder bool `toml:"check_order"`
	Squash     bool `toml:"squash"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Disabled  bool     `toml:"disabled"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr              string `toml:"addr"`
	MaxBodyBytes      int64  `toml:"max_body_bytes"`
	MaxSimulationWork int64  `toml:"max_simulation_work"`
}

// Duration is a time.Duration written as a string ("24h") in TOML.
type Duration struct{ time.Duration }

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Simulate: forward.DefaultParameters(),
		Server:   ServerConfig{Addr: api.DefaultAddr},
	}
}

// LoadConfig reads the TOML file at path over the defaults. A missing file is
// not an error; unknown keys are.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// configPath returns the default config file location using the XDG standard
// (~/.config/coalesce/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/coalesce).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
