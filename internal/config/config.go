package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultPollInterval is the refresh period used when the config does not
// set one.
const DefaultPollInterval = 10 * time.Second

// Config represents ~/.carelink/config.toml.
type Config struct {
	ProviderID          string `toml:"provider_id"`
	ProviderName        string `toml:"provider_name"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	DataDir             string `toml:"data_dir"`
}

// PollInterval returns the configured refresh period, falling back to the
// default for zero or negative values.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return DefaultPollInterval
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Dir returns the data directory, resolving the default when unset.
func (c *Config) Dir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return DefaultDir()
}

// DBPath returns the path of the record database inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.Dir(), "carelink.db")
}

// LogPath returns the daemon log file path inside the data directory.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir(), "carelinkd.log")
}

// DefaultDir returns ~/.carelink.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".carelink"
	}
	return filepath.Join(home, ".carelink")
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.toml")
}

// Load reads config from the given path. Returns an error if the file is
// missing or malformed.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
