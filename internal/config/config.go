// Package config loads the YAML configuration file and applies environment
// overrides. A missing file is not an error; defaults apply and CALLSHEET_*
// variables can override any field, so containers can run config-free.
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AuthConfig holds the operator bootstrap credentials and session policy.
type AuthConfig struct {
	// AdminUsername and AdminPassword seed the first operator account on
	// startup. The password is stored only as a bcrypt hash.
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`

	// SessionTTL is how long a login stays valid.
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// JobsConfig holds the cron schedules for background maintenance.
type JobsConfig struct {
	// SessionSweep removes expired sessions.
	SessionSweep string `yaml:"session_sweep"`

	// ConflictDigest logs a summary of the coming day's conflicts.
	ConflictDigest string `yaml:"conflict_digest"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// DatabasePath is the SQLite database file.
	DatabasePath string `yaml:"database_path"`

	// LogLevel accepts debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`

	// LogFormat accepts text or json.
	LogFormat string `yaml:"log_format"`

	Auth AuthConfig `yaml:"auth"`
	Jobs JobsConfig `yaml:"jobs"`
}

// Default returns the in-memory default configuration.
func Default() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		DatabasePath: "callsheet.db",
		LogLevel:     "info",
		LogFormat:    "text",
		Auth: AuthConfig{
			AdminUsername: "admin",
			SessionTTL:    24 * time.Hour,
		},
		Jobs: JobsConfig{
			SessionSweep:   "@hourly",
			ConflictDigest: "0 6 * * *",
		},
	}
}

// Normalize fills missing or zero values so a partially filled config still
// behaves.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "callsheet.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.Auth.AdminUsername == "" {
		c.Auth.AdminUsername = "admin"
	}
	if c.Auth.SessionTTL <= 0 {
		c.Auth.SessionTTL = 24 * time.Hour
	}
	if c.Jobs.SessionSweep == "" {
		c.Jobs.SessionSweep = "@hourly"
	}
	if c.Jobs.ConflictDigest == "" {
		c.Jobs.ConflictDigest = "0 6 * * *"
	}
}

// Load reads the YAML file at path, falling back to defaults when the file
// does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Run on defaults plus environment.
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.applyEnv()
	cfg.Normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CALLSHEET_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("CALLSHEET_DB_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("CALLSHEET_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("CALLSHEET_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("CALLSHEET_ADMIN_USERNAME"); v != "" {
		c.Auth.AdminUsername = v
	}
	if v := os.Getenv("CALLSHEET_ADMIN_PASSWORD"); v != "" {
		c.Auth.AdminPassword = v
	}
	if v := os.Getenv("CALLSHEET_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Auth.SessionTTL = d
		}
	}
}
