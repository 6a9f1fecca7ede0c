package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8080" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.DatabasePath != "callsheet.db" {
		t.Errorf("database path = %q", cfg.DatabasePath)
	}
	if cfg.Auth.SessionTTL != 24*time.Hour {
		t.Errorf("session ttl = %v", cfg.Auth.SessionTTL)
	}
}

func TestLoadFileAndNormalize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("listen: 0.0.0.0:9090\nauth:\n  admin_username: ops\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "0.0.0.0:9090" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.Auth.AdminUsername != "ops" {
		t.Errorf("admin username = %q", cfg.Auth.AdminUsername)
	}
	// Unset fields fall back to defaults.
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.Jobs.SessionSweep != "@hourly" {
		t.Errorf("session sweep = %q", cfg.Jobs.SessionSweep)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CALLSHEET_LISTEN", ":7070")
	t.Setenv("CALLSHEET_SESSION_TTL", "2h")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":7070" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.Auth.SessionTTL != 2*time.Hour {
		t.Errorf("session ttl = %v", cfg.Auth.SessionTTL)
	}
}
