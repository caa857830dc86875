package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("server.address = %q, want %q", cfg.Server.Address, ":8080")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %q/%q", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Engine.ConsequenceFuse != 1000 {
		t.Errorf("engine.consequence_fuse = %d, want 1000", cfg.Engine.ConsequenceFuse)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  address: ":9000"
  write_timeout: 5s
logging:
  level: debug
  format: console
database:
  url: "postgres://db:5432/games"
  max_conns: 20
engine:
  consequence_fuse: 50
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Address != ":9000" {
		t.Errorf("server.address = %q", cfg.Server.Address)
	}
	if cfg.Server.WriteTimeout != 5*time.Second {
		t.Errorf("server.write_timeout = %v", cfg.Server.WriteTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q", cfg.Logging.Level)
	}
	if cfg.Database.MaxConns != 20 {
		t.Errorf("database.max_conns = %d", cfg.Database.MaxConns)
	}
	if cfg.Engine.ConsequenceFuse != 50 {
		t.Errorf("engine.consequence_fuse = %d", cfg.Engine.ConsequenceFuse)
	}
	// untouched keys keep their defaults
	if cfg.Engine.TieBreakerDepth != 10 {
		t.Errorf("engine.tie_breaker_depth = %d", cfg.Engine.TieBreakerDepth)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
engine:
  consequence_fuse: 0
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() accepted a zero consequence fuse")
	}
}
