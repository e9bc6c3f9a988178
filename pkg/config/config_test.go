package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
clickhouse:
  host: localhost
  database: marketdata
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("unexpected default port %d", cfg.Server.Port)
	}
	if cfg.Limits.MaxLimit != 5000 || cfg.Limits.CandlesDefault != 200 || cfg.Limits.SymbolsDefault != 100 {
		t.Fatalf("unexpected limit defaults %+v", cfg.Limits)
	}
	if cfg.Replay.DefaultStepSeconds != 15 || cfg.Replay.MinStepSeconds != 1 || cfg.Replay.MaxStepSeconds != 60 {
		t.Fatalf("unexpected replay defaults %+v", cfg.Replay)
	}
	if cfg.Replay.HistoryLimit != 100000 {
		t.Fatalf("unexpected history limit %d", cfg.Replay.HistoryLimit)
	}
	if cfg.ClickHouse.CommandTimeout != 30*time.Second {
		t.Fatalf("unexpected command timeout %v", cfg.ClickHouse.CommandTimeout)
	}
}

func TestLoadRejectsMissingStore(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: test\n")); err == nil {
		t.Fatalf("expected validation error for missing clickhouse host")
	}
}

func TestLoadRejectsBadStepBounds(t *testing.T) {
	body := minimalConfig + `
replay:
  min_step_seconds: 30
  max_step_seconds: 10
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error for inverted step bounds")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("CLICKHOUSE_HOST", "ch.internal")
	t.Setenv("SERVER_PORT", "9001")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ClickHouse.Host != "ch.internal" {
		t.Fatalf("env host override not applied: %q", cfg.ClickHouse.Host)
	}
	if cfg.Server.Port != 9001 {
		t.Fatalf("env port override not applied: %d", cfg.Server.Port)
	}
}
