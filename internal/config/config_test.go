package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provision.WorkDir != filepath.Join(home, ".ctxlaunch", "bin") {
		t.Errorf("WorkDir = %q", cfg.Provision.WorkDir)
	}
	if cfg.Server.Port != 8137 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if len(cfg.Servers) != 0 {
		t.Errorf("Servers = %v, want empty", cfg.Servers)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(dir)

	yaml := `
servers:
  grafana:
    url: https://grafana.example
    api_key: sa-token
    enabled_tools: [incident, dashboard]
    debug: true
provision:
  work_dir: /var/lib/ctxlaunch
server:
  port: 9000
`
	if err := os.WriteFile(filepath.Join(dir, "ctxlaunch.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	payload, ok := cfg.Servers["grafana"]
	if !ok {
		t.Fatal("grafana payload missing")
	}
	if payload.URL != "https://grafana.example" || payload.APIKey != "sa-token" {
		t.Errorf("payload = %+v", payload)
	}
	if len(payload.EnabledTools) != 2 || payload.EnabledTools[0] != "incident" {
		t.Errorf("EnabledTools = %v", payload.EnabledTools)
	}
	if !payload.Debug {
		t.Error("Debug not parsed")
	}
	if cfg.Provision.WorkDir != "/var/lib/ctxlaunch" {
		t.Errorf("WorkDir = %q", cfg.Provision.WorkDir)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(dir)

	if err := os.WriteFile(filepath.Join(dir, "ctxlaunch.yaml"), []byte("servers: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed config")
	}
}
