package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://localhost:8000" {
		t.Fatalf("api url = %q", cfg.APIURL)
	}
	if cfg.ScansInterval() != 8*time.Second {
		t.Fatalf("scans interval = %v, want 8s", cfg.ScansInterval())
	}
	if cfg.SchedulesInterval() != 15*time.Second || cfg.ProjectsInterval() != 30*time.Second {
		t.Fatalf("intervals = %v / %v", cfg.SchedulesInterval(), cfg.ProjectsInterval())
	}
}

func TestLoadReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osintdash.yaml")
	data := []byte("api_url: http://dash.internal:9000\npoll:\n  scans_seconds: 3\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://dash.internal:9000" {
		t.Fatalf("api url = %q", cfg.APIURL)
	}
	if cfg.ScansInterval() != 3*time.Second {
		t.Fatalf("scans interval = %v, want 3s", cfg.ScansInterval())
	}
	// Unset intervals keep their defaults.
	if cfg.SchedulesInterval() != 15*time.Second {
		t.Fatalf("schedules interval = %v, want 15s", cfg.SchedulesInterval())
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osintdash.yaml")
	if err := os.WriteFile(path, []byte("api_url: http://file.example\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OSINTDASH_API_URL", "http://env.example")
	t.Setenv("OSINTDASH_WS_URL", "ws://env.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://env.example" {
		t.Fatalf("api url = %q, want env override", cfg.APIURL)
	}
	if cfg.WSURL != "ws://env.example" {
		t.Fatalf("ws url = %q, want env override", cfg.WSURL)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osintdash.yaml")
	if err := os.WriteFile(path, []byte("api_url: [unclosed\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed config loaded without error")
	}
}

func TestLoadClampsNonPositiveIntervals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osintdash.yaml")
	if err := os.WriteFile(path, []byte("poll:\n  scans_seconds: -1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ScansInterval() != 8*time.Second {
		t.Fatalf("scans interval = %v, want default 8s", cfg.ScansInterval())
	}
}
