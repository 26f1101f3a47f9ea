package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
store:
  path: /var/lib/cn-calendar/schedule.db
source:
  url: https://example.com/holidays
  timeout: 5s
  cache_ttl: 12h
server:
  addr: ":9090"
log:
  file: cn-calendar.log
  level: debug
anniversaries:
  "n01-01": "春节"
  "03-08": "结婚纪念日"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.Path != "/var/lib/cn-calendar/schedule.db" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Source.URL != "https://example.com/holidays" {
		t.Errorf("Source.URL = %q", cfg.Source.URL)
	}
	if got := cfg.Source.GetTimeout(); got != 5*time.Second {
		t.Errorf("GetTimeout() = %v, want 5s", got)
	}
	if got := cfg.Source.GetCacheTTL(); got != 12*time.Hour {
		t.Errorf("GetCacheTTL() = %v, want 12h", got)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if len(cfg.Anniversaries) != 2 || cfg.Anniversaries["n01-01"] != "春节" {
		t.Errorf("Anniversaries = %v", cfg.Anniversaries)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
source:
  url: https://example.com/holidays
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.Path != "cn-calendar.db" {
		t.Errorf("Store.Path = %q, want default cn-calendar.db", cfg.Store.Path)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want default :8080", cfg.Server.Addr)
	}
	if got := cfg.Source.GetTimeout(); got != 10*time.Second {
		t.Errorf("GetTimeout() = %v, want default 10s", got)
	}
	if got := cfg.Source.GetCacheTTL(); got != 24*time.Hour {
		t.Errorf("GetCacheTTL() = %v, want default 24h", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Missing source URL", "store:\n  path: a.db\n"},
		{"Bad timeout", "source:\n  url: https://example.com\n  timeout: soon\n"},
		{"Bad cache TTL", "source:\n  url: https://example.com\n  cache_ttl: daily\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load() accepted an invalid config")
			}
		})
	}
}
