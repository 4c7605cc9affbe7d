package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(path string) error {
	raw := "listen_addr: \":9100\"\nreports:\n  disable_under_review: true\n"
	return os.WriteFile(path, []byte(raw), 0o600)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Reports.DefaultPriority != "Medium" {
		t.Fatalf("default priority = %q, want Medium", cfg.Reports.DefaultPriority)
	}
	if cfg.Reports.DisableUnderReview {
		t.Fatalf("Under Review should be enabled by default")
	}
	if cfg.Reports.ListLimit != 50 {
		t.Fatalf("list limit = %d, want 50", cfg.Reports.ListLimit)
	}
	if cfg.Pool.MaxOpenConns != 10 {
		t.Fatalf("max open conns = %d, want 10", cfg.Pool.MaxOpenConns)
	}
}

func TestLoad_ReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := writeTestConfig(path); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":9100" {
		t.Fatalf("listen addr = %q, want :9100", cfg.ListenAddr)
	}
	if !cfg.Reports.DisableUnderReview {
		t.Fatalf("Under Review should be disabled by the file")
	}
}
