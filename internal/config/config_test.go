package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"TRACE_DATA_DIR", "TRACE_CSV_DIR", "TRACE_H5_DIR", "TRACE_MAX_FILE_BYTES",
		"TRACE_EXTRACT_TIMEOUT", "TRACE_OUTPUT_FORMAT", "TRACE_PREVIEW_ROWS", "TRACE_LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate, got %v", err)
	}
	if cfg.Dir("csv") != filepath.Join("data", "csv") {
		t.Fatalf("unexpected csv dir %q", cfg.Dir("csv"))
	}
	if cfg.Dir(".H5") != filepath.Join("data", "h5") {
		t.Fatalf("unexpected h5 dir %q", cfg.Dir(".H5"))
	}
	if cfg.PreviewRows != 5 || cfg.ExtractTimeout != 60*time.Second || cfg.MaxFileBytes != 512<<20 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TRACE_DATA_DIR", "/srv/lab")
	t.Setenv("TRACE_H5_DIR", "/mnt/h5")
	t.Setenv("TRACE_OUTPUT_FORMAT", "YAML")
	t.Setenv("TRACE_PREVIEW_ROWS", "-3")
	t.Setenv("TRACE_EXTRACT_TIMEOUT", "2s")

	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if cfg.OutputFormat != "yaml" {
		t.Fatalf("expected yaml, got %q", cfg.OutputFormat)
	}
	if cfg.PreviewRows != 5 {
		t.Fatalf("expected invalid preview rows to fall back, got %d", cfg.PreviewRows)
	}
	if cfg.ExtractTimeout != 2*time.Second {
		t.Fatalf("expected 2s timeout, got %s", cfg.ExtractTimeout)
	}
	if cfg.Dir("csv") != filepath.Join("/srv/lab", "csv") || cfg.Dir("h5") != "/mnt/h5" {
		t.Fatalf("unexpected dirs %q %q", cfg.Dir("csv"), cfg.Dir("h5"))
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Config{OutputFormat: "xml", LogLevel: "info"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown output format to be rejected")
	}
	cfg = Config{OutputFormat: "text", LogLevel: "loud"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown log level to be rejected")
	}
}
