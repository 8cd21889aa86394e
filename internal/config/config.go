package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

type Config struct {
	// Layout
	DataDir string
	CSVDir  string
	H5Dir   string

	// Limits
	MaxFileBytes   int64
	ExtractTimeout time.Duration

	// Output
	OutputFormat string
	PreviewRows  int
	LogLevel     string
}

func Load() Config {
	return Config{
		DataDir: envStr("TRACE_DATA_DIR", "data"),
		CSVDir:  envStr("TRACE_CSV_DIR", "csv"),
		H5Dir:   envStr("TRACE_H5_DIR", "h5"),

		MaxFileBytes:   int64(envInt("TRACE_MAX_FILE_BYTES", int(512<<20))),
		ExtractTimeout: envDur("TRACE_EXTRACT_TIMEOUT", 60*time.Second),

		OutputFormat: strings.ToLower(envStr("TRACE_OUTPUT_FORMAT", "text")),
		PreviewRows:  envInt("TRACE_PREVIEW_ROWS", 5),
		LogLevel:     envStr("TRACE_LOG_LEVEL", "info"),
	}
}

func (c Config) Validate() error {
	switch c.OutputFormat {
	case "text", "yaml":
	default:
		return fmt.Errorf("TRACE_OUTPUT_FORMAT must be text or yaml, got %q", c.OutputFormat)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("TRACE_LOG_LEVEL: %w", err)
	}
	return nil
}

// Dir returns the directory scanned for files of the given extension.
func (c Config) Dir(ext string) string {
	sub := c.CSVDir
	if strings.EqualFold(strings.TrimPrefix(ext, "."), "h5") {
		sub = c.H5Dir
	}
	if filepath.IsAbs(sub) {
		return sub
	}
	return filepath.Join(c.DataDir, sub)
}

func envStr(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDur(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
