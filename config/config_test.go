package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoadEnvAppliesLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\n"), 0644); err != nil {
		t.Fatal(err)
	}
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(oldwd) })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	if LogLevel() != logrus.InfoLevel {
		t.Fatal("precondition: level defaults to info before env loading")
	}
	LoadEnv(logger)
	if LogLevel() != logrus.DebugLevel {
		t.Error("a LOG_LEVEL set only in .env must take effect after LoadEnv")
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("MAX_CANDIDATES", "")
	t.Setenv("FETCH_TIMEOUT", "")
	cfg := Load()
	if cfg.MaxCandidates != 50 {
		t.Errorf("expected default 50 candidates, got %d", cfg.MaxCandidates)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("expected default 30s fetch timeout, got %v", cfg.FetchTimeout)
	}

	t.Setenv("MAX_CANDIDATES", "5")
	t.Setenv("FETCH_TIMEOUT", "2s")
	t.Setenv("VOLUME_WEIGHT", "0.7")
	cfg = Load()
	if cfg.MaxCandidates != 5 || cfg.FetchTimeout != 2*time.Second || cfg.VolumeWeight != 0.7 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_CANDIDATES", "lots")
	t.Setenv("FETCH_TIMEOUT", "soon")
	cfg := Load()
	if cfg.MaxCandidates != 50 || cfg.FetchTimeout != 30*time.Second {
		t.Errorf("malformed values must fall back to defaults: %+v", cfg)
	}
}
