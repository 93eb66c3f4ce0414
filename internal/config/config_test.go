package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenFileAbsent(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Trim.CopyTimeout != defaultTrimCopyTimeout {
		t.Fatalf("unexpected copy timeout: %d", cfg.Trim.CopyTimeout)
	}
	if cfg.Renderer.Concurrency != 1 {
		t.Fatalf("unexpected renderer concurrency: %d", cfg.Renderer.Concurrency)
	}
	if !filepath.IsAbs(cfg.Paths.StagingDir) {
		t.Fatalf("staging dir not expanded: %q", cfg.Paths.StagingDir)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
staging_dir = "` + filepath.Join(dir, "staging") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[trim]
copy_timeout = 30
encode_timeout = 60

[renderer]
binary = "/usr/local/bin/renderer"
timeout = 45

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected resolved path %q, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Trim.CopyTimeout != 30 || cfg.Trim.EncodeTimeout != 60 {
		t.Fatalf("trim overrides not applied: %+v", cfg.Trim)
	}
	if cfg.Renderer.Binary != "/usr/local/bin/renderer" || cfg.Renderer.Timeout != 45 {
		t.Fatalf("renderer overrides not applied: %+v", cfg.Renderer)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging overrides not applied: %+v", cfg.Logging)
	}
	// Defaults survive partial override.
	if cfg.Trim.CRF != defaultTrimCRF {
		t.Fatalf("crf default lost: %d", cfg.Trim.CRF)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero copy timeout", func(c *Config) { c.Trim.CopyTimeout = 0 }, "copy_timeout"},
		{"crf out of range", func(c *Config) { c.Trim.CRF = 99 }, "crf"},
		{"empty renderer binary", func(c *Config) { c.Renderer.Binary = "" }, "renderer.binary"},
		{"zero concurrency", func(c *Config) { c.Renderer.Concurrency = 0 }, "concurrency"},
		{"bad log format", func(c *Config) { c.Logging.Format = "yaml" }, "logging.format"},
	}
	for _, tc := range cases {
		cfg := Default()
		if err := cfg.normalize(); err != nil {
			t.Fatalf("%s: normalize: %v", tc.name, err)
		}
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected validation error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q missing %q", tc.name, err, tc.want)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample file not detected")
	}
	if cfg.Renderer.Composition != defaultRendererComposition {
		t.Fatalf("sample changed defaults: %q", cfg.Renderer.Composition)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/staging")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got != filepath.Join(home, "staging") {
		t.Fatalf("unexpected expansion: %q", got)
	}
}
