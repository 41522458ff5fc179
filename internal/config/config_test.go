package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Port != 5173 {
		t.Errorf("expected default port 5173, got %d", cfg.Server.Port)
	}
	if cfg.DataDir != ".vibestudio" {
		t.Errorf("expected default data_dir %q, got %q", ".vibestudio", cfg.DataDir)
	}
	if cfg.Playback.DefaultSpeed != 60 || cfg.Playback.SettleDelayMS != 200 {
		t.Errorf("unexpected playback defaults %+v", cfg.Playback)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if got := cfg.DBPath(); got != filepath.Join(".vibestudio", "studio.db") {
		t.Errorf("unexpected db path %q", got)
	}
}

func TestDefaultConfigDoesNotShareSlices(t *testing.T) {
	a := DefaultConfig()
	a.Documents.Patterns[0] = "changed"
	if DefaultConfig().Documents.Patterns[0] == "changed" {
		t.Error("DefaultConfig must return independent slices")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.vibestudio.yml")

	original := DefaultConfig()
	original.DataDir = "state"
	original.Server.Port = 9000
	original.Server.BaseURL = "https://studio.example.org"
	original.Documents.Patterns = []string{"**/*.html"}
	original.Watch.Dir = "site"
	original.Log.Level = "debug"

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.DataDir != original.DataDir {
		t.Errorf("data_dir: got %q, want %q", loaded.DataDir, original.DataDir)
	}
	if loaded.Server != original.Server {
		t.Errorf("server: got %+v, want %+v", loaded.Server, original.Server)
	}
	if len(loaded.Documents.Patterns) != 1 || loaded.Documents.Patterns[0] != "**/*.html" {
		t.Errorf("patterns: got %v", loaded.Documents.Patterns)
	}
	if loaded.Watch.Dir != "site" {
		t.Errorf("watch.dir: got %q", loaded.Watch.Dir)
	}
	if loaded.Log.Level != "debug" {
		t.Errorf("log.level: got %q", loaded.Log.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yml"))
	if err != nil {
		t.Fatalf("Load of missing file should not error: %v", err)
	}
	if cfg.Server.Port != DefaultConfig().Server.Port {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	os.WriteFile(path, []byte("server: [unclosed"), 0644)

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("VIBESTUDIO_DATA_DIR", "/tmp/studio")
	t.Setenv("VIBESTUDIO_SERVER__PORT", "8088")
	t.Setenv("VIBESTUDIO_LOG__LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataDir != "/tmp/studio" {
		t.Errorf("data_dir: got %q", cfg.DataDir)
	}
	if cfg.Server.Port != 8088 {
		t.Errorf("server.port: got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level: got %q", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }},
		{"no burst", func(c *Config) { c.Server.RateBurst = 0 }},
		{"no upload size", func(c *Config) { c.Server.MaxUploadMB = 0 }},
		{"no patterns", func(c *Config) { c.Documents.Patterns = nil }},
		{"bad pattern", func(c *Config) { c.Documents.Patterns = []string{"[unclosed"} }},
		{"speed too high", func(c *Config) { c.Playback.DefaultSpeed = 101 }},
		{"negative settle", func(c *Config) { c.Playback.SettleDelayMS = -1 }},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMS = -5 }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Server.RateLimit = 0
	cfg.Server.RateBurst = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("rate limiting off should not need a burst: %v", err)
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" **/*.html, ,*.htm ")
	if len(got) != 2 || got[0] != "**/*.html" || got[1] != "*.htm" {
		t.Errorf("unexpected split %v", got)
	}
}
