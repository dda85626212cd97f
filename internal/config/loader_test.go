package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Remote.RequestTimeout.Std() != 30*time.Second || cfg.Remote.ResourceTimeout.Std() != 60*time.Second {
		t.Fatalf("unexpected timeouts: %+v", cfg.Remote)
	}
	if cfg.Generation.PollInterval.Std() != 2*time.Second {
		t.Fatalf("unexpected poll interval: %v", cfg.Generation.PollInterval.Std())
	}
	if cfg.History.MaxEntries != 100 || cfg.History.Backend != BackendFile {
		t.Fatalf("unexpected history defaults: %+v", cfg.History)
	}
	if cfg.Server.ErrorDismissAfter.Std() != 4*time.Second {
		t.Fatalf("unexpected dismiss delay: %v", cfg.Server.ErrorDismissAfter.Std())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "remote:\n  base_url: http://gen.local:9000\n  request_timeout: 5s\ngeneration:\n  poll_interval: 250ms\nhistory:\n  backend: sqlite\n  path: /tmp/h.db\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Remote.BaseURL != "http://gen.local:9000" || cfg.Remote.RequestTimeout.Std() != 5*time.Second {
		t.Fatalf("unexpected remote: %+v", cfg.Remote)
	}
	if cfg.Generation.PollInterval.Std() != 250*time.Millisecond {
		t.Fatalf("unexpected poll interval: %v", cfg.Generation.PollInterval.Std())
	}
	if cfg.History.Backend != BackendSQLite || cfg.History.Path != "/tmp/h.db" {
		t.Fatalf("unexpected history: %+v", cfg.History)
	}
	// untouched fields keep defaults
	if cfg.Remote.ResourceTimeout.Std() != 60*time.Second || cfg.History.MaxEntries != 100 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"remote":{"base_url":"http://x:1","resource_timeout":"90s"},"history":{"max_entries":5}}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Remote.BaseURL != "http://x:1" || cfg.Remote.ResourceTimeout.Std() != 90*time.Second || cfg.History.MaxEntries != 5 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "[remote]\nbase_url = \"http://t:2\"\n[generation]\npoll_interval = \"1s\"\nmax_prompt_length = 42\n[log]\nlevel = \"debug\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Remote.BaseURL != "http://t:2" || cfg.Generation.PollInterval.Std() != time.Second || cfg.Generation.MaxPromptLength != 42 || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	if _, err := Load("/definitely/not/a/real/file-12345.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	p = writeTempFile(t, d, "bad.json", `{ "remote": }`)
	if _, err := Load(p); err == nil {
		t.Fatalf("expected JSON unmarshal error")
	}
	p = writeTempFile(t, d, "bad.yaml", "generation:\n  poll_interval: soon\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected duration parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("FORGE3D_BASE_URL", "http://env:7")
	t.Setenv("FORGE3D_HISTORY_BACKEND", "redis")
	t.Setenv("FORGE3D_POLL_INTERVAL", "3s")
	t.Setenv("FORGE3D_HISTORY_MAX", "12")
	t.Setenv("FORGE3D_CORS_ORIGINS", "http://a, http://b")
	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Remote.BaseURL != "http://env:7" || cfg.History.Backend != BackendRedis {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.Generation.PollInterval.Std() != 3*time.Second || cfg.History.MaxEntries != 12 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b" {
		t.Fatalf("unexpected origins: %v", cfg.Server.CORSOrigins)
	}

	t.Setenv("FORGE3D_HISTORY_MAX", "many")
	if err := cfg.ApplyEnv(); err == nil {
		t.Fatalf("expected error for non-numeric FORGE3D_HISTORY_MAX")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"relative url":  func(c *Config) { c.Remote.BaseURL = "gen.local" },
		"backend":       func(c *Config) { c.History.Backend = "etcd" },
		"max entries":   func(c *Config) { c.History.MaxEntries = 0 },
		"poll interval": func(c *Config) { c.Generation.PollInterval = 0 },
		"jpeg quality":  func(c *Config) { c.Generation.JPEGQuality = 101 },
		"models dir":    func(c *Config) { c.Storage.ModelsDir = "" },
		"redis addr": func(c *Config) {
			c.History.Backend = BackendRedis
			c.History.RedisAddr = ""
		},
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestResolveExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg := Default()
	if err := cfg.Resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Storage.ModelsDir != filepath.Join(home, ".forge3d", "models") {
		t.Fatalf("unexpected models dir: %s", cfg.Storage.ModelsDir)
	}
	if cfg.History.Path != filepath.Join(home, ".forge3d", "state") {
		t.Fatalf("unexpected history path: %s", cfg.History.Path)
	}
}
