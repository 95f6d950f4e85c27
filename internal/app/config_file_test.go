package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadConfigFile_YAML(t *testing.T) {
	p := writeFile(t, t.TempDir(), "helper.yaml", `
listen: "127.0.0.1:9000"
static: ./web
upload:
  maxBytes: 1048576
fetch:
  timeout: 5s
  rps: 2
proxy:
  timeout: 30s
cache:
  dir: /tmp/helper-cache
  maxAge: 24h
ai:
  use: qwen
  dashscopeKey: dk
documents:
  disablePDF: true
`)
	fc, err := LoadConfigFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fc.Listen != "127.0.0.1:9000" || fc.Static != "./web" || fc.Upload.MaxBytes != 1<<20 {
		t.Fatalf("serving section: %+v", fc)
	}
	if time.Duration(fc.Fetch.Timeout) != 5*time.Second || fc.Fetch.RPS != 2 {
		t.Fatalf("fetch section: %+v", fc.Fetch)
	}
	if time.Duration(fc.Proxy.Timeout) != 30*time.Second {
		t.Fatalf("proxy timeout: %v", time.Duration(fc.Proxy.Timeout))
	}
	if time.Duration(fc.Cache.MaxAge) != 24*time.Hour || fc.Cache.Dir != "/tmp/helper-cache" {
		t.Fatalf("cache section: %+v", fc.Cache)
	}
	if fc.AI.Use != "qwen" || fc.AI.DashScope != "dk" || !fc.Documents.DisablePDF {
		t.Fatalf("ai/documents: %+v %+v", fc.AI, fc.Documents)
	}
}

func TestLoadConfigFile_JSON(t *testing.T) {
	p := writeFile(t, t.TempDir(), "helper.json", `{"listen":":9001","fetch":{"timeout":"2s"},"verbose":true}`)
	fc, err := LoadConfigFile(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fc.Listen != ":9001" || time.Duration(fc.Fetch.Timeout) != 2*time.Second || !fc.Verbose {
		t.Fatalf("fc=%+v", fc)
	}
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfigFile(writeFile(t, dir, "bad.yaml", "fetch:\n  timeout: soon\n")); err == nil {
		t.Fatal("expected error for bad duration")
	}
	if _, err := LoadConfigFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// File values fill defaults only; flags and env set explicitly keep priority.
func TestApplyFileConfig_Precedence(t *testing.T) {
	var fc FileConfig
	fc.Listen = ":7000"
	fc.Static = "/srv/web"
	fc.Fetch.Timeout = duration(3 * time.Second)
	fc.Proxy.Timeout = duration(40 * time.Second)
	fc.AI.Use = "zhipu"
	fc.AI.OpenAI = "file-key"
	fc.Cache.Dir = "/var/cache/helper"
	fc.Documents.DisableDOCX = true

	cfg := DefaultConfig()
	cfg.ProxyTimeout = 5 * time.Second
	cfg.OpenAIAPIKey = "env-key"
	ApplyFileConfig(&cfg, fc)

	if cfg.ListenAddr != ":7000" || cfg.StaticDir != "/srv/web" {
		t.Fatalf("defaults should be replaced: %+v", cfg)
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Fatalf("FetchTimeout=%v", cfg.FetchTimeout)
	}
	if cfg.ProxyTimeout != 5*time.Second {
		t.Fatalf("explicit ProxyTimeout overwritten: %v", cfg.ProxyTimeout)
	}
	if cfg.OpenAIAPIKey != "env-key" {
		t.Fatalf("explicit key overwritten: %q", cfg.OpenAIAPIKey)
	}
	if cfg.UseAI != "zhipu" || cfg.CacheDir != "/var/cache/helper" || !cfg.DisableDOCX {
		t.Fatalf("file values not applied: %+v", cfg)
	}

	ApplyFileConfig(nil, fc)
}

func TestValidateConfig(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "plain.txt", "x")

	good := DefaultConfig()
	good.StaticDir = dir
	if err := ValidateConfig(good); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{"empty addr", func(c *Config) { c.ListenAddr = " " }, "listen address"},
		{"negative upload", func(c *Config) { c.MaxUploadBytes = -1 }, "negative"},
		{"negative rps", func(c *Config) { c.FetchRPS = -2 }, "negative"},
		{"empty static", func(c *Config) { c.StaticDir = "" }, "static directory"},
		{"missing static", func(c *Config) { c.StaticDir = filepath.Join(dir, "nope") }, "static directory"},
		{"static is file", func(c *Config) { c.StaticDir = file }, "not a directory"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := good
			tc.mut(&cfg)
			err := ValidateConfig(cfg)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err=%v, want mention of %q", err, tc.want)
			}
		})
	}
}
