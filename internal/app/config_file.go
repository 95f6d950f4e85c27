package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
// Nested sections map naturally to flags/env.
type FileConfig struct {
	Listen string `yaml:"listen" json:"listen"`
	Static string `yaml:"static" json:"static"`

	Upload struct {
		MaxBytes int64 `yaml:"maxBytes" json:"maxBytes"`
	} `yaml:"upload" json:"upload"`

	Fetch struct {
		Timeout duration `yaml:"timeout" json:"timeout"`
		RPS     float64  `yaml:"rps" json:"rps"`
	} `yaml:"fetch" json:"fetch"`

	Proxy struct {
		Timeout duration `yaml:"timeout" json:"timeout"`
	} `yaml:"proxy" json:"proxy"`

	Cache struct {
		Dir         string   `yaml:"dir" json:"dir"`
		MaxAge      duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool     `yaml:"clear" json:"clear"`
		StrictPerms bool     `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	AI struct {
		Use       string `yaml:"use" json:"use"`
		OpenAI    string `yaml:"openaiKey" json:"openaiKey"`
		DashScope string `yaml:"dashscopeKey" json:"dashscopeKey"`
		Zhipu     string `yaml:"zhipuKey" json:"zhipuKey"`
	} `yaml:"ai" json:"ai"`

	Documents struct {
		DisablePDF  bool `yaml:"disablePDF" json:"disablePDF"`
		DisableDOCX bool `yaml:"disableDOCX" json:"disableDOCX"`
	} `yaml:"documents" json:"documents"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// duration accepts "15s" style strings in both YAML and JSON.
type duration time.Duration

func (d *duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *duration) set(s string) error {
	if strings.TrimSpace(s) == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from fc onto cfg for fields still at their
// zero or default value, so explicit flags and env keep precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if (cfg.ListenAddr == "" || cfg.ListenAddr == DefaultListenAddr) && fc.Listen != "" {
		cfg.ListenAddr = fc.Listen
	}
	if (cfg.StaticDir == "" || cfg.StaticDir == DefaultStaticDir) && fc.Static != "" {
		cfg.StaticDir = fc.Static
	}
	if (cfg.MaxUploadBytes == 0 || cfg.MaxUploadBytes == DefaultMaxUploadBytes) && fc.Upload.MaxBytes > 0 {
		cfg.MaxUploadBytes = fc.Upload.MaxBytes
	}
	if (cfg.FetchTimeout == 0 || cfg.FetchTimeout == DefaultFetchTimeout) && fc.Fetch.Timeout > 0 {
		cfg.FetchTimeout = time.Duration(fc.Fetch.Timeout)
	}
	if cfg.FetchRPS == 0 && fc.Fetch.RPS > 0 {
		cfg.FetchRPS = fc.Fetch.RPS
	}
	if (cfg.ProxyTimeout == 0 || cfg.ProxyTimeout == DefaultProxyTimeout) && fc.Proxy.Timeout > 0 {
		cfg.ProxyTimeout = time.Duration(fc.Proxy.Timeout)
	}

	if cfg.CacheDir == "" && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = time.Duration(fc.Cache.MaxAge)
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.CacheStrictPerms && fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}

	if cfg.UseAI == "" && fc.AI.Use != "" {
		cfg.UseAI = fc.AI.Use
	}
	if cfg.OpenAIAPIKey == "" && fc.AI.OpenAI != "" {
		cfg.OpenAIAPIKey = fc.AI.OpenAI
	}
	if cfg.DashScopeAPIKey == "" && fc.AI.DashScope != "" {
		cfg.DashScopeAPIKey = fc.AI.DashScope
	}
	if cfg.ZhipuAPIKey == "" && fc.AI.Zhipu != "" {
		cfg.ZhipuAPIKey = fc.AI.Zhipu
	}

	if !cfg.DisablePDF && fc.Documents.DisablePDF {
		cfg.DisablePDF = true
	}
	if !cfg.DisableDOCX && fc.Documents.DisableDOCX {
		cfg.DisableDOCX = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs minimal validation of required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return errors.New("config: listen address is required")
	}
	if cfg.MaxUploadBytes < 0 || cfg.FetchTimeout < 0 || cfg.ProxyTimeout < 0 || cfg.FetchRPS < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if strings.TrimSpace(cfg.StaticDir) == "" {
		return errors.New("config: static directory is required")
	}
	st, err := os.Stat(cfg.StaticDir)
	if err != nil {
		return fmt.Errorf("config: static directory: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("config: static directory %q is not a directory", cfg.StaticDir)
	}
	return nil
}
