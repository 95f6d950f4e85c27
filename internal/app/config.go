package app

import "time"

// Defaults used when neither flags, env nor a config file set a value.
const (
	DefaultListenAddr     = ":8080"
	DefaultStaticDir      = "."
	DefaultFetchTimeout   = 15 * time.Second
	DefaultProxyTimeout   = 15 * time.Second
	DefaultMaxUploadBytes = 15 << 20
)

// Config holds runtime configuration for the helper server.
type Config struct {
	// Serving
	ListenAddr     string
	StaticDir      string
	MaxUploadBytes int64
	// ConfigFile is the loaded config file, if any. It is never served even
	// when it lives under StaticDir.
	ConfigFile string

	// Outbound
	FetchTimeout time.Duration
	ProxyTimeout time.Duration
	// FetchRPS throttles page fetches. Zero disables throttling.
	FetchRPS float64

	// Page cache. An empty CacheDir disables it.
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	// Provider keys stay on the server; the front-end only learns which
	// provider to use.
	UseAI           string
	OpenAIAPIKey    string
	DashScopeAPIKey string
	ZhipuAPIKey     string

	DisablePDF  bool
	DisableDOCX bool

	Verbose bool
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr:     DefaultListenAddr,
		StaticDir:      DefaultStaticDir,
		MaxUploadBytes: DefaultMaxUploadBytes,
		FetchTimeout:   DefaultFetchTimeout,
		ProxyTimeout:   DefaultProxyTimeout,
	}
}
