package proxy

import (
	"net/url"
	"strings"
)

// Provider names accepted by USE_AI.
const (
	OpenAI = "openai"
	Qwen   = "qwen"
	Zhipu  = "zhipu"
)

// providerOrder is the fallback order when the requested provider has no key.
var providerOrder = []string{OpenAI, Qwen, Zhipu}

var providerHosts = map[string]string{
	OpenAI: "api.openai.com",
	Qwen:   "dashscope.aliyuncs.com",
	Zhipu:  "open.bigmodel.cn",
}

// Keys holds server-side API keys so they never reach the browser.
type Keys struct {
	OpenAI string
	Qwen   string
	Zhipu  string
}

// For returns the key configured for provider.
func (k Keys) For(provider string) string {
	switch provider {
	case OpenAI:
		return k.OpenAI
	case Qwen:
		return k.Qwen
	case Zhipu:
		return k.Zhipu
	}
	return ""
}

// Effective picks the provider the front-end should use: the requested one
// when it has a key, otherwise the first provider with a key, otherwise "".
func (k Keys) Effective(useAI string) string {
	want := strings.ToLower(strings.TrimSpace(useAI))
	if want != "" && k.For(want) != "" {
		return want
	}
	for _, p := range providerOrder {
		if k.For(p) != "" {
			return p
		}
	}
	return ""
}

// Authorization returns a bearer header value for target when its host
// belongs to a provider with a configured key.
func (k Keys) Authorization(target *url.URL) (string, bool) {
	if target == nil {
		return "", false
	}
	host := strings.ToLower(target.Hostname())
	for _, p := range providerOrder {
		domain := providerHosts[p]
		if host != domain && !strings.HasSuffix(host, "."+domain) {
			continue
		}
		if key := k.For(p); key != "" {
			return "Bearer " + key, true
		}
		return "", false
	}
	return "", false
}
