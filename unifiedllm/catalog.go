package unifiedllm

import (
	"fmt"
	"sort"
	"strings"
)

// Provider names.
const (
	ProviderClaude     = "claude"
	ProviderGroq       = "groq"
	ProviderHyperbolic = "hyperbolic"
)

// ProviderInfo describes a supported backend and its defaults.
type ProviderInfo struct {
	Name         string
	KeyName      string
	Defaults     BackendConfig
	Capabilities Capabilities
	// URLOverride reports whether a caller-supplied endpoint is honoured.
	URLOverride bool
}

var providers = map[string]ProviderInfo{
	ProviderClaude: {
		Name:    ProviderClaude,
		KeyName: "ANTHROPIC_API_KEY",
		Defaults: BackendConfig{
			ModelName: "claude-3-5-sonnet-20241022",
			MaxTokens: 8192,
		},
		Capabilities: Capabilities{Embeddings: EmbedUnsupported},
		URLOverride:  true,
	},
	ProviderGroq: {
		Name:    ProviderGroq,
		KeyName: "GROQCLOUD_API_KEY",
		Defaults: BackendConfig{
			ModelName:    "mixtral-8x7b-32768",
			EndpointURL:  "https://api.groq.com/openai/v1",
			MaxTokens:    16384,
			Temperature:  0.2,
			TopP:         1,
			StopSequence: "***",
		},
		Capabilities: Capabilities{
			OverflowRecovery: true,
			ReasoningRepair:  true,
			Embeddings:       EmbedNoop,
		},
	},
	ProviderHyperbolic: {
		Name:    ProviderHyperbolic,
		KeyName: "HYPERBOLIC_API_KEY",
		Defaults: BackendConfig{
			ModelName:   "deepseek-ai/DeepSeek-V3",
			EndpointURL: "https://api.hyperbolic.xyz/v1/chat/completions",
			MaxTokens:   8192,
			Temperature: 0.7,
			TopP:        0.9,
		},
		Capabilities: Capabilities{
			OverflowRecovery: true,
			ReasoningRepair:  true,
			Embeddings:       EmbedUnsupported,
		},
		URLOverride: true,
	},
}

// GetProviderInfo returns the catalog entry for name, or nil.
func GetProviderInfo(name string) *ProviderInfo {
	info, ok := providers[strings.ToLower(name)]
	if !ok {
		return nil
	}
	return &info
}

// ListProviders returns every provider sorted by name.
func ListProviders() []ProviderInfo {
	out := make([]ProviderInfo, 0, len(providers))
	for _, info := range providers {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DefaultConfig returns the default BackendConfig for provider.
func DefaultConfig(provider string) BackendConfig {
	if info := GetProviderInfo(provider); info != nil {
		return info.Defaults
	}
	return BackendConfig{}
}

// KeyName returns the credential name the provider's API key is stored under.
func KeyName(provider string) string {
	if info := GetProviderInfo(provider); info != nil {
		return info.KeyName
	}
	return ""
}

// NewBackend constructs the adapter for provider.
func NewBackend(provider string, cfg BackendConfig, opts ...Option) (Backend, error) {
	switch strings.ToLower(provider) {
	case ProviderClaude:
		return NewClaudeAdapter(cfg, opts...)
	case ProviderGroq:
		return NewGroqAdapter(cfg, opts...)
	case ProviderHyperbolic:
		return NewHyperbolicAdapter(cfg, opts...)
	}
	return nil, &ConfigurationError{SDKError: SDKError{
		Message: fmt.Sprintf("unknown provider %q", provider),
	}}
}
