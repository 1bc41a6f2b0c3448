package provider

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/schardosin/docqa/pkg/config"
)

// ProviderDisplayNames maps provider IDs to their display names
var ProviderDisplayNames = map[string]string{
	"groq":       "Groq",
	"lm_studio":  "LM Studio",
	"ollama":     "Ollama",
	"openai":     "OpenAI",
	"openrouter": "Openrouter",
	"xai":        "xAI",
}

// DefaultModels is used when no model is configured for a provider
var DefaultModels = map[string]string{
	"openrouter": config.DefaultModel,
	"openai":     "gpt-4o-mini",
	"groq":       "llama-3.1-8b-instant",
	"xai":        "grok-beta",
}

// GetProviderDisplayName returns the display name for a provider ID, or the ID itself
func GetProviderDisplayName(providerID string) string {
	if name, ok := ProviderDisplayNames[providerID]; ok {
		return name
	}
	return providerID
}

// GetProviderIDs returns all known provider IDs, sorted
func GetProviderIDs() []string {
	ids := make([]string, 0, len(ProviderDisplayNames))
	for id := range ProviderDisplayNames {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResolveModel returns modelName, or the provider default when it is empty
func ResolveModel(name, modelName string) (string, error) {
	if modelName != "" {
		return modelName, nil
	}
	if m, ok := DefaultModels[name]; ok {
		return m, nil
	}
	return "", fmt.Errorf("model name required for %s", name)
}

// NewClient builds an OpenAI compatible chat client for the named provider.
// timeout bounds each completion request; zero means no limit.
func NewClient(name string, cfg *config.AppConfig, timeout time.Duration) (*openai.Client, error) {
	var clientCfg openai.ClientConfig

	switch name {
	case "openrouter":
		apiKey := config.ProviderValue(cfg, "openrouter", "api_key")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY not found in environment variables or config")
		}
		clientCfg = openai.DefaultConfig(apiKey)
		clientCfg.BaseURL = "https://openrouter.ai/api/v1"

	case "openai":
		apiKey := config.ProviderValue(cfg, "openai", "api_key")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		clientCfg = openai.DefaultConfig(apiKey)

	case "groq":
		apiKey := config.ProviderValue(cfg, "groq", "api_key")
		if apiKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY not set")
		}
		clientCfg = openai.DefaultConfig(apiKey)
		clientCfg.BaseURL = "https://api.groq.com/openai/v1"

	case "xai":
		apiKey := config.ProviderValue(cfg, "xai", "api_key")
		if apiKey == "" {
			return nil, fmt.Errorf("XAI_API_KEY not set")
		}
		clientCfg = openai.DefaultConfig(apiKey)
		clientCfg.BaseURL = "https://api.x.ai/v1"

	case "ollama":
		baseURL := config.ProviderValue(cfg, "ollama", "base_url")
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		// Ollama ignores the key but the client requires one
		clientCfg = openai.DefaultConfig("ollama")
		clientCfg.BaseURL = baseURL + "/v1"

	case "lm_studio":
		baseURL := config.ProviderValue(cfg, "lm_studio", "base_url")
		if baseURL == "" {
			baseURL = "http://localhost:1234/v1"
		}
		clientCfg = openai.DefaultConfig("lm-studio")
		clientCfg.BaseURL = baseURL

	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}

	if cfg != nil && name != "ollama" && name != "lm_studio" {
		if baseURL := cfg.Providers[name]["base_url"]; baseURL != "" {
			clientCfg.BaseURL = baseURL
		}
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return openai.NewClientWithConfig(clientCfg), nil
}
