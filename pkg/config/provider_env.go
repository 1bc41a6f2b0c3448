package config

import "os"

// ProviderEnvMapping maps provider config keys to environment variable names
var ProviderEnvMapping = map[string]map[string]string{
	"openrouter": {
		"api_key": "OPENROUTER_API_KEY",
	},
	"openai": {
		"api_key": "OPENAI_API_KEY",
	},
	"groq": {
		"api_key": "GROQ_API_KEY",
	},
	"xai": {
		"api_key": "XAI_API_KEY",
	},
}

// SetupProviderEnv sets environment variables from config for a specific provider.
// Values already present in the environment are left alone.
func SetupProviderEnv(providerName string, providerCfg ProviderConfig) {
	mapping, ok := ProviderEnvMapping[providerName]
	if !ok {
		return
	}
	for cfgKey, envKey := range mapping {
		if os.Getenv(envKey) != "" {
			continue
		}
		if val, ok := providerCfg[cfgKey]; ok && val != "" {
			os.Setenv(envKey, val)
		}
	}
}

// SetupAllProviderEnv sets environment variables for all configured providers
func SetupAllProviderEnv(appCfg *AppConfig) {
	if appCfg == nil || appCfg.Providers == nil {
		return
	}
	for providerName, providerCfg := range appCfg.Providers {
		SetupProviderEnv(providerName, providerCfg)
	}
}

// ProviderValue reads a provider setting, preferring its environment variable
func ProviderValue(appCfg *AppConfig, providerName, key string) string {
	if envKey, ok := ProviderEnvMapping[providerName][key]; ok {
		if val := os.Getenv(envKey); val != "" {
			return val
		}
	}
	if appCfg == nil {
		return ""
	}
	return appCfg.Providers[providerName][key]
}
