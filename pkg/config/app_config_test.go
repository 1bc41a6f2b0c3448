package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

// TestBaseURLSelection verifies the environment to endpoint mapping
func TestBaseURLSelection(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		override    string
		envURL      string
		envName     string
		expected    string
		shouldError bool
	}{
		{
			name:     "empty environment defaults to local",
			expected: DefaultLocalURL,
		},
		{
			name:        "local environment",
			environment: "local",
			expected:    DefaultLocalURL,
		},
		{
			name:        "remote environment",
			environment: "remote",
			expected:    DefaultRemoteURL,
		},
		{
			name:        "environment is case insensitive",
			environment: "REMOTE",
			expected:    DefaultRemoteURL,
		},
		{
			name:        "DOCQA_ENV overrides config",
			environment: "local",
			envName:     "remote",
			expected:    DefaultRemoteURL,
		},
		{
			name:        "DOCQA_API_URL beats environment",
			environment: "remote",
			envURL:      "http://10.0.0.5:5000/",
			expected:    "http://10.0.0.5:5000",
		},
		{
			name:     "explicit override wins",
			envURL:   "http://10.0.0.5:5000",
			override: "http://127.0.0.1:9000/",
			expected: "http://127.0.0.1:9000",
		},
		{
			name:        "unknown environment is an error",
			environment: "staging",
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DOCQA_API_URL", tt.envURL)
			t.Setenv("DOCQA_ENV", tt.envName)

			cfg := Default()
			cfg.General.Environment = tt.environment

			got, err := cfg.BaseURL(tt.override)
			if tt.shouldError {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("BaseURL = %q, expected %q", got, tt.expected)
			}
		})
	}
}

// TestLoadAppConfigFromMissingFile verifies defaults are returned when no file exists
func TestLoadAppConfigFromMissingFile(t *testing.T) {
	cfg, err := LoadAppConfigFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.General.Environment != EnvLocal {
		t.Errorf("Environment = %q, expected %q", cfg.General.Environment, EnvLocal)
	}
	if cfg.Server.ChunkSize != 500 || cfg.Server.ChunkOverlap != 50 {
		t.Errorf("chunking = %d/%d, expected 500/50", cfg.Server.ChunkSize, cfg.Server.ChunkOverlap)
	}
	if cfg.Server.MaxUploadMB != 16 {
		t.Errorf("MaxUploadMB = %d, expected 16", cfg.Server.MaxUploadMB)
	}
	if cfg.Server.Model != DefaultModel {
		t.Errorf("Model = %q, expected %q", cfg.Server.Model, DefaultModel)
	}
	if cfg.Providers == nil {
		t.Error("Providers should be initialized")
	}
}

// TestLoadAppConfigFromPartialFile verifies unset fields fall back to defaults
func TestLoadAppConfigFromPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
general:
  environment: remote
  remote_url: https://docs.example.com
server:
  port: 8080
  provider: groq
providers:
  groq:
    api_key: gsk-test
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadAppConfigFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.General.RemoteURL != "https://docs.example.com" {
		t.Errorf("RemoteURL = %q", cfg.General.RemoteURL)
	}
	if cfg.General.LocalURL != DefaultLocalURL {
		t.Errorf("LocalURL = %q, expected default", cfg.General.LocalURL)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, expected 8080", cfg.Server.Port)
	}
	if cfg.Server.Model != "" {
		t.Errorf("Model = %q, expected empty for non-default provider", cfg.Server.Model)
	}
	if cfg.Providers["groq"]["api_key"] != "gsk-test" {
		t.Errorf("groq api_key = %q", cfg.Providers["groq"]["api_key"])
	}
}

// TestSaveAppConfigRoundTrip verifies the file written by SaveAppConfigTo is valid YAML
func TestSaveAppConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Providers["openrouter"] = ProviderConfig{"api_key": "sk-or-test"}

	if err := SaveAppConfigTo(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("saved file is not valid YAML: %v", err)
	}
	if _, ok := raw["server"]; !ok {
		t.Error("saved file is missing the server section")
	}
}

// TestProviderValuePrefersEnvironment verifies env vars beat config values
func TestProviderValuePrefersEnvironment(t *testing.T) {
	cfg := Default()
	cfg.Providers["openrouter"] = ProviderConfig{"api_key": "from-config"}

	t.Setenv("OPENROUTER_API_KEY", "")
	if got := ProviderValue(cfg, "openrouter", "api_key"); got != "from-config" {
		t.Errorf("ProviderValue = %q, expected from-config", got)
	}

	t.Setenv("OPENROUTER_API_KEY", "from-env")
	if got := ProviderValue(cfg, "openrouter", "api_key"); got != "from-env" {
		t.Errorf("ProviderValue = %q, expected from-env", got)
	}
}

func TestLoadAppConfigFromChunkOverlap(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected int
	}{
		{name: "absent uses default", content: "server:\n  chunk_size: 200\n", expected: DefaultChunkOverlap},
		{name: "explicit zero is kept", content: "server:\n  chunk_overlap: 0\n", expected: 0},
		{name: "explicit value", content: "server:\n  chunk_overlap: 25\n", expected: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			cfg, err := LoadAppConfigFrom(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Server.ChunkOverlap != tt.expected {
				t.Errorf("ChunkOverlap = %d, expected %d", cfg.Server.ChunkOverlap, tt.expected)
			}
		})
	}
}
