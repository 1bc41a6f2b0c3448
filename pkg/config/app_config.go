package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment names accepted in general.environment
const (
	EnvLocal  = "local"
	EnvRemote = "remote"
)

const (
	DefaultLocalURL  = "http://localhost:5000"
	DefaultRemoteURL = "https://rag-chatbot-backend.onrender.com"
	DefaultProvider  = "openrouter"
	DefaultModel     = "meta-llama/llama-3.2-3b-instruct:free"

	// DefaultChunkOverlap fills chunk_overlap only when the key is absent; 0 is a valid overlap
	DefaultChunkOverlap = 50
)

type AppConfig struct {
	General   GeneralConfig             `yaml:"general"`
	Server    ServerConfig              `yaml:"server"`
	Providers map[string]ProviderConfig `yaml:"providers"`
}

// GeneralConfig holds the client side settings
type GeneralConfig struct {
	Environment   string `yaml:"environment"` // "local" or "remote"
	LocalURL      string `yaml:"local_url"`
	RemoteURL     string `yaml:"remote_url"`
	MarkdownStyle string `yaml:"markdown_style,omitempty"` // glamour style, "auto" to detect
}

// ServerConfig holds the settings used by `docqa serve`
type ServerConfig struct {
	Port             int    `yaml:"port"`
	UploadDir        string `yaml:"upload_dir"`
	KnowledgeBaseDir string `yaml:"knowledge_base_dir"`
	MaxUploadMB      int    `yaml:"max_upload_mb"`
	ChunkSize        int    `yaml:"chunk_size"`
	ChunkOverlap     int    `yaml:"chunk_overlap"`
	TopK             int    `yaml:"top_k"`
	Provider         string `yaml:"provider"`
	Model            string `yaml:"model"`
}

type ProviderConfig map[string]string

// Default returns a config with every field populated
func Default() *AppConfig {
	cfg := &AppConfig{
		Server:    ServerConfig{ChunkOverlap: DefaultChunkOverlap},
		Providers: make(map[string]ProviderConfig),
	}
	cfg.applyDefaults()
	return cfg
}

func (c *AppConfig) applyDefaults() {
	if c.General.Environment == "" {
		c.General.Environment = EnvLocal
	}
	if c.General.LocalURL == "" {
		c.General.LocalURL = DefaultLocalURL
	}
	if c.General.RemoteURL == "" {
		c.General.RemoteURL = DefaultRemoteURL
	}
	if c.General.MarkdownStyle == "" {
		c.General.MarkdownStyle = "auto"
	}

	s := &c.Server
	if s.Port == 0 {
		s.Port = 5000
	}
	if s.UploadDir == "" {
		s.UploadDir = "uploads"
	}
	if s.KnowledgeBaseDir == "" {
		s.KnowledgeBaseDir = "knowledge_base"
	}
	if s.MaxUploadMB == 0 {
		s.MaxUploadMB = 16
	}
	if s.ChunkSize == 0 {
		s.ChunkSize = 500
	}
	if s.TopK == 0 {
		s.TopK = 3
	}
	if s.Provider == "" {
		s.Provider = DefaultProvider
	}
	if s.Model == "" && s.Provider == DefaultProvider {
		s.Model = DefaultModel
	}

	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
}

// BaseURL picks the backend endpoint. An explicit override wins, then
// DOCQA_API_URL, then the configured (or DOCQA_ENV) environment.
func (c *AppConfig) BaseURL(override string) (string, error) {
	if override != "" {
		return strings.TrimRight(override, "/"), nil
	}
	if env := os.Getenv("DOCQA_API_URL"); env != "" {
		return strings.TrimRight(env, "/"), nil
	}

	environment := c.General.Environment
	if env := os.Getenv("DOCQA_ENV"); env != "" {
		environment = env
	}

	switch strings.ToLower(environment) {
	case "", EnvLocal:
		return strings.TrimRight(c.General.LocalURL, "/"), nil
	case EnvRemote:
		return strings.TrimRight(c.General.RemoteURL, "/"), nil
	default:
		return "", fmt.Errorf("unknown environment %q (expected %q or %q)", environment, EnvLocal, EnvRemote)
	}
}

func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "docqa"), nil
}

func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// GetLogPath is where the TUI sends log output while it owns the terminal
func GetLogPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "docqa.log"), nil
}

func LoadAppConfig() (*AppConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadAppConfigFrom(path)
}

// LoadAppConfigFrom reads a config file, returning defaults when it does not exist
func LoadAppConfigFrom(path string) (*AppConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := AppConfig{Server: ServerConfig{ChunkOverlap: DefaultChunkOverlap}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func SaveAppConfig(cfg *AppConfig) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveAppConfigTo(path, cfg)
}

func SaveAppConfigTo(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
