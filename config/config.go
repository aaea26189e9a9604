package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the recommender.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Recommend RecommendConfig `yaml:"recommend"`
	Explain   ExplainConfig   `yaml:"explain"`
}

// CatalogConfig holds course catalog configuration.
type CatalogConfig struct {
	DataDir  string   `yaml:"data_dir"`
	Includes []string `yaml:"includes"` // glob patterns relative to data_dir
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "ollama", "mock"
	Model     string `yaml:"model"`       // e.g., "text-embedding-3-small"
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
}

// RecommendConfig holds ranking configuration.
type RecommendConfig struct {
	TopK            int `yaml:"top_k"`
	FilteredTopK    int `yaml:"filtered_top_k"`
	CandidateWindow int `yaml:"candidate_window"` // minimum unfiltered candidate set size
}

// ExplainConfig holds explanation LLM configuration.
type ExplainConfig struct {
	Enabled        bool    `yaml:"enabled"`
	Model          string  `yaml:"model"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	BaseURL        string  `yaml:"base_url"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			DataDir:  "data",
			Includes: []string{"*.csv", "**/*.csv"},
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
		},
		Recommend: RecommendConfig{
			TopK:            3,
			FilteredTopK:    5,
			CandidateWindow: 20,
		},
		Explain: ExplainConfig{
			Enabled:        false,
			Model:          "llama-3.1-8b-instant",
			APIKeyEnv:      "GROQ_API_KEY",
			BaseURL:        "https://api.groq.com/openai/v1",
			TimeoutSeconds: 15,
			RequestsPerSec: 2,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for courserec.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "courserec.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".courserec", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CacheDBPath returns the path to the vector cache database.
func CacheDBPath(dir string) string {
	return filepath.Join(dir, ".courserec", "vectors.db")
}

// EnsureCacheDir ensures the .courserec directory exists.
func EnsureCacheDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".courserec"), 0755)
}
