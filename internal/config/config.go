package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Store    StoreConfig    `yaml:"store"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	ChatLLM  LLMConfig      `yaml:"chat_llm"`
	RAG      RAGConfig      `yaml:"rag"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	URL   string `yaml:"url"`
	Key   string `yaml:"key"`
	Debug bool   `yaml:"debug"`
}

type StoreConfig struct {
	// Backend is "chromem" (default) or "postgres".
	Backend    string `yaml:"backend"`
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	VectorSize int    `yaml:"vector_size"`
}

type LLMConfig struct {
	// Provider is "ollama" or "openai" (any OpenAI-compatible endpoint).
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

type RAGConfig struct {
	WindowSize     int `yaml:"window_size"`
	TopK           int `yaml:"top_k"`
	HistoryWindow  int `yaml:"history_window"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

const (
	DefaultWindowSize    = 1200
	DefaultTopK          = 6
	DefaultHistoryWindow = 20
	DefaultVectorSize    = 768
	defaultTimeout       = 60
	defaultCollection    = "docs"
	defaultAddr          = ":8080"
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills in zero values so callers never need to guard.
func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "chromem"
	}
	if c.Store.Collection == "" {
		c.Store.Collection = defaultCollection
	}
	if c.Store.VectorSize == 0 {
		c.Store.VectorSize = DefaultVectorSize
	}
	if c.RAG.WindowSize == 0 {
		c.RAG.WindowSize = DefaultWindowSize
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = DefaultTopK
	}
	if c.RAG.HistoryWindow == 0 {
		c.RAG.HistoryWindow = DefaultHistoryWindow
	}
	if c.RAG.TimeoutSeconds == 0 {
		c.RAG.TimeoutSeconds = defaultTimeout
	}
}

// Timeout is the per-external-call deadline.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RAG.TimeoutSeconds) * time.Second
}
